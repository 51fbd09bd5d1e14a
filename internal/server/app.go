// Package server wires configuration, storage, price lookup and event
// publishing into the REST and gRPC health servers and runs them until a
// shutdown signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/krypton/internal/logging"
	"github.com/dmitrijs2005/krypton/internal/server/auth"
	"github.com/dmitrijs2005/krypton/internal/server/config"
	"github.com/dmitrijs2005/krypton/internal/server/events"
	"github.com/dmitrijs2005/krypton/internal/server/portfolio"
	"github.com/dmitrijs2005/krypton/internal/server/prices"
	"github.com/dmitrijs2005/krypton/internal/server/shared/db"
	"github.com/dmitrijs2005/krypton/internal/server/shared/keylock"
	"github.com/dmitrijs2005/krypton/internal/server/users"
	"github.com/dmitrijs2005/krypton/internal/server/watchlist"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/krypton/internal/server/grpc"
	hs "github.com/dmitrijs2005/krypton/internal/server/http"
)

const (
	startupTimeout = 15 * time.Second
	priceCacheCost = 64 << 20 // bytes of market documents; a price costs 1
)

type closer struct {
	name string
	fn   func(context.Context) error
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	http    *hs.Server
	grpc    *gs.GRPCServer
	closers []closer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, c.LogLevel)
	app := &App{config: c, logger: logger}

	tokens, err := auth.NewTokenService(c.SecretKey, c.TokenValidityDuration, c.StrictSecret)
	if err != nil {
		return nil, fmt.Errorf("token service init error: %w", err)
	}
	if tokens.UsesFallbackSecret() {
		logger.Warn(ctx, "JWT_SECRET is not set, signing tokens with the built-in fallback key; this is unsafe outside development")
	}

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	repos, err := db.Open(startCtx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app.closers = append(app.closers, closer{"storage", repos.Close})

	if err := repos.RunMigrations(startCtx); err != nil {
		app.close(ctx)
		return nil, fmt.Errorf("migration error: %w", err)
	}

	oracle, market, err := app.marketData(c, logger)
	if err != nil {
		app.close(ctx)
		return nil, fmt.Errorf("price oracle init error: %w", err)
	}

	var publisher events.Publisher = events.Nop()
	if len(c.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(c.KafkaBrokers, c.KafkaTopic)
		logger.Info(ctx, "publishing events to kafka", "brokers", c.KafkaBrokers, "topic", c.KafkaTopic)
	}
	app.closers = append(app.closers, closer{"events", func(context.Context) error { return publisher.Close() }})

	locks := keylock.New()
	us := users.NewService(repos.Users(), tokens, logger)
	ws := watchlist.NewService(repos.Users(), publisher, locks, logger)
	ps := portfolio.NewService(repos.Users(), oracle, publisher, locks, c.ReferenceCurrency, logger)

	handler := hs.NewHandler(us, ws, ps, market, logger.With("module", "http"))
	router := hs.NewRouter(handler, auth.NewResolver(tokens, us), c.CORSOrigin, logger.With("module", "http"))

	app.http = hs.NewServer(c.HTTPAddr, router, logger)
	app.grpc = gs.NewGRPCServer(c.GRPCAddr, logger)

	return app, nil
}

// marketData builds the CoinGecko client used for spot prices and for the
// market data routes, wrapped in a cache when a TTL is configured. Redis is
// used when an address is set.
func (app *App) marketData(c *config.Config, logger logging.Logger) (prices.Oracle, hs.MarketService, error) {
	cg := prices.NewCoinGecko(c.PriceAPIBaseURL, c.PriceAPIKey, c.PriceTimeout)
	if c.PriceCacheTTL <= 0 {
		return cg, cg, nil
	}

	if c.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
		app.closers = append(app.closers, closer{"redis", func(context.Context) error { return rdb.Close() }})
		rc := prices.NewRedisCache(rdb, c.PriceCacheTTL)
		return prices.NewCachedOracle(cg, rc, logger), prices.NewCachedMarket(cg, rc, logger), nil
	}

	mc, err := prices.NewMemoryCache(priceCacheCost, c.PriceCacheTTL)
	if err != nil {
		return nil, nil, err
	}
	app.closers = append(app.closers, closer{"price cache", func(context.Context) error { mc.Close(); return nil }})
	return prices.NewCachedOracle(cg, mc, logger), prices.NewCachedMarket(cg, mc, logger), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) runServer(ctx context.Context, cancelFunc context.CancelFunc, name string, run func(context.Context) error) {
	if err := run(ctx); err != nil {
		app.logger.Error(ctx, "server failed", "server", name, "error", err)
		cancelFunc()
	}
}

// Run blocks until a signal arrives or either server fails, then releases
// all resources.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.runServer(ctx, cancelFunc, "http", app.http.Run)
	}()
	go func() {
		defer wg.Done()
		app.runServer(ctx, cancelFunc, "grpc", app.grpc.Run)
	}()

	wg.Wait()

	app.close(context.Background())
	app.logger.Info(context.Background(), "App stopped")
}

func (app *App) close(ctx context.Context) {
	for i := len(app.closers) - 1; i >= 0; i-- {
		c := app.closers[i]
		if err := c.fn(ctx); err != nil {
			app.logger.Error(ctx, "close failed", "resource", c.name, "error", err)
		}
	}
	app.closers = nil
}
