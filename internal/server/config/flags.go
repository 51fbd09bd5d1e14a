package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/krypton/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string          HTTP bind address (e.g., ":5000")
//	-g string          gRPC health bind address
//	-l string          log level
//	-storage string    postgres | mongo | memory
//	-d string          PostgreSQL DSN
//	-m string          MongoDB URI
//	-s string          JWT HMAC secret key
//	-strict-secret     fail startup when no secret is configured
//	-t int             token validity, hours
//	-currency string   reference currency
//	-k string          CoinGecko API key
//	-r string          Redis address for the price cache
//	-b string          comma separated Kafka brokers
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:],
		[]string{"-a", "-g", "-l", "-storage", "-d", "-m", "-s", "-strict-secret", "-t", "-currency", "-k", "-r", "-b"},
		"-strict-secret")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run HTTP server")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "address and port to run gRPC health server")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.Storage, "storage", config.Storage, "storage backend: postgres, mongo or memory")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.MongoURI, "m", config.MongoURI, "mongo URI")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.BoolVar(&config.StrictSecret, "strict-secret", config.StrictSecret, "refuse to start without a secret key")

	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Hours()), "token validity (in hours)")

	fs.StringVar(&config.ReferenceCurrency, "currency", config.ReferenceCurrency, "reference currency")
	fs.StringVar(&config.PriceAPIKey, "k", config.PriceAPIKey, "CoinGecko API key")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")

	brokers := fs.String("b", strings.Join(config.KafkaBrokers, ","), "kafka brokers")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Only flags actually present override values from earlier sources.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Hour
		case "b":
			config.KafkaBrokers = splitList(*brokers)
		}
	})
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
