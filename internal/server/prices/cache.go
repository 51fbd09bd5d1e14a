package prices

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/dmitrijs2005/krypton/internal/logging"
	"github.com/redis/go-redis/v9"
)

// Cache stores spot prices for a short time.
type Cache interface {
	Get(ctx context.Context, key string) (float64, bool, error)
	Set(ctx context.Context, key string, price float64) error
}

// BlobCache stores raw market data documents for a short time.
type BlobCache interface {
	GetBlob(ctx context.Context, key string) ([]byte, bool, error)
	SetBlob(ctx context.Context, key string, doc []byte) error
}

// MemoryCache is an in-process Cache and BlobCache backed by ristretto.
type MemoryCache struct {
	c   *ristretto.Cache
	ttl time.Duration
}

func NewMemoryCache(maxCost int64, ttl time.Duration) (*MemoryCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &MemoryCache{c: c, ttl: ttl}, nil
}

func (m *MemoryCache) Get(_ context.Context, key string) (float64, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return 0, false, nil
	}
	p, ok := v.(float64)
	return p, ok, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, price float64) error {
	m.c.SetWithTTL(key, price, 1, m.ttl)
	return nil
}

func (m *MemoryCache) GetBlob(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.c.Get(blobKeyPrefix + key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	return b, ok, nil
}

func (m *MemoryCache) SetBlob(_ context.Context, key string, doc []byte) error {
	m.c.SetWithTTL(blobKeyPrefix+key, doc, int64(len(doc)), m.ttl)
	return nil
}

// Wait blocks until buffered writes are applied.
func (m *MemoryCache) Wait() { m.c.Wait() }

func (m *MemoryCache) Close() { m.c.Close() }

// RedisCache is a Cache shared between instances.
type RedisCache struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string
}

const blobKeyPrefix = "market:"

func NewRedisCache(rdb redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl, prefix: "krypton:price:"}
}

func (r *RedisCache) Get(ctx context.Context, key string) (float64, bool, error) {
	v, err := r.rdb.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	p, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false, err
	}
	return p, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, price float64) error {
	return r.rdb.Set(ctx, r.prefix+key, strconv.FormatFloat(price, 'g', -1, 64), r.ttl).Err()
}

func (r *RedisCache) GetBlob(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.rdb.Get(ctx, r.prefix+blobKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *RedisCache) SetBlob(ctx context.Context, key string, doc []byte) error {
	return r.rdb.Set(ctx, r.prefix+blobKeyPrefix+key, doc, r.ttl).Err()
}

// CachedOracle answers from cache where it can and asks the wrapped Oracle
// for the rest. Cache failures are logged and otherwise ignored.
type CachedOracle struct {
	next  Oracle
	cache Cache
	log   logging.Logger
}

func NewCachedOracle(next Oracle, cache Cache, log logging.Logger) *CachedOracle {
	return &CachedOracle{next: next, cache: cache, log: log.With("module", "prices")}
}

func cacheKey(assetID, currency string) string {
	return strings.ToLower(currency) + ":" + assetID
}

func (o *CachedOracle) SpotPrice(ctx context.Context, assetID, currency string) (float64, error) {
	if p, ok := o.lookup(ctx, assetID, currency); ok {
		return p, nil
	}
	p, err := o.next.SpotPrice(ctx, assetID, currency)
	if err != nil {
		return 0, err
	}
	o.store(ctx, assetID, currency, p)
	return p, nil
}

func (o *CachedOracle) SpotPrices(ctx context.Context, assetIDs []string, currency string) (map[string]float64, error) {
	out := make(map[string]float64, len(assetIDs))
	var missing []string
	for _, id := range assetIDs {
		if p, ok := o.lookup(ctx, id, currency); ok {
			out[id] = p
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return out, nil
	}

	fetched, err := o.next.SpotPrices(ctx, missing, currency)
	if err != nil {
		return nil, err
	}
	for id, p := range fetched {
		out[id] = p
		o.store(ctx, id, currency, p)
	}
	return out, nil
}

func (o *CachedOracle) lookup(ctx context.Context, assetID, currency string) (float64, bool) {
	p, ok, err := o.cache.Get(ctx, cacheKey(assetID, currency))
	if err != nil {
		o.log.Warn(ctx, "price cache read failed", "asset", assetID, "error", err)
		return 0, false
	}
	return p, ok
}

func (o *CachedOracle) store(ctx context.Context, assetID, currency string, price float64) {
	if err := o.cache.Set(ctx, cacheKey(assetID, currency), price); err != nil {
		o.log.Warn(ctx, "price cache write failed", "asset", assetID, "error", err)
	}
}

// CachedMarket keeps market data documents in a BlobCache. Like
// CachedOracle it never fails because of the cache.
type CachedMarket struct {
	next  Market
	cache BlobCache
	log   logging.Logger
}

func NewCachedMarket(next Market, cache BlobCache, log logging.Logger) *CachedMarket {
	return &CachedMarket{next: next, cache: cache, log: log.With("module", "market")}
}

func (m *CachedMarket) Markets(ctx context.Context, q MarketQuery) (json.RawMessage, error) {
	key := "markets?" + q.values().Encode()
	return m.cached(ctx, key, func() (json.RawMessage, error) { return m.next.Markets(ctx, q) })
}

func (m *CachedMarket) Coin(ctx context.Context, id string) (json.RawMessage, error) {
	return m.cached(ctx, "coin:"+id, func() (json.RawMessage, error) { return m.next.Coin(ctx, id) })
}

func (m *CachedMarket) Chart(ctx context.Context, id, currency, days string) (json.RawMessage, error) {
	key := "chart:" + id + ":" + strings.ToLower(currency) + ":" + days
	return m.cached(ctx, key, func() (json.RawMessage, error) { return m.next.Chart(ctx, id, currency, days) })
}

func (m *CachedMarket) Trending(ctx context.Context) (json.RawMessage, error) {
	return m.cached(ctx, "trending", func() (json.RawMessage, error) { return m.next.Trending(ctx) })
}

func (m *CachedMarket) Global(ctx context.Context) (json.RawMessage, error) {
	return m.cached(ctx, "global", func() (json.RawMessage, error) { return m.next.Global(ctx) })
}

func (m *CachedMarket) cached(ctx context.Context, key string, fetch func() (json.RawMessage, error)) (json.RawMessage, error) {
	b, ok, err := m.cache.GetBlob(ctx, key)
	if err != nil {
		m.log.Warn(ctx, "market cache read failed", "key", key, "error", err)
	}
	if ok {
		return json.RawMessage(b), nil
	}

	doc, err := fetch()
	if err != nil {
		return nil, err
	}
	if err := m.cache.SetBlob(ctx, key, doc); err != nil {
		m.log.Warn(ctx, "market cache write failed", "key", key, "error", err)
	}
	return doc, nil
}
