package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"rates-engine/internal/application"
	"rates-engine/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache keeps rate records in Redis under a per-pair key with a TTL. An
// unreachable backend degrades to a no-op cache: Get misses, Set swallows
// the error after logging it.
type Cache struct {
	Client *redis.Client
	Log    *zap.Logger
}

var _ application.RateCache = (*Cache)(nil)

func New(client *redis.Client, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{Client: client, Log: log}
}

func key(base, target string) string { return "rate:" + base + ":" + target }

func (c *Cache) Get(ctx context.Context, base, target string) (domain.ExchangeRate, bool) {
	b, err := c.Client.Get(ctx, key(base, target)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.Log.Debug("rate_cache_get_failed", zap.Error(err))
		}
		return domain.ExchangeRate{}, false
	}
	var out domain.ExchangeRate
	if err := json.Unmarshal(b, &out); err != nil {
		c.Log.Debug("rate_cache_decode_failed", zap.Error(err))
		return domain.ExchangeRate{}, false
	}
	return out, true
}

func (c *Cache) Set(ctx context.Context, rate domain.ExchangeRate, ttl time.Duration) error {
	b, err := json.Marshal(rate)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, key(rate.Base, rate.Target), b, ttl).Err()
}
