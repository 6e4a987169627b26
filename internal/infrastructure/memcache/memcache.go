// Package memcache is the in-process ephemeral cache, for deployments that
// run without Redis.
package memcache

import (
	"context"
	"fmt"
	"time"

	"rates-engine/internal/application"
	"rates-engine/internal/domain"

	"github.com/dgraph-io/ristretto"
)

type Cache struct {
	cache *ristretto.Cache
}

var _ application.RateCache = (*Cache)(nil)

func New(maxItems int64) (*Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10 * maxItems,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create rate cache: %w", err)
	}
	return &Cache{cache: c}, nil
}

func (c *Cache) Get(_ context.Context, base, target string) (domain.ExchangeRate, bool) {
	v, ok := c.cache.Get(domain.PairKey(base, target))
	if !ok {
		return domain.ExchangeRate{}, false
	}
	rate, ok := v.(domain.ExchangeRate)
	return rate, ok
}

func (c *Cache) Set(_ context.Context, rate domain.ExchangeRate, ttl time.Duration) error {
	c.cache.SetWithTTL(domain.PairKey(rate.Base, rate.Target), rate, 1, ttl)
	return nil
}

// Wait flushes pending writes; ristretto admits entries asynchronously.
func (c *Cache) Wait() { c.cache.Wait() }

func (c *Cache) Close() { c.cache.Close() }
