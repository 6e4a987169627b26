package application

import (
	"context"
	"time"

	"rates-engine/internal/domain"

	"github.com/shopspring/decimal"
)

// RateCache is the ephemeral TTL-bound tier. Implementations must degrade
// gracefully: a Get against an unavailable backend is a miss, a Set a no-op.
type RateCache interface {
	Get(ctx context.Context, base, target string) (domain.ExchangeRate, bool)
	Set(ctx context.Context, rate domain.ExchangeRate, ttl time.Duration) error
}

// RateStore is the durable tier. Find returns the record regardless of its
// expiry state; checking ExpiresAt is the caller's job, which is what lets a
// degraded-mode caller opt into stale data.
type RateStore interface {
	Find(ctx context.Context, base, target string) (domain.ExchangeRate, error)
	Upsert(ctx context.Context, rate domain.ExchangeRate) error
}

// RateProvider is the external rate source: one call per base currency,
// returning target -> rate.
type RateProvider interface {
	FetchRates(ctx context.Context, base string) (map[string]decimal.Decimal, error)
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// NoopCache always misses; used when no cache backend is configured.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string, string) (domain.ExchangeRate, bool) {
	return domain.ExchangeRate{}, false
}

func (NoopCache) Set(context.Context, domain.ExchangeRate, time.Duration) error { return nil }
