package application

import (
	"context"
	"fmt"
	"time"

	"rates-engine/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var one = decimal.NewFromInt(1)

// Resolver answers (base, target) rate queries by walking a fixed tier
// order: ephemeral cache, durable store, external source, derived inverse,
// static fallback table. Faster tiers are back-filled with whatever a slower
// tier produced.
type Resolver struct {
	cache    RateCache
	store    RateStore
	provider RateProvider
	ttl      time.Duration
	clock    Clock
	log      *zap.Logger

	group singleflight.Group
}

type ResolverOption func(*Resolver)

func WithClock(c Clock) ResolverOption { return func(r *Resolver) { r.clock = c } }

func WithLogger(l *zap.Logger) ResolverOption { return func(r *Resolver) { r.log = l } }

func NewResolver(cache RateCache, store RateStore, provider RateProvider, ttl time.Duration, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		cache:    cache,
		store:    store,
		provider: provider,
		ttl:      ttl,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.ttl <= 0 {
		r.ttl = time.Hour
	}
	if r.clock == nil {
		r.clock = realClock{}
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	return r
}

// Resolve returns a rate for the pair, or ErrRateNotFound when every tier
// fails. Identity pairs resolve to 1 without any I/O. Concurrent calls for
// the same uncached pair coalesce into a single underlying resolution.
func (r *Resolver) Resolve(ctx context.Context, base, target string, forceRefresh bool) (domain.ExchangeRate, error) {
	base, target = domain.NormalizeCode(base), domain.NormalizeCode(target)
	if base == target {
		return r.identity(base), nil
	}
	if !forceRefresh {
		if rate, ok := r.cache.Get(ctx, base, target); ok {
			return rate, nil
		}
	}
	// Forced resolutions fly under their own key so that a forced caller
	// never coalesces with a plain lookup and gets handed a store-tier value.
	key := domain.PairKey(base, target)
	if forceRefresh {
		key = "force:" + key
	}
	v, err, _ := r.group.Do(key, func() (any, error) {
		return r.resolveTiers(ctx, base, target, forceRefresh)
	})
	if err != nil {
		return domain.ExchangeRate{}, err
	}
	return v.(domain.ExchangeRate), nil
}

// ResolveAllowStale runs the normal pipeline and, when nothing resolves,
// deliberately reuses the last durable record even past its expiry. The
// second return reports whether a stale value was served.
func (r *Resolver) ResolveAllowStale(ctx context.Context, base, target string) (domain.ExchangeRate, bool, error) {
	rate, err := r.Resolve(ctx, base, target, false)
	if err == nil {
		return rate, false, nil
	}
	base, target = domain.NormalizeCode(base), domain.NormalizeCode(target)
	stored, ferr := r.store.Find(ctx, base, target)
	if ferr != nil {
		return domain.ExchangeRate{}, false, err
	}
	r.log.Warn("stale_rate_served",
		zap.String("pair", domain.PairKey(base, target)),
		zap.Time("expired_at", stored.ExpiresAt),
	)
	return stored, true, nil
}

// Refresh forces a fetch from the external source for one pair and persists
// the result. Unlike Resolve it never falls through to derived or fallback
// values: a refresh that cannot reach the source fails.
func (r *Resolver) Refresh(ctx context.Context, base, target string) (domain.ExchangeRate, error) {
	base, target = domain.NormalizeCode(base), domain.NormalizeCode(target)
	if base == target {
		return r.identity(base), nil
	}
	key := "refresh:" + domain.PairKey(base, target)
	v, err, _ := r.group.Do(key, func() (any, error) {
		return r.fetchDirect(ctx, base, target)
	})
	if err != nil {
		return domain.ExchangeRate{}, err
	}
	return v.(domain.ExchangeRate), nil
}

func (r *Resolver) identity(code string) domain.ExchangeRate {
	now := r.clock.Now()
	return domain.ExchangeRate{
		Base:       code,
		Target:     code,
		Rate:       one,
		Source:     domain.SourceIdentity,
		ObservedAt: now,
		ExpiresAt:  now.Add(r.ttl),
	}
}

func (r *Resolver) resolveTiers(ctx context.Context, base, target string, forceRefresh bool) (domain.ExchangeRate, error) {
	if !forceRefresh {
		if rate, err := r.store.Find(ctx, base, target); err == nil && !rate.Expired(r.clock.Now()) {
			r.cacheSet(ctx, rate)
			return rate, nil
		}
	}

	if rate, err := r.fetchDirect(ctx, base, target); err == nil {
		return rate, nil
	} else {
		r.log.Debug("rate_source_miss",
			zap.String("pair", domain.PairKey(base, target)),
			zap.Error(err),
		)
	}

	// One inverse hop: the reversed pair goes through cache/store/source
	// only, never through another inversion or the fallback table.
	if inv, err := r.inverseLookup(ctx, target, base, forceRefresh); err == nil && inv.Rate.Sign() > 0 {
		now := r.clock.Now()
		derived := domain.ExchangeRate{
			Base:       base,
			Target:     target,
			Rate:       one.Div(inv.Rate),
			Source:     domain.SourceDerivedInverse,
			ObservedAt: now,
			ExpiresAt:  now.Add(r.ttl),
		}
		// Cached ephemerally only; persisting a derived value would let its
		// staleness masquerade as authoritative.
		r.cacheSet(ctx, derived)
		return derived, nil
	}

	if fb, ok := domain.FallbackRate(base, target); ok {
		now := r.clock.Now()
		return domain.ExchangeRate{
			Base:       base,
			Target:     target,
			Rate:       fb,
			Source:     domain.SourceFallback,
			ObservedAt: now,
			ExpiresAt:  now.Add(r.ttl),
		}, nil
	}

	return domain.ExchangeRate{}, ErrRateNotFound
}

// fetchDirect asks the external source for base and extracts target's rate.
// Success is persisted and cached; both writes are best-effort.
func (r *Resolver) fetchDirect(ctx context.Context, base, target string) (domain.ExchangeRate, error) {
	rates, err := r.provider.FetchRates(ctx, base)
	if err != nil {
		return domain.ExchangeRate{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	v, ok := rates[target]
	if !ok || v.Sign() <= 0 {
		return domain.ExchangeRate{}, fmt.Errorf("%w: no usable rate for %s in %s response", ErrSourceUnavailable, target, base)
	}
	now := r.clock.Now()
	rate := domain.ExchangeRate{
		Base:       base,
		Target:     target,
		Rate:       v,
		Source:     domain.SourceAPI,
		ObservedAt: now,
		ExpiresAt:  now.Add(r.ttl),
	}
	if err := r.store.Upsert(ctx, rate); err != nil {
		r.log.Warn("rate_store_write_failed",
			zap.String("pair", domain.PairKey(base, target)),
			zap.Error(err),
		)
	}
	r.cacheSet(ctx, rate)
	return rate, nil
}

func (r *Resolver) inverseLookup(ctx context.Context, base, target string, forceRefresh bool) (domain.ExchangeRate, error) {
	if !forceRefresh {
		if rate, ok := r.cache.Get(ctx, base, target); ok {
			return rate, nil
		}
		if rate, err := r.store.Find(ctx, base, target); err == nil && !rate.Expired(r.clock.Now()) {
			return rate, nil
		}
	}
	return r.fetchDirect(ctx, base, target)
}

func (r *Resolver) cacheSet(ctx context.Context, rate domain.ExchangeRate) {
	if err := r.cache.Set(ctx, rate, r.ttl); err != nil {
		r.log.Debug("rate_cache_write_failed",
			zap.String("pair", domain.PairKey(rate.Base, rate.Target)),
			zap.Error(err),
		)
	}
}
