package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rates-engine/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestResolver(cache *fakeCache, store *fakeStore, p RateProvider) *Resolver {
	return NewResolver(cache, store, p, time.Hour, WithClock(fakeClock{t: testNow}))
}

func Test_Resolve_IdentityPair_NoIO(t *testing.T) {
	t.Parallel()
	cache, store := &fakeCache{}, &fakeStore{}
	p := &countingProvider{}
	r := newTestResolver(cache, store, p)

	rate, err := r.Resolve(context.Background(), "usd", "USD", false)
	require.NoError(t, err)
	require.True(t, rate.Rate.Equal(decimal.NewFromInt(1)))
	require.Equal(t, domain.SourceIdentity, rate.Source)
	require.Zero(t, p.Calls())
	require.Zero(t, cache.gets)
	require.Zero(t, store.finds)
}

func Test_Resolve_CacheHit_ReturnsCachedUnchanged(t *testing.T) {
	t.Parallel()
	cached := domain.ExchangeRate{
		Base: "USD", Target: "EUR", Rate: d("0.9123"),
		Source: domain.SourceAPI, ObservedAt: testNow, ExpiresAt: testNow.Add(time.Hour),
	}
	cache := &fakeCache{store: map[string]domain.ExchangeRate{"USD/EUR": cached}}
	p := &countingProvider{}
	r := newTestResolver(cache, &fakeStore{}, p)

	rate, err := r.Resolve(context.Background(), "USD", "EUR", false)
	require.NoError(t, err)
	require.True(t, rate.Rate.Equal(cached.Rate))
	require.Equal(t, cached.Source, rate.Source)
	require.Zero(t, p.Calls())
}

func Test_Resolve_StoreHit_PromotedToCache(t *testing.T) {
	t.Parallel()
	stored := domain.ExchangeRate{
		Base: "USD", Target: "EUR", Rate: d("0.91"),
		Source: domain.SourceAPI, ObservedAt: testNow.Add(-time.Minute), ExpiresAt: testNow.Add(time.Hour),
	}
	cache := &fakeCache{}
	store := &fakeStore{store: map[string]domain.ExchangeRate{"USD/EUR": stored}}
	p := &countingProvider{}
	r := newTestResolver(cache, store, p)

	rate, err := r.Resolve(context.Background(), "USD", "EUR", false)
	require.NoError(t, err)
	require.True(t, rate.Rate.Equal(stored.Rate))
	require.Zero(t, p.Calls())
	require.True(t, cache.has("USD", "EUR"))
}

func Test_Resolve_SourceFetch_PersistsAndCaches(t *testing.T) {
	t.Parallel()
	cache, store := &fakeCache{}, &fakeStore{}
	p := &countingProvider{rates: map[string]map[string]decimal.Decimal{
		"USD": {"EUR": d("0.90")},
	}}
	r := newTestResolver(cache, store, p)

	rate, err := r.Resolve(context.Background(), "USD", "EUR", false)
	require.NoError(t, err)
	require.True(t, rate.Rate.Equal(d("0.90")))
	require.Equal(t, domain.SourceAPI, rate.Source)
	require.Equal(t, testNow, rate.ObservedAt)
	require.Equal(t, testNow.Add(time.Hour), rate.ExpiresAt)
	require.Equal(t, 1, p.Calls())

	persisted, ok := store.get("USD", "EUR")
	require.True(t, ok)
	require.True(t, persisted.Rate.Equal(d("0.90")))
	require.True(t, cache.has("USD", "EUR"))
}

func Test_Resolve_ExpiredStoreRecord_Refetches(t *testing.T) {
	t.Parallel()
	expired := domain.ExchangeRate{
		Base: "USD", Target: "EUR", Rate: d("0.80"),
		Source: domain.SourceAPI, ObservedAt: testNow.Add(-3 * time.Hour), ExpiresAt: testNow.Add(-2 * time.Hour),
	}
	store := &fakeStore{store: map[string]domain.ExchangeRate{"USD/EUR": expired}}
	p := &countingProvider{rates: map[string]map[string]decimal.Decimal{
		"USD": {"EUR": d("0.90")},
	}}
	r := newTestResolver(&fakeCache{}, store, p)

	rate, err := r.Resolve(context.Background(), "USD", "EUR", false)
	require.NoError(t, err)
	require.True(t, rate.Rate.Equal(d("0.90")))
	require.Equal(t, 1, p.Calls())
}

func Test_Resolve_ForceRefresh_SkipsCacheAndStoreReads(t *testing.T) {
	t.Parallel()
	old := domain.ExchangeRate{
		Base: "USD", Target: "EUR", Rate: d("0.50"),
		Source: domain.SourceAPI, ObservedAt: testNow, ExpiresAt: testNow.Add(time.Hour),
	}
	cache := &fakeCache{store: map[string]domain.ExchangeRate{"USD/EUR": old}}
	store := &fakeStore{store: map[string]domain.ExchangeRate{"USD/EUR": old}}
	p := &countingProvider{rates: map[string]map[string]decimal.Decimal{
		"USD": {"EUR": d("0.90")},
	}}
	r := newTestResolver(cache, store, p)

	rate, err := r.Resolve(context.Background(), "USD", "EUR", true)
	require.NoError(t, err)
	require.True(t, rate.Rate.Equal(d("0.90")))
	require.Equal(t, 1, p.Calls())
	require.Zero(t, cache.gets)
}

func Test_Resolve_InverseDerivation(t *testing.T) {
	t.Parallel()
	cache, store := &fakeCache{}, &fakeStore{}
	// Only EUR is a known base upstream; USD/EUR must come from 1/(EUR/USD).
	p := &countingProvider{rates: map[string]map[string]decimal.Decimal{
		"EUR": {"USD": d("1.25")},
	}}
	r := newTestResolver(cache, store, p)

	rate, err := r.Resolve(context.Background(), "USD", "EUR", false)
	require.NoError(t, err)
	require.Equal(t, domain.SourceDerivedInverse, rate.Source)
	require.True(t, rate.Rate.Sub(d("0.8")).Abs().LessThan(d("0.000001")))

	// The direct pair fetched during inversion is authoritative and stored;
	// the derived value is cached ephemerally only.
	_, ok := store.get("USD", "EUR")
	require.False(t, ok)
	inv, ok := store.get("EUR", "USD")
	require.True(t, ok)
	require.Equal(t, domain.SourceAPI, inv.Source)
	require.True(t, cache.has("USD", "EUR"))
}

func Test_Resolve_FallbackTier_NotCached(t *testing.T) {
	t.Parallel()
	cache := &fakeCache{}
	p := &countingProvider{} // fails for every base
	r := newTestResolver(cache, &fakeStore{}, p)

	rate, err := r.Resolve(context.Background(), "USD", "JPY", false)
	require.NoError(t, err)
	require.Equal(t, domain.SourceFallback, rate.Source)
	require.True(t, rate.Rate.Equal(d("149.50")))
	require.Zero(t, cache.sets)

	// Inverse of a fallback entry works too.
	inv, err := r.Resolve(context.Background(), "JPY", "USD", false)
	require.NoError(t, err)
	require.Equal(t, domain.SourceFallback, inv.Source)
	require.True(t, inv.Rate.Mul(d("149.50")).Sub(decimal.NewFromInt(1)).Abs().LessThan(d("0.000001")))
}

func Test_Resolve_NothingResolves(t *testing.T) {
	t.Parallel()
	r := newTestResolver(&fakeCache{}, &fakeStore{}, &countingProvider{})

	_, err := r.Resolve(context.Background(), "USD", "ZAR", false)
	require.ErrorIs(t, err, ErrRateNotFound)
}

func Test_Resolve_WriteFailuresAreSwallowed(t *testing.T) {
	t.Parallel()
	cache := &fakeCache{setErr: errors.New("cache down")}
	store := &fakeStore{upsertErr: errors.New("store down")}
	p := &countingProvider{rates: map[string]map[string]decimal.Decimal{
		"USD": {"EUR": d("0.90")},
	}}
	r := newTestResolver(cache, store, p)

	rate, err := r.Resolve(context.Background(), "USD", "EUR", false)
	require.NoError(t, err)
	require.True(t, rate.Rate.Equal(d("0.90")))
}

func Test_Resolve_SingleFlight(t *testing.T) {
	t.Parallel()
	p := &countingProvider{
		rates: map[string]map[string]decimal.Decimal{"USD": {"EUR": d("0.90")}},
		delay: 50 * time.Millisecond,
	}
	r := newTestResolver(&fakeCache{}, &fakeStore{}, p)

	const callers = 25
	results := make([]domain.ExchangeRate, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rate, err := r.Resolve(context.Background(), "USD", "EUR", false)
			require.NoError(t, err)
			results[i] = rate
		}(i)
	}
	wg.Wait()

	require.Equal(t, 1, p.Calls())
	for _, rate := range results {
		require.True(t, rate.Rate.Equal(results[0].Rate))
		require.Equal(t, results[0].ObservedAt, rate.ObservedAt)
	}
}

func Test_Resolve_ForceRefresh_DoesNotCoalesceWithPlainResolve(t *testing.T) {
	t.Parallel()
	stored := domain.ExchangeRate{
		Base:       "USD",
		Target:     "EUR",
		Rate:       d("0.50"),
		Source:     domain.SourceAPI,
		ObservedAt: testNow.Add(-time.Minute),
		ExpiresAt:  testNow.Add(time.Hour),
	}
	store := &fakeStore{
		store:     map[string]domain.ExchangeRate{domain.PairKey("USD", "EUR"): stored},
		findDelay: 50 * time.Millisecond,
	}
	p := &countingProvider{
		rates: map[string]map[string]decimal.Decimal{"USD": {"EUR": d("0.90")}},
	}
	r := newTestResolver(&fakeCache{}, store, p)

	// Open a plain resolution and hold it in the store tier.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		rate, err := r.Resolve(context.Background(), "USD", "EUR", false)
		require.NoError(t, err)
		require.True(t, rate.Rate.Equal(d("0.50")))
	}()
	require.Eventually(t, func() bool {
		return store.findCount() >= 1
	}, 3*time.Second, time.Millisecond)

	// A forced caller arriving mid-flight must still reach the source
	// instead of being handed the in-flight store-tier record.
	forced, err := r.Resolve(context.Background(), "USD", "EUR", true)
	require.NoError(t, err)
	require.Equal(t, domain.SourceAPI, forced.Source)
	require.True(t, forced.Rate.Equal(d("0.90")))
	require.Equal(t, 1, p.Calls())

	wg.Wait()
}

func Test_ResolveAllowStale(t *testing.T) {
	t.Parallel()
	expired := domain.ExchangeRate{
		Base: "USD", Target: "ZAR", Rate: d("18.50"),
		Source: domain.SourceAPI, ObservedAt: testNow.Add(-48 * time.Hour), ExpiresAt: testNow.Add(-47 * time.Hour),
	}
	store := &fakeStore{store: map[string]domain.ExchangeRate{"USD/ZAR": expired}}
	r := newTestResolver(&fakeCache{}, store, &countingProvider{})

	rate, stale, err := r.ResolveAllowStale(context.Background(), "USD", "ZAR")
	require.NoError(t, err)
	require.True(t, stale)
	require.True(t, rate.Rate.Equal(d("18.50")))

	// With no durable record at all the original failure surfaces.
	_, _, err = r.ResolveAllowStale(context.Background(), "ZAR", "PLN")
	require.ErrorIs(t, err, ErrRateNotFound)
}

func Test_Refresh_SourceTierOnly(t *testing.T) {
	t.Parallel()
	store := &fakeStore{}
	p := &countingProvider{} // source down
	r := newTestResolver(&fakeCache{}, store, p)

	// USD/JPY has a fallback entry, but a refresh must not count it.
	_, err := r.Refresh(context.Background(), "USD", "JPY")
	require.ErrorIs(t, err, ErrSourceUnavailable)

	p2 := &countingProvider{rates: map[string]map[string]decimal.Decimal{
		"USD": {"JPY": d("150.1")},
	}}
	r2 := newTestResolver(&fakeCache{}, store, p2)
	rate, err := r2.Refresh(context.Background(), "USD", "JPY")
	require.NoError(t, err)
	require.Equal(t, domain.SourceAPI, rate.Source)
	_, ok := store.get("USD", "JPY")
	require.True(t, ok)
}
