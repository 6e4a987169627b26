package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"rates-engine/internal/domain"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

type fakeClock struct{ t time.Time }

func (f fakeClock) Now() time.Time { return f.t }

type fakeCache struct {
	mu     sync.Mutex
	store  map[string]domain.ExchangeRate
	gets   int
	sets   int
	setErr error
}

func (f *fakeCache) Get(_ context.Context, base, target string) (domain.ExchangeRate, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	r, ok := f.store[domain.PairKey(base, target)]
	return r, ok
}

func (f *fakeCache) Set(_ context.Context, r domain.ExchangeRate, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	if f.store == nil {
		f.store = map[string]domain.ExchangeRate{}
	}
	f.store[domain.PairKey(r.Base, r.Target)] = r
	return nil
}

func (f *fakeCache) has(base, target string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.store[domain.PairKey(base, target)]
	return ok
}

type fakeStore struct {
	mu        sync.Mutex
	store     map[string]domain.ExchangeRate
	finds     int
	findDelay time.Duration
	upserts   int
	upsertErr error
}

func (f *fakeStore) Find(_ context.Context, base, target string) (domain.ExchangeRate, error) {
	f.mu.Lock()
	f.finds++
	delay := f.findDelay
	r, ok := f.store[domain.PairKey(base, target)]
	f.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	if !ok {
		return domain.ExchangeRate{}, ErrRateNotFound
	}
	return r, nil
}

func (f *fakeStore) findCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.finds
}

func (f *fakeStore) Upsert(_ context.Context, r domain.ExchangeRate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if f.store == nil {
		f.store = map[string]domain.ExchangeRate{}
	}
	f.store[domain.PairKey(r.Base, r.Target)] = r
	return nil
}

func (f *fakeStore) get(base, target string) (domain.ExchangeRate, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.store[domain.PairKey(base, target)]
	return r, ok
}

// countingProvider serves per-base rate maps and counts FetchRates calls;
// an optional delay widens the concurrency window for single-flight tests.
type countingProvider struct {
	mu    sync.Mutex
	rates map[string]map[string]decimal.Decimal
	delay time.Duration
	calls int
}

func (p *countingProvider) FetchRates(_ context.Context, base string) (map[string]decimal.Decimal, error) {
	p.mu.Lock()
	p.calls++
	delay := p.delay
	p.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.rates[base]
	if !ok {
		return nil, errors.New("no data for base " + base)
	}
	out := make(map[string]decimal.Decimal, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out, nil
}

func (p *countingProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
