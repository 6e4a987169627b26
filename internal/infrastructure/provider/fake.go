package provider

import (
	"context"
	"sync"

	"rates-engine/internal/application"

	"github.com/shopspring/decimal"
)

// Ensure Fake implements application.RateProvider.
var _ application.RateProvider = (*Fake)(nil)

// Fake serves a fixed rate table and counts calls. Used in tests and as the
// local-dev provider when no external API is configured.
type Fake struct {
	mu    sync.Mutex
	rates map[string]map[string]decimal.Decimal
	err   error
	calls int
}

func NewFake(rates map[string]map[string]decimal.Decimal) *Fake {
	return &Fake{rates: rates}
}

func (f *Fake) FetchRates(_ context.Context, base string) (map[string]decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.rates[base]
	if !ok {
		return nil, application.ErrSourceUnavailable
	}
	out := make(map[string]decimal.Decimal, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out, nil
}

// Calls reports how many times FetchRates ran.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Fail makes every subsequent FetchRates return err; nil restores normal
// behavior.
func (f *Fake) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}
