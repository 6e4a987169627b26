package application

import (
	"context"
	"fmt"

	"rates-engine/internal/domain"
	"rates-engine/internal/money"

	"github.com/shopspring/decimal"
)

// Service is the surface the calculator/API layer consumes.
type Service struct {
	resolver  *Resolver
	refresher *BatchRefresher
	catalog   *domain.CurrencyCatalog
}

func NewService(resolver *Resolver, refresher *BatchRefresher, catalog *domain.CurrencyCatalog) *Service {
	return &Service{resolver: resolver, refresher: refresher, catalog: catalog}
}

// Rate resolves the full rate record. With allowStale set, an expired
// durable record is served when nothing fresher resolves; the bool reports
// whether that happened.
func (s *Service) Rate(ctx context.Context, base, target string, forceRefresh, allowStale bool) (domain.ExchangeRate, bool, error) {
	if allowStale && !forceRefresh {
		return s.resolver.ResolveAllowStale(ctx, base, target)
	}
	rate, err := s.resolver.Resolve(ctx, base, target, forceRefresh)
	return rate, false, err
}

func (s *Service) GetExchangeRate(ctx context.Context, base, target string, forceRefresh bool) (decimal.Decimal, error) {
	rate, err := s.resolver.Resolve(ctx, base, target, forceRefresh)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return rate.Rate, nil
}

// Convert returns amount * rate(base, target), or ErrRateNotFound.
func (s *Service) Convert(ctx context.Context, amount decimal.Decimal, base, target string) (decimal.Decimal, error) {
	rate, err := s.GetExchangeRate(ctx, base, target, false)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return amount.Mul(rate), nil
}

// FormatCurrency renders amount per the currency's metadata. Unknown codes
// degrade to "{amount} {code}" instead of failing.
func (s *Service) FormatCurrency(amount decimal.Decimal, code string, sep *money.Separators) string {
	cur, ok := s.catalog.Lookup(code)
	if !ok {
		return fmt.Sprintf("%s %s", amount.String(), domain.NormalizeCode(code))
	}
	if sep == nil {
		return money.Format(amount, cur, money.DefaultSeparators)
	}
	return money.Format(amount, cur, *sep)
}

func (s *Service) RefreshAllRates(ctx context.Context, bases []string) RefreshStats {
	return s.refresher.RefreshAll(ctx, bases)
}

func (s *Service) SupportedCurrencies() []domain.Currency {
	return s.catalog.Active()
}
