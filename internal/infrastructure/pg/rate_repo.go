package pg

import (
	"context"
	"errors"
	"fmt"

	"rates-engine/internal/application"
	"rates-engine/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type RateRepo struct{ db *DB }

func NewRateRepo(db *DB) *RateRepo { return &RateRepo{db: db} }

var _ application.RateStore = (*RateRepo)(nil)

// Find returns the record regardless of expiry; expiry checks belong to the
// caller.
func (r *RateRepo) Find(ctx context.Context, base, target string) (domain.ExchangeRate, error) {
	const q = `
        SELECT base_code, target_code, rate::text, source, observed_at, expires_at
        FROM exchange_rates
        WHERE base_code=$1 AND target_code=$2`
	var out domain.ExchangeRate
	var rateStr, src string
	err := r.db.Pool.QueryRow(ctx, q, base, target).
		Scan(&out.Base, &out.Target, &rateStr, &src, &out.ObservedAt, &out.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ExchangeRate{}, application.ErrRateNotFound
	}
	if err != nil {
		return domain.ExchangeRate{}, fmt.Errorf("find rate: %w", err)
	}
	rate, err := decimal.NewFromString(rateStr)
	if err != nil {
		return domain.ExchangeRate{}, fmt.Errorf("parse stored rate: %w", err)
	}
	out.Rate = rate
	out.Source = domain.RateSource(src)
	return out, nil
}

func (r *RateRepo) Upsert(ctx context.Context, rate domain.ExchangeRate) error {
	const up = `
        INSERT INTO exchange_rates(base_code, target_code, rate, source, observed_at, expires_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (base_code, target_code) DO UPDATE
          SET rate=EXCLUDED.rate,
              source=EXCLUDED.source,
              observed_at=EXCLUDED.observed_at,
              expires_at=EXCLUDED.expires_at`
	_, err := r.db.Pool.Exec(ctx, up,
		rate.Base, rate.Target, rate.Rate.String(), string(rate.Source), rate.ObservedAt, rate.ExpiresAt)
	return err
}
