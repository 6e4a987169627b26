package pg

import (
	"context"
	"fmt"

	"rates-engine/internal/domain"
)

type CurrencyRepo struct{ db *DB }

func NewCurrencyRepo(db *DB) *CurrencyRepo { return &CurrencyRepo{db: db} }

func (r *CurrencyRepo) ListActive(ctx context.Context) ([]domain.Currency, error) {
	const q = `
        SELECT code, name, symbol, decimal_places, is_active
        FROM currencies
        WHERE is_active
        ORDER BY code`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list currencies: %w", err)
	}
	defer rows.Close()

	var out []domain.Currency
	for rows.Next() {
		var c domain.Currency
		if err := rows.Scan(&c.Code, &c.Name, &c.Symbol, &c.DecimalPlaces, &c.IsActive); err != nil {
			return nil, fmt.Errorf("scan currency: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
