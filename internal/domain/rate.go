package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateSource tells which tier produced a rate.
type RateSource string

const (
	SourceAPI            RateSource = "api"
	SourceDerivedInverse RateSource = "derived_inverse"
	SourceFallback       RateSource = "fallback"
	// SourceIdentity marks base==target resolutions; never persisted.
	SourceIdentity RateSource = "identity"
)

// ExchangeRate is one conversion rate observation. At most one durable
// record exists per (Base, Target) pair; upserts overwrite.
type ExchangeRate struct {
	Base       string          `json:"base"`
	Target     string          `json:"target"`
	Rate       decimal.Decimal `json:"rate"`
	Source     RateSource      `json:"source"`
	ObservedAt time.Time       `json:"observed_at"`
	ExpiresAt  time.Time       `json:"expires_at"`
}

// Expired reports whether the record must no longer be trusted.
func (r ExchangeRate) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

func PairKey(base, target string) string {
	return base + "/" + target
}
