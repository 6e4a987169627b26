// Package money renders resolved amounts as display strings using currency
// metadata and locale separators.
package money

import (
	"strings"

	"rates-engine/internal/domain"

	"github.com/shopspring/decimal"
)

// Separators are the locale grouping characters.
type Separators struct {
	Thousands string
	Decimal   string
}

var DefaultSeparators = Separators{Thousands: ",", Decimal: "."}

// Format rounds amount half-up to the currency's decimal places, groups the
// integer part in threes and prefixes the currency symbol. Suffix placement
// is the caller's locale concern.
func Format(amount decimal.Decimal, cur domain.Currency, sep Separators) string {
	if sep.Thousands == "" && sep.Decimal == "" {
		sep = DefaultSeparators
	}
	places := cur.DecimalPlaces
	if places < 0 {
		places = 0
	}
	rounded := amount.Round(places)

	fixed := rounded.Abs().StringFixed(places)
	intPart := fixed
	fracPart := ""
	if i := strings.IndexByte(fixed, '.'); i >= 0 {
		intPart, fracPart = fixed[:i], fixed[i+1:]
	}

	var b strings.Builder
	if rounded.Sign() < 0 {
		b.WriteByte('-')
	}
	b.WriteString(cur.Symbol)
	b.WriteString(group(intPart, sep.Thousands))
	if fracPart != "" {
		b.WriteString(sep.Decimal)
		b.WriteString(fracPart)
	}
	return b.String()
}

func group(digits, sep string) string {
	if sep == "" || len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
