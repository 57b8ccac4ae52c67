// Package core holds the transaction entity, calendar types and exact
// money arithmetic shared by every other layer.
//
// Amounts are decimal values carrying two fractional digits. All
// rounding in this package is half-up to two decimal places.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string into a non-negative amount with
// two fractional digits. A third decimal digit rounds half-up. Both dot
// and comma decimal separators are accepted.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12,345") -> 12.35 (rounds up)
//	ParseAmount("-1")     -> error
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return Round2(d), nil
}

// Round2 rounds half-up to two decimal places. For the non-negative
// values this engine deals in, shopspring's round-half-away-from-zero
// is exactly half-up.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percent returns part/whole*100 rounded half-up to two decimals.
// A zero whole divides by one instead, so an empty denominator never
// explodes and the result stays exact.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		whole = decimal.New(1, 0)
	}
	return part.Mul(decimal.New(100, 0)).DivRound(whole, 2)
}

// FormatAmount renders an amount as a plain decimal string with exactly
// two fractional digits and no grouping separators.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// AmountFromCents hydrates a stored integer-cents value.
func AmountFromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// AmountToCents converts an amount to integer cents for storage. The
// amount must already be rounded to two places; any residue beyond
// that is rounded half-up.
func AmountToCents(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}
