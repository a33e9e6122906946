// Package money holds the minor-unit arithmetic used by rating and invoicing.
// All persisted monetary state is an int64 count of minor units (paise);
// decimal values only exist transiently while a rate or percentage is applied.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fraction digits in one currency unit.
const Scale = 2

// ToMinor rounds d half away from zero to two fraction digits and returns
// the result in minor units.
func ToMinor(d decimal.Decimal) int64 {
	return d.Round(Scale).Shift(Scale).IntPart()
}

// FromMinor converts minor units back to a currency decimal.
func FromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -Scale)
}

// Percent returns round(amount * pct / 100) in minor units.
func Percent(amount int64, pct decimal.Decimal) int64 {
	return ToMinor(FromMinor(amount).Mul(pct).Shift(-2))
}

// ApplyMarkup returns round(base * (1 + pct/100)) in minor units.
func ApplyMarkup(base, pct decimal.Decimal) int64 {
	factor := decimal.NewFromInt(1).Add(pct.Shift(-2))
	return ToMinor(base.Mul(factor))
}

// RoundToUnit rounds minor units to the nearest whole currency unit, half away from zero.
func RoundToUnit(minor int64) int64 {
	return ToMinor(FromMinor(minor).Round(0))
}

// Parse reads a currency or percentage string. Blank input parses as zero.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	return d, nil
}

// Format renders minor units as a fixed two-digit currency string.
func Format(minor int64) string {
	return FromMinor(minor).StringFixed(Scale)
}
