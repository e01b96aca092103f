// Package core provides money parsing and handling utilities.
//
// Amounts are kept as arbitrary-precision decimals so that sums are exact;
// rounding to two fractional digits happens only when a value is displayed.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user input to a strictly positive decimal.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount(" 5 ")   -> 5, nil
//	ParseAmount("1e3")   -> 1000, nil
//	ParseAmount("0")     -> ErrInvalidAmount
//	ParseAmount("abc")   -> ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders a value with two fractional digits.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
