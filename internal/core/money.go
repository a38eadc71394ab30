// Package core provides money parsing and handling utilities.
//
// This file contains functions for converting between user-supplied
// decimal amounts and the integer cent representation used for storage
// and aggregation.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// maxCents bounds amounts so that a month of sums cannot overflow int64.
const maxCents = int64(1) << 50

// maxExponent bounds the decimal exponent accepted from clients. It must be
// checked before any arithmetic: rescaling costs 10^|exponent|.
const maxExponent = 15

// ParseAmount converts a decimal string to Money with half-up rounding to
// two decimal places.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted.
// Returns ErrInvalidAmount for malformed, zero or negative values.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234 cents
//	ParseAmount("12,345") -> 1235 cents
//	ParseAmount("12.344") -> 1234 cents
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return MoneyFromDecimal(d)
}

// MoneyFromDecimal converts d to Money, rounding half away from zero to
// whole cents. Non-positive results and exponents outside ±maxExponent
// are rejected.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Round(2).Shift(2)
	if !cents.IsPositive() || cents.GreaterThanOrEqual(decimal.NewFromInt(maxCents)) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents.IntPart()}, nil
}

// Decimal returns the amount as an exact decimal in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount with exactly two decimals, e.g. "15.00".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Add returns the exact sum of m and o.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// GoString keeps %#v output readable in test failures.
func (m Money) GoString() string {
	return fmt.Sprintf("core.Money{%s}", m.String())
}
