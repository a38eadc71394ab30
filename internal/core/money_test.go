package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"1.004", 100, true},
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"0.004", 0, false}, // rounds to zero
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if assert.NoError(t, err, "input %q", tc.in) {
				assert.Equal(t, tc.out, got.Cents, "input %q", tc.in)
			}
		} else {
			assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", tc.in)
		}
	}
}

func TestMoneyFromDecimal(t *testing.T) {
	m, err := MoneyFromDecimal(decimal.RequireFromString("10.5"))
	assert.NoError(t, err)
	assert.Equal(t, int64(1050), m.Cents)

	_, err = MoneyFromDecimal(decimal.RequireFromString("1e20"))
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestAmountExponentBounds(t *testing.T) {
	for _, in := range []string{"1e100000000", "1e-100000000", "1e2147483647", "1e16", "12.3400000000000000"} {
		start := time.Now()
		_, err := ParseAmount(in)
		assert.ErrorIs(t, err, ErrInvalidArgument, "input %q", in)
		assert.Less(t, time.Since(start), 100*time.Millisecond, "input %q", in)
	}

	m, err := ParseAmount("1.5e3")
	assert.NoError(t, err)
	assert.Equal(t, int64(150000), m.Cents)
	m, err = ParseAmount("0.000000000000010e12")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), m.Cents)
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "15.00", Money{Cents: 1500}.String())
	assert.Equal(t, "0.07", Money{Cents: 7}.String())
	assert.Equal(t, "0.00", Money{}.String())
	assert.True(t, Money{Cents: 1234}.Decimal().Equal(decimal.RequireFromString("12.34")))
}
