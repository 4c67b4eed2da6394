// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from user input
// and converting between cents and the decimal representation stored on disk.
package core

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// MaxAmount is the largest accepted amount in whole currency units. It keeps
// the sum of any realistic collection within int64 cents.
const MaxAmount = 1_000_000_000_000

var maxCents = decimal.NewFromInt(MaxAmount).Shift(2)

// ParseAmount converts a decimal string to Money with half-up rounding to cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Non-numeric input and amounts above MaxAmount return ErrInvalidAmount; zero or negative values
// (including values that round to zero) return ErrNonPositiveAmount.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234 cents
//	ParseAmount("12,345") -> 1235 cents (rounds up)
//	ParseAmount("0")      -> ErrNonPositiveAmount
//	ParseAmount("abc")    -> ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	cents, err := decimalToCents(s)
	if err != nil {
		return Money{}, err
	}
	m := Money{Cents: cents}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

func decimalToCents(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	shifted := d.Round(2).Shift(2)
	if shifted.Abs().GreaterThan(maxCents) {
		return 0, ErrInvalidAmount
	}
	return shifted.IntPart(), nil
}

// Decimal returns the amount in major currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String renders the amount with two decimals, without currency symbol.
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Display formats the amount for the given ISO currency code (e.g. "₹1,234.50").
func (m Money) Display(currency string) string {
	return money.New(m.Cents, currency).Display()
}

// MarshalJSON encodes the amount as a plain JSON number in major units.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string. It does not
// enforce positivity; callers validate the surrounding record.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if bytes.Equal(raw, []byte("null")) {
		return fmt.Errorf("amount: %w", ErrInvalidAmount)
	}
	raw = bytes.Trim(raw, `"`)
	cents, err := decimalToCents(string(raw))
	if err != nil {
		return fmt.Errorf("amount %s: %w", data, err)
	}
	m.Cents = cents
	return nil
}

// CurrencySymbol returns the display grapheme for an ISO currency code,
// or the code itself when unknown.
func CurrencySymbol(code string) string {
	if c := money.GetCurrency(code); c != nil {
		return c.Grapheme
	}
	return code
}
