package client

import (
	"errors"
	"math/big"
	"regexp"

	"github.com/shopspring/decimal"
)

var (
	ErrAmountFormatInvalid = errors.New("invalid monetary amount")
)

// amountPattern admits plain digit strings with at most two decimal
// digits. No sign, no exponent, no grouping separators.
var amountPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]{1,2})?$`)

// ParseAmount converts a monetary input string into integer minor units
// (cents). Inputs with more than two decimal digits, non-numeric
// characters, or a negative sign are rejected before any cryptographic
// work happens.
func ParseAmount(input string) (*big.Int, error) {
	if !amountPattern.MatchString(input) {
		return nil, ErrAmountFormatInvalid
	}

	d, err := decimal.NewFromString(input)
	if err != nil {
		return nil, ErrAmountFormatInvalid
	}

	cents := d.Shift(2)
	if !cents.IsInteger() {
		return nil, ErrAmountFormatInvalid
	}

	return cents.BigInt(), nil
}

// FormatAmount renders minor units back into a two-decimal string.
func FormatAmount(minorUnits int64) string {
	return decimal.New(minorUnits, -2).StringFixed(2)
}
