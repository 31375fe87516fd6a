package helpers

import (
	"fmt"
	"math/big"
	"strings"
)

// UnitsToBase converts whole token units to base units given the token decimals
func UnitsToBase(units *big.Int, decimals uint8) *big.Int {
	p := big.NewInt(10)
	p.Exp(p, big.NewInt(int64(decimals)), nil)
	p.Mul(p, units)

	return p
}

// StringToBigInt converts string to BigInt, panics on empty strings and errors
func StringToBigInt(s string) *big.Int {
	if s == "" {
		panic("string is empty")
	}

	b, success := big.NewInt(0).SetString(s, 10)
	if !success {
		panic(fmt.Sprintf("Cannot decode %s into big.Int", s))
	}

	return b
}

// ParseAmount decodes a non-negative decimal integer
func ParseAmount(s string) (*big.Int, error) {
	if !IsValidBigInt(s) {
		return nil, fmt.Errorf("invalid amount %q", s)
	}

	return StringToBigInt(s), nil
}

// IsValidBigInt verifies that string is a valid non-negative int
func IsValidBigInt(s string) bool {
	if s == "" {
		return false
	}

	b, success := big.NewInt(0).SetString(s, 10)
	if !success {
		return false
	}

	if b.Cmp(big.NewInt(0)) == -1 {
		return false
	}

	return true
}

// FormatUnits renders base units as a decimal string with the given precision
func FormatUnits(value *big.Int, decimals uint8) string {
	if decimals == 0 {
		return value.String()
	}

	s := new(big.Int).Abs(value).String()
	if len(s) <= int(decimals) {
		s = strings.Repeat("0", int(decimals)-len(s)+1) + s
	}

	whole, frac := s[:len(s)-int(decimals)], strings.TrimRight(s[len(s)-int(decimals):], "0")
	if value.Sign() < 0 {
		whole = "-" + whole
	}
	if frac == "" {
		return whole
	}

	return whole + "." + frac
}
