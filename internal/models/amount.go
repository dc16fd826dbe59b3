package models

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Amount is a money value counted in minor currency units (kobo, cents).
// Catalog prices are stored this way; the gateway speaks major units, so the
// conversion happens only when an Amount is rendered or parsed, using integer
// arithmetic. Only currencies with two-decimal minor units are supported.
type Amount int64

const minorPerMajor = 100

var errInvalidAmount = errors.New("invalid amount")

// FromMinor wraps a minor-unit integer.
func FromMinor(minor int64) Amount {
	return Amount(minor)
}

// Minor returns the amount in minor units.
func (a Amount) Minor() int64 {
	return int64(a)
}

// IsPositive reports whether the amount is strictly greater than zero.
func (a Amount) IsPositive() bool {
	return a > 0
}

// Major renders the amount in major units with exactly two decimals,
// e.g. 500000 -> "5000.00".
func (a Amount) Major() string {
	sign, whole, cents := a.split()
	return fmt.Sprintf("%s%d.%02d", sign, whole, cents)
}

// QueryValue renders the major amount without trailing zeros, e.g.
// 500000 -> "5000", 505050 -> "5050.5". Used in result page links.
func (a Amount) QueryValue() string {
	sign, whole, cents := a.split()
	switch {
	case cents == 0:
		return fmt.Sprintf("%s%d", sign, whole)
	case cents%10 == 0:
		return fmt.Sprintf("%s%d.%d", sign, whole, cents/10)
	default:
		return fmt.Sprintf("%s%d.%02d", sign, whole, cents)
	}
}

func (a Amount) String() string {
	return a.Major()
}

func (a Amount) split() (string, int64, int64) {
	v := int64(a)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign, v / minorPerMajor, v % minorPerMajor
}

// MarshalJSON writes the major amount as a JSON number with two decimals.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Major()), nil
}

// UnmarshalJSON accepts a major-unit JSON number or numeric string.
// null decodes to zero.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}
	s := string(data)
	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("%w: %s", errInvalidAmount, s)
		}
		s = unquoted
	}
	v, err := ParseMajor(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// ParseMajor parses a decimal major-unit string ("5000", "5000.5",
// "5000.00") into an Amount. Fraction digits beyond the second must be zero;
// exponent notation is rejected.
func ParseMajor(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", errInvalidAmount)
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	wholePart, fracPart, _ := strings.Cut(s, ".")
	if wholePart == "" && fracPart == "" {
		return 0, fmt.Errorf("%w: %q", errInvalidAmount, s)
	}
	if !allDigits(wholePart) || !allDigits(fracPart) {
		return 0, fmt.Errorf("%w: %q", errInvalidAmount, s)
	}
	if len(wholePart) > 15 {
		return 0, fmt.Errorf("%w: %q out of range", errInvalidAmount, s)
	}
	if len(fracPart) > 2 {
		if strings.Trim(fracPart[2:], "0") != "" {
			return 0, fmt.Errorf("%w: %q has more than two decimals", errInvalidAmount, s)
		}
		fracPart = fracPart[:2]
	}
	for len(fracPart) < 2 {
		fracPart += "0"
	}

	var whole int64
	if wholePart != "" {
		w, err := strconv.ParseInt(wholePart, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", errInvalidAmount, err)
		}
		whole = w
	}
	cents, _ := strconv.ParseInt(fracPart, 10, 64)

	minor := whole*minorPerMajor + cents
	if neg {
		minor = -minor
	}
	return Amount(minor), nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
