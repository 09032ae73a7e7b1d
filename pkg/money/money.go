// Package money converts decimal major-unit amounts (e.g. 25.50) into integer
// minor units (pennies) for storage. Integer storage avoids floating-point
// rounding drift in sums and comparisons.
//
// Policy: digits beyond two decimal places are TRUNCATED, not rounded
// (25.555 → 2555). The conversion goes through the decimal string form, so it
// is exact for every two-decimal-place input — no binary float artifacts like
// 0.29*100 = 28.999...
package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidAmount is returned for inputs that are not a plain decimal number.
var ErrInvalidAmount = errors.New("invalid monetary amount")

// ParseMinorUnits converts a decimal string ("25.50", "-3", "0.1") to minor units.
// Truncates past the second decimal digit.
func ParseMinorUnits(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidAmount)
	}

	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
	}

	major, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	cents, err := fracToCents(fracPart)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	minor := major*100 + cents
	if negative {
		minor = -minor
	}
	return minor, nil
}

// FromFloat converts a float64 major-unit amount to minor units.
// Goes through strconv.FormatFloat with the shortest round-tripping
// representation, so a JSON payload of 25.5 yields exactly 2550 and
// 25.555 truncates to 2555.
func FromFloat(v float64) (int64, error) {
	return ParseMinorUnits(strconv.FormatFloat(v, 'f', -1, 64))
}

// FormatMajor renders minor units back to a two-decimal string ("2550" → "25.50").
func FormatMajor(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

// fracToCents interprets the fractional digit string as cents, truncating
// anything past the second digit.
func fracToCents(frac string) (int64, error) {
	if frac == "" {
		return 0, nil
	}
	for _, r := range frac {
		if r < '0' || r > '9' {
			return 0, ErrInvalidAmount
		}
	}
	if len(frac) > 2 {
		frac = frac[:2]
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, err
	}
	if len(frac) == 1 {
		cents *= 10
	}
	return cents, nil
}
