package calculator

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Plain decimal notation is used for magnitudes in [plainMin, plainMax);
// anything outside switches to exponent notation.
const (
	plainMin = 1e-6
	plainMax = 1e21
)

// FormatNumber renders f as display text: the shortest decimal that parses
// back to exactly f, with no grouping separators and no fixed precision.
//
//	8          -> "8"
//	0.1 + 0.2  -> "0.30000000000000004"
//	1e21       -> "1e+21"
//	1.5e-7     -> "1.5e-7"
//	-0         -> "0"
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= plainMin && abs < plainMax {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + sign + digits
}

// ParseDisplay reads display text as a number. Text that is not a complete
// number is read up to its longest numeric prefix ("1.2.3" is 1.2, "42 apples"
// is 42). Text with no numeric prefix at all, such as "." or "", reads as 0.
func ParseDisplay(s string) float64 {
	s = strings.TrimSpace(s)

	v, err := strconv.ParseFloat(s, 64)
	if err == nil || errors.Is(err, strconv.ErrRange) {
		return v
	}

	prefix := numericPrefix(s)
	if prefix == "" {
		return 0
	}
	v, err = strconv.ParseFloat(prefix, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	return v
}

// numericPrefix returns the longest prefix of s of the form
// [sign] digits [. digits] [e [sign] digits] containing at least one mantissa digit.
func numericPrefix(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	mantissaDigits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		mantissaDigits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if mantissaDigits > 0 || frac > 0 {
			i = j
			mantissaDigits += frac
		}
	}
	if mantissaDigits == 0 {
		return ""
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}
	return s[:i]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
