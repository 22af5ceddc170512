package phone

import "strings"

const (
	CountryCode    = '7'
	NationalPrefix = '8'

	CanonicalLength  = 11
	SubscriberLength = 10
)

// Digits returns the ASCII decimal digits of s in order. Every other rune,
// including digits of non-latin scripts, is dropped.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Normalize extracts the digits of raw and canonicalizes the national prefix.
// Sequences that match neither rule are returned with their original length.
func Normalize(raw string) string {
	digits := Digits(raw)

	if len(digits) == CanonicalLength && digits[0] == NationalPrefix {
		digits = string(CountryCode) + digits[1:]
	}
	if len(digits) == SubscriberLength {
		digits = string(CountryCode) + digits
	}

	return digits
}

// IsCanonical reports whether digits is an 11-digit sequence starting with 7.
func IsCanonical(digits string) bool {
	return len(digits) == CanonicalLength && digits[0] == CountryCode && Digits(digits) == digits
}
