package sanitizer

import (
	"regexp"
	"strings"
	"unicode"

	"tunestudio/pkg/phone"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reVINSeparators = regexp.MustCompile(`[\s\-_.]+`)
	reComparable    = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	rePhoneQuery    = regexp.MustCompile(`^[0-9\s+()\-]+$`)
)

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeName trims and collapses internal whitespace.
func NormalizeName(s string) string {
	return collapseWhitespace(s)
}

// NormalizeNameForComparison folds case and drops everything except letters
// and digits, so "Ivan  Petrov" and "ivan-petrov" compare equal.
func NormalizeNameForComparison(s string) string {
	return Pipeline{
		strings.ToLower,
		func(s string) string { return reComparable.ReplaceAllString(s, "") },
	}.Apply(s)
}

func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func NormalizeVIN(s string) string {
	return Pipeline{
		strings.TrimSpace,
		strings.ToUpper,
		func(s string) string { return reVINSeparators.ReplaceAllString(s, "") },
	}.Apply(s)
}

// NormalizeText trims free-form text and strips control characters other
// than newlines and tabs.
func NormalizeText(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// NormalizePhone renders a phone in the stored display form. Anything the
// formatter cannot make sense of is returned trimmed but otherwise unchanged,
// leaving the rejection to validation.
func NormalizePhone(s string) string {
	return phone.Format(strings.TrimSpace(s))
}

// NormalizeSearchQuery turns a free-form query into something that can be
// matched against stored names and phones. Queries that look like a phone
// prefix are reduced to digits with the leading 8 treated as 7.
func NormalizeSearchQuery(q string) (text string, digits string) {
	q = collapseWhitespace(q)
	if q == "" {
		return "", ""
	}

	if d := phone.Digits(q); d != "" && rePhoneQuery.MatchString(q) {
		if d[0] == phone.NationalPrefix {
			d = string(phone.CountryCode) + d[1:]
		}
		return "", d
	}
	return q, ""
}
