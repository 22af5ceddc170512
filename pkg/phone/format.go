package phone

import "strings"

// Format renders raw in the display form +7 (XXX) XXX-XX-XX.
//
// Long sequences that are not Russian numbers come back as "+" followed by the
// digits. Input without digits, or with too few of them, is returned unchanged
// so that free text is never destroyed. Format is idempotent.
func Format(raw string) string {
	if raw == "" {
		return ""
	}
	return render(raw, Normalize(raw))
}

// FormatDigits applies the Format rules to an already normalized sequence.
// No prefix substitution is performed.
func FormatDigits(digits string) string {
	if digits == "" {
		return ""
	}
	return render(digits, Digits(digits))
}

func render(original, digits string) string {
	switch {
	case len(digits) == 0:
		return original
	case IsCanonical(digits):
		return full(digits)
	case len(digits) > SubscriberLength:
		return "+" + digits
	default:
		return original
	}
}

func full(d string) string {
	var b strings.Builder
	b.Grow(len("+7 (XXX) XXX-XX-XX"))
	b.WriteByte('+')
	b.WriteByte(d[0])
	b.WriteString(" (")
	b.WriteString(d[1:4])
	b.WriteString(") ")
	b.WriteString(d[4:7])
	b.WriteByte('-')
	b.WriteString(d[7:9])
	b.WriteByte('-')
	b.WriteString(d[9:11])
	return b.String()
}

// FormatPartial renders a phone number that is still being typed. The output
// only grows at its right end as digits are appended, and matches Format once
// all 11 digits of a Russian number are present.
//
// A leading 8 is shown as 7 at any length. Past 11 digits the strict Format
// result for input is returned.
func FormatPartial(input string) string {
	if input == "" {
		return ""
	}

	d := Digits(input)
	if len(d) > 0 && d[0] == NationalPrefix {
		d = string(CountryCode) + d[1:]
	}

	n := len(d)
	if n > CanonicalLength {
		return Format(input)
	}

	var b strings.Builder
	b.Grow(len("+7 (XXX) XXX-XX-XX"))

	switch {
	case n == 0:
		return ""
	case n == 1:
		b.WriteByte('+')
		b.WriteString(d)
	case n <= 4:
		b.WriteByte('+')
		b.WriteByte(d[0])
		b.WriteString(" (")
		b.WriteString(d[1:])
	case n <= 7:
		b.WriteByte('+')
		b.WriteByte(d[0])
		b.WriteString(" (")
		b.WriteString(d[1:4])
		b.WriteString(") ")
		b.WriteString(d[4:])
	case n <= 9:
		b.WriteByte('+')
		b.WriteByte(d[0])
		b.WriteString(" (")
		b.WriteString(d[1:4])
		b.WriteString(") ")
		b.WriteString(d[4:7])
		b.WriteByte('-')
		b.WriteString(d[7:])
	default:
		b.WriteByte('+')
		b.WriteByte(d[0])
		b.WriteString(" (")
		b.WriteString(d[1:4])
		b.WriteString(") ")
		b.WriteString(d[4:7])
		b.WriteByte('-')
		b.WriteString(d[7:9])
		b.WriteByte('-')
		b.WriteString(d[9:])
	}

	return b.String()
}
