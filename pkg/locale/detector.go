package locale

import (
	"tunestudio/pkg/phone"

	"github.com/nyaruka/phonenumbers"
)

// parse reads any phone spelling the formatter understands.
func parse(raw string) (*phonenumbers.PhoneNumber, bool) {
	digits := phone.Normalize(raw)
	if digits == "" {
		return nil, false
	}
	num, err := phonenumbers.Parse("+"+digits, DefaultRegion)
	if err != nil {
		return nil, false
	}
	return num, true
}

// InferCountryFromPhone returns the served country a valid number belongs to,
// or nil.
func InferCountryFromPhone(raw string) *Country {
	num, ok := parse(raw)
	if !ok || !phonenumbers.IsValidNumber(num) {
		return nil
	}

	country, ok := Countries[phonenumbers.GetRegionCodeForNumber(num)]
	if !ok {
		return nil
	}
	return &country
}

func InferTimezoneFromPhone(raw string) string {
	if country := InferCountryFromPhone(raw); country != nil {
		return country.DefaultTimezone
	}
	return DefaultTimezone
}

// IsServedNumber reports whether raw is a valid +7 number of a served region.
func IsServedNumber(raw string) bool {
	return phone.IsCanonical(phone.Normalize(raw)) && InferCountryFromPhone(raw) != nil
}
