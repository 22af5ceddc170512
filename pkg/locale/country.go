package locale

import "strings"

const (
	DefaultRegion   = "RU"
	DefaultTimezone = "Europe/Moscow"
)

type Country struct {
	Code            string // ISO 3166-1 alpha-2
	Name            string
	DefaultTimezone string // IANA
}

var (
	// Countries lists the regions sharing the +7 calling code that the studio
	// serves.
	Countries = map[string]Country{
		"RU": {
			Code:            "RU",
			Name:            "Russia",
			DefaultTimezone: "Europe/Moscow",
		},
		"KZ": {
			Code:            "KZ",
			Name:            "Kazakhstan",
			DefaultTimezone: "Asia/Almaty",
		},
	}

	TimeZoneTags = map[string][]string{
		"RU": {"Europe/Moscow", "Europe/Samara", "Asia/Yekaterinburg", "Asia/Novosibirsk", "Asia/Vladivostok", "W-SU"},
		"KZ": {"Asia/Almaty", "Asia/Qostanay", "Asia/Aqtobe", "Asia/Aqtau", "Asia/Oral"},
	}
)

// DetectRegion maps an IANA zone back to a served region, falling back to
// DefaultRegion.
func DetectRegion(tz string) string {
	for region, zones := range TimeZoneTags {
		for _, z := range zones {
			if strings.EqualFold(tz, z) {
				return region
			}
		}
	}
	return DefaultRegion
}
