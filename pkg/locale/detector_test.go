package locale

import "testing"

func TestInferCountryFromPhone(t *testing.T) {
	tests := []struct {
		name     string
		phone    string
		wantCode string
		wantNil  bool
	}{
		{name: "russian mobile display form", phone: "+7 (929) 123-45-67", wantCode: "RU"},
		{name: "russian mobile with 8 prefix", phone: "89161234567", wantCode: "RU"},
		{name: "moscow landline ten digits", phone: "4951234567", wantCode: "RU"},
		{name: "kazakh mobile", phone: "+7 701 123 4567", wantCode: "KZ"},
		{name: "foreign number", phone: "+442071234567", wantNil: true},
		{name: "too short", phone: "12345", wantNil: true},
		{name: "empty phone", phone: "", wantNil: true},
		{name: "not a phone", phone: "not-a-phone", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferCountryFromPhone(tt.phone)
			if tt.wantNil {
				if got != nil {
					t.Errorf("InferCountryFromPhone(%q) = %v, want nil", tt.phone, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("InferCountryFromPhone(%q) = nil, want %q", tt.phone, tt.wantCode)
			}
			if got.Code != tt.wantCode {
				t.Errorf("InferCountryFromPhone(%q).Code = %q, want %q", tt.phone, got.Code, tt.wantCode)
			}
		})
	}
}

func TestInferTimezoneFromPhone(t *testing.T) {
	tests := []struct {
		phone string
		want  string
	}{
		{"+7 (929) 123-45-67", "Europe/Moscow"},
		{"+7 (701) 123-45-67", "Asia/Almaty"},
		{"+442071234567", DefaultTimezone},
		{"", DefaultTimezone},
	}

	for _, tt := range tests {
		if got := InferTimezoneFromPhone(tt.phone); got != tt.want {
			t.Errorf("InferTimezoneFromPhone(%q) = %q, want %q", tt.phone, got, tt.want)
		}
	}
}

func TestIsServedNumber(t *testing.T) {
	if !IsServedNumber("+7 (929) 123-45-67") {
		t.Error("expected russian mobile to be served")
	}
	if IsServedNumber("+1 212 555 1234") {
		t.Error("expected US number to be rejected")
	}
	if IsServedNumber("+7 (000) 000-00-00") {
		t.Error("expected unassigned range to be rejected")
	}
}

func TestDetectRegion(t *testing.T) {
	if got := DetectRegion("asia/almaty"); got != "KZ" {
		t.Errorf("DetectRegion(asia/almaty) = %q", got)
	}
	if got := DetectRegion("Europe/Samara"); got != "RU" {
		t.Errorf("DetectRegion(Europe/Samara) = %q", got)
	}
	if got := DetectRegion("America/New_York"); got != DefaultRegion {
		t.Errorf("DetectRegion fallback = %q", got)
	}
}
