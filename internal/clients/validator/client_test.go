package validator

import (
	"errors"
	"testing"

	"tunestudio/pkg/model"
	"tunestudio/pkg/validation"
)

func TestValidate_BusinessRules(t *testing.T) {
	v := NewClientValidator()

	tests := []struct {
		name      string
		client    model.Client
		wantField string
	}{
		{
			name:   "russian number in RU",
			client: model.Client{Name: "Anna", Phone: "+7 (929) 123-45-67", Region: "RU"},
		},
		{
			name:   "kazakh number in KZ",
			client: model.Client{Name: "Anna", Phone: "+7 (701) 234-56-78", Region: "KZ"},
		},
		{
			name:      "kazakh number marked RU",
			client:    model.Client{Name: "Anna", Phone: "+7 (701) 234-56-78", Region: "RU"},
			wantField: "region",
		},
		{
			name: "repeated VIN",
			client: model.Client{
				Name:  "Anna",
				Phone: "+7 (929) 123-45-67",
				Cars: []model.Car{
					{Make: "BMW", Model: "X5", VIN: "WBAKV21000J123456"},
					{Make: "BMW", Model: "X6", VIN: "WBAKV21000J123456"},
				},
			},
			wantField: "cars",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.client)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verrs validation.ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if verrs[0].Field != tt.wantField {
				t.Errorf("field = %q, want %q", verrs[0].Field, tt.wantField)
			}
		})
	}
}
