package validation

import (
	"errors"
	"testing"
	"time"

	"tunestudio/pkg/model"
)

func validClient() *model.Client {
	return &model.Client{
		Name:     "Ivan Petrov",
		Phone:    "+7 (929) 123-45-67",
		Email:    "ivan@example.ru",
		Cars:     []model.Car{{Make: "BMW", Model: "X5", Year: 2019, VIN: "WBAKV21000J123456"}},
		Region:   "RU",
		TimeZone: "Europe/Moscow",
	}
}

func TestStruct_Client(t *testing.T) {
	v := New()

	tests := []struct {
		name      string
		mutate    func(c *model.Client)
		wantField string
	}{
		{name: "valid", mutate: func(c *model.Client) {}},
		{name: "missing name", mutate: func(c *model.Client) { c.Name = "" }, wantField: "name"},
		{name: "raw digits phone", mutate: func(c *model.Client) { c.Phone = "89291234567" }, wantField: "phone"},
		{name: "foreign phone", mutate: func(c *model.Client) { c.Phone = "+442071234567" }, wantField: "phone"},
		{name: "bad email", mutate: func(c *model.Client) { c.Email = "nope" }, wantField: "email"},
		{name: "vin with letter O", mutate: func(c *model.Client) { c.Cars[0].VIN = "WBAKV21000O123456" }, wantField: "cars[0].vin"},
		{name: "year too old", mutate: func(c *model.Client) { c.Cars[0].Year = 1900 }, wantField: "cars[0].year"},
		{name: "bad timezone", mutate: func(c *model.Client) { c.TimeZone = "Mars/Olympus" }, wantField: "time_zone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validClient()
			tt.mutate(c)

			err := Struct(v, c)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			found := false
			for _, e := range verrs {
				if e.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %q, got %v", tt.wantField, verrs)
			}
		})
	}
}

func TestStruct_OrderAndCallbackStatus(t *testing.T) {
	v := New()

	order := &model.Order{
		Number:    "ORD-1A2B3C4D",
		ClientID:  "65a1f0c2e4b0a1b2c3d4e5f6",
		Items:     []model.OrderItem{{Service: "Stage 1", Price: 25000}},
		Total:     25000,
		Currency:  "RUB",
		Status:    "shipped",
		CreatedAt: time.Now(),
	}
	if err := Struct(v, order); err == nil {
		t.Error("expected unknown order status to fail")
	}
	order.Status = model.OrderStatusPending
	if err := Struct(v, order); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	update := &model.CallbackStatusUpdate{Status: "done"}
	if err := Struct(v, update); err == nil {
		t.Error("expected unknown callback status to fail")
	}
}

func TestValidationErrors_Details(t *testing.T) {
	errs := ValidationErrors{{Field: "phone", Message: "is required"}}
	details := errs.Details()
	fields, ok := details["fields"].(map[string]any)
	if !ok || fields["phone"] != "is required" {
		t.Errorf("unexpected details: %v", details)
	}
	if errs.Error() != "validation failed: phone: is required" {
		t.Errorf("Error() = %q", errs.Error())
	}
}
