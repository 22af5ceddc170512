package model

import "time"

type Car struct {
	Make  string `json:"make" bson:"make" validate:"required,min=1,max=50"`
	Model string `json:"model" bson:"model" validate:"required,min=1,max=50"`
	Year  int    `json:"year,omitempty" bson:"year,omitempty" validate:"omitempty,min=1950,max=2100"`
	VIN   string `json:"vin,omitempty" bson:"vin,omitempty" validate:"omitempty,vin"`
}

type Client struct {
	ID    string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name  string `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Phone string `json:"phone" bson:"phone" validate:"required,ru_phone"`

	// PhoneDigits is the canonical digit form of Phone, kept for prefix search.
	PhoneDigits string `json:"-" bson:"phone_digits"`

	Email     string    `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email,max=254"`
	Cars      []Car     `json:"cars,omitempty" bson:"cars,omitempty" validate:"omitempty,max=10,dive"`
	Notes     string    `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=1000"`
	Region    string    `json:"region,omitempty" bson:"region,omitempty" validate:"omitempty,len=2"`
	TimeZone  string    `json:"time_zone,omitempty" bson:"time_zone,omitempty" validate:"omitempty,timezone"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

type ClientUpdate struct {
	Name  string  `json:"name,omitempty"`
	Phone string  `json:"phone,omitempty"`
	Email *string `json:"email,omitempty"`
	Cars  *[]Car  `json:"cars,omitempty"`
	Notes *string `json:"notes,omitempty"`
}
