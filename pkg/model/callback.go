package model

import "time"

const (
	CallbackSourceSite    = "site"
	CallbackSourceAdmin   = "admin"
	CallbackSourceDesktop = "desktop"

	CallbackStatusNew       = "new"
	CallbackStatusContacted = "contacted"
	CallbackStatusClosed    = "closed"
)

type CallbackRequest struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Phone     string    `json:"phone" bson:"phone" validate:"required,ru_phone"`
	Message   string    `json:"message,omitempty" bson:"message,omitempty" validate:"omitempty,max=2000"`
	Source    string    `json:"source" bson:"source" validate:"required,oneof=site admin desktop"`
	Status    string    `json:"status" bson:"status" validate:"required,callback_status"`
	ClientID  string    `json:"client_id,omitempty" bson:"client_id,omitempty" validate:"omitempty,mongodb"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

type CallbackStatusUpdate struct {
	Status string `json:"status" validate:"required,callback_status"`
}
