package model

import "time"

const (
	OrderStatusPending    = "pending"
	OrderStatusInProgress = "in_progress"
	OrderStatusDone       = "done"
	OrderStatusCancelled  = "cancelled"
)

type OrderItem struct {
	Service string `json:"service" bson:"service" validate:"required,min=2,max=100"`
	Price   int64  `json:"price" bson:"price" validate:"min=0"`
}

type Order struct {
	ID          string      `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Number      string      `json:"number" bson:"number" validate:"required"`
	ClientID    string      `json:"client_id" bson:"client_id" validate:"required,mongodb"`
	ClientPhone string      `json:"client_phone,omitempty" bson:"client_phone" validate:"omitempty,ru_phone"`
	Car         *Car        `json:"car,omitempty" bson:"car,omitempty" validate:"omitempty"`
	Items       []OrderItem `json:"items" bson:"items" validate:"required,min=1,max=50,dive"`
	Total       int64       `json:"total" bson:"total" validate:"min=0"`
	Currency    string      `json:"currency" bson:"currency" validate:"required,iso4217"`
	Status      string      `json:"status" bson:"status" validate:"required,order_status"`
	Comment     string      `json:"comment,omitempty" bson:"comment,omitempty" validate:"omitempty,max=1000"`
	CreatedAt   time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" bson:"updated_at"`
}

type OrderUpdate struct {
	Status  string       `json:"status,omitempty"`
	Items   *[]OrderItem `json:"items,omitempty"`
	Car     *Car         `json:"car,omitempty"`
	Comment *string      `json:"comment,omitempty"`
}

// CalculateTotal sums item prices.
func (o *Order) CalculateTotal() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.Price
	}
	return total
}
