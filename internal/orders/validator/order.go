package validator

import (
	"tunestudio/pkg/model"
	"tunestudio/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type OrderValidator struct {
	validate *validator.Validate
}

func NewOrderValidator() *OrderValidator {
	return &OrderValidator{
		validate: validation.New(),
	}
}

func (v *OrderValidator) Validate(o *model.Order) error {
	if err := validation.Struct(v.validate, o); err != nil {
		return err
	}

	if o.Total != o.CalculateTotal() {
		return validation.ValidationErrors{{
			Field:   "total",
			Message: "does not match the sum of item prices",
		}}
	}
	return nil
}

var transitions = map[string][]string{
	model.OrderStatusPending:    {model.OrderStatusInProgress, model.OrderStatusCancelled},
	model.OrderStatusInProgress: {model.OrderStatusDone, model.OrderStatusCancelled},
}

// CanTransition reports whether an order may move from one status to another.
// Done and cancelled are terminal.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func IsTerminal(status string) bool {
	return status == model.OrderStatusDone || status == model.OrderStatusCancelled
}

func IsKnownStatus(status string) bool {
	switch status {
	case model.OrderStatusPending, model.OrderStatusInProgress, model.OrderStatusDone, model.OrderStatusCancelled:
		return true
	}
	return false
}
