package validator

import (
	"tunestudio/pkg/model"
	"tunestudio/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type CallbackValidator struct {
	validate *validator.Validate
}

func NewCallbackValidator() *CallbackValidator {
	return &CallbackValidator{
		validate: validation.New(),
	}
}

func (v *CallbackValidator) Validate(cb *model.CallbackRequest) error {
	return validation.Struct(v.validate, cb)
}

func (v *CallbackValidator) ValidateStatusUpdate(u *model.CallbackStatusUpdate) error {
	return validation.Struct(v.validate, u)
}

// transitions lists the statuses each status may move to. Closed is terminal.
var transitions = map[string][]string{
	model.CallbackStatusNew:       {model.CallbackStatusContacted, model.CallbackStatusClosed},
	model.CallbackStatusContacted: {model.CallbackStatusClosed},
}

func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func IsKnownStatus(status string) bool {
	switch status {
	case model.CallbackStatusNew, model.CallbackStatusContacted, model.CallbackStatusClosed:
		return true
	}
	return false
}
