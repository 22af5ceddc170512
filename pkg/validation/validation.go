// Package validation holds the studio's validator instance and the custom
// tags shared by every domain.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"tunestudio/pkg/locale"
	"tunestudio/pkg/model"

	"github.com/go-playground/validator/v10"
)

var reVIN = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}

// Details renders the errors for an API response.
func (v ValidationErrors) Details() map[string]any {
	fields := make(map[string]any, len(v))
	for _, e := range v {
		fields[e.Field] = e.Message
	}
	return map[string]any{"fields": fields}
}

// New returns a validator that reports JSON field names and knows the
// studio tags: ru_phone, vin, callback_status and order_status.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "ru_phone", validateServedPhone)
	mustRegister(v, "vin", validateVIN)
	mustRegister(v, "callback_status", validateCallbackStatus)
	mustRegister(v, "order_status", validateOrderStatus)

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// validateServedPhone accepts only numbers already in display form that
// belong to a served +7 region.
func validateServedPhone(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return strings.HasPrefix(value, "+7 (") && locale.IsServedNumber(value)
}

func validateVIN(fl validator.FieldLevel) bool {
	return reVIN.MatchString(fl.Field().String())
}

func validateCallbackStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case model.CallbackStatusNew, model.CallbackStatusContacted, model.CallbackStatusClosed:
		return true
	}
	return false
}

func validateOrderStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case model.OrderStatusPending, model.OrderStatusInProgress, model.OrderStatusDone, model.OrderStatusCancelled:
		return true
	}
	return false
}

// Struct validates s and translates validator errors into ValidationErrors.
func Struct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return Translate(validationErrs)
	}
	return err
}

func Translate(errs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, 0, len(errs))
	for _, err := range errs {
		out = append(out, ValidationError{
			Field:   fieldPath(err.Namespace()),
			Message: message(err),
		})
	}
	return out
}

// fieldPath drops the struct name from a namespace like "Client.cars[0].vin".
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func message(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		if err.Kind() == reflect.String || err.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s) or character(s)", err.Param())
		}
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		if err.Kind() == reflect.String || err.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at most %s item(s) or character(s)", err.Param())
		}
		return fmt.Sprintf("must be at most %s", err.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", err.Param())
	case "email":
		return "must be a valid email address"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())
	case "mongodb":
		return "must be a valid identifier"
	case "timezone":
		return "must be a valid IANA time zone"
	case "iso4217":
		return "must be an ISO 4217 currency code"
	case "ru_phone":
		return "must be a valid Russian or Kazakh phone number"
	case "vin":
		return "must be a 17 character VIN"
	case "callback_status":
		return "must be one of: new, contacted, closed"
	case "order_status":
		return "must be one of: pending, in_progress, done, cancelled"
	default:
		return fmt.Sprintf("failed %s validation", err.Tag())
	}
}
