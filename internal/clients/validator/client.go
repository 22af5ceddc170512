package validator

import (
	"tunestudio/pkg/locale"
	"tunestudio/pkg/model"
	"tunestudio/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type ClientValidator struct {
	validate *validator.Validate
}

func NewClientValidator() *ClientValidator {
	return &ClientValidator{
		validate: validation.New(),
	}
}

func (v *ClientValidator) Validate(c *model.Client) error {
	if err := validation.Struct(v.validate, c); err != nil {
		return err
	}

	return v.validateBusinessRules(c)
}

// validateBusinessRules checks what struct tags cannot express: a client's
// region must agree with the country the phone belongs to, and VINs must not
// repeat across the client's cars.
func (v *ClientValidator) validateBusinessRules(c *model.Client) error {
	var errs validation.ValidationErrors

	if c.Region != "" {
		if country := locale.InferCountryFromPhone(c.Phone); country != nil && country.Code != c.Region {
			errs = append(errs, validation.ValidationError{
				Field:   "region",
				Message: "does not match the phone number's country " + country.Code,
			})
		}
	}

	seen := make(map[string]bool, len(c.Cars))
	for _, car := range c.Cars {
		if car.VIN == "" {
			continue
		}
		if seen[car.VIN] {
			errs = append(errs, validation.ValidationError{
				Field:   "cars",
				Message: "duplicate VIN " + car.VIN,
			})
			continue
		}
		seen[car.VIN] = true
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
