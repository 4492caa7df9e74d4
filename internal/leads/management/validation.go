package management

import (
	"leadscope_backend/internal/leads/domain"
	"leadscope_backend/platform/validator"

	playground "github.com/go-playground/validator/v10"
)

// RegisterValidations adds the lead_platform rule to val.
func RegisterValidations(val *validator.Validator) error {
	return val.RegisterValidation("lead_platform", func(fl playground.FieldLevel) bool {
		_, ok := domain.ParsePlatform(fl.Field().String())
		return ok
	})
}
