package handler

import (
	"github.com/go-playground/validator/v10"

	"github.com/dunelark/storefront/internal/domain"
)

// RequestValidator adapts go-playground/validator to echo's Validator
// interface. Validation failures come back as domain EINVALID errors so they
// flow through the same error envelope as service errors.
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator creates a request validator.
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

// Validate implements echo.Validator.
func (v *RequestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			first := errs[0]
			return domain.Errorf(domain.EINVALID, "request.validate",
				"field %s failed validation on %s", first.Field(), first.Tag())
		}
		return domain.Invalid("request.validate", "invalid request body")
	}
	return nil
}
