package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dentalscribe/submission-api/internal/core/domain"
)

// requestValidator plugs go-playground/validator into echo. Field names in
// messages are the JSON names clients send.
type requestValidator struct {
	v *validator.Validate
}

// NewValidator returns a validator for echo.Echo.Validator.
func NewValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return &requestValidator{v: v}
}

// Validate returns a domain validation error listing every failed field.
func (rv *requestValidator) Validate(i any) error {
	err := rv.v.Struct(i)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return err
	}
	reasons := make([]string, len(fields))
	for i, fe := range fields {
		reasons[i] = describe(fe)
	}
	return domain.Validation("%s", strings.Join(reasons, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email"
	}
	return fe.Field() + " is invalid"
}
