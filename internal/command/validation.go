package command

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/identity-platform/profile-saga/internal/domain/entity"
)

// NewValidate returns the validator shared by every command payload.
func NewValidate() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// checkStruct runs the struct tags of payload. Rule violations are returned as an invalid result.
func checkStruct(validate *validator.Validate, payload any) (entity.ValidationResult, error) {
	err := validate.Struct(payload)
	if err == nil {
		return entity.Valid(), nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return entity.ValidationResult{}, fmt.Errorf("failed to validate payload: %w", err)
	}

	ret := make([]entity.ValidationError, 0, len(fieldErrors))

	for _, fe := range fieldErrors {
		ret = append(ret, entity.ValidationError{
			Field:   fe.Field(),
			Message: describe(fe),
		})
	}

	return entity.Invalid(ret...), nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "uuid":
		return fe.Field() + " must be a uuid"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}
