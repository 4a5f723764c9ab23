package validator

import (
	"fmt"

	validatorv10 "github.com/go-playground/validator/v10"
)

// ValidationError represents a single field-level validation failure.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// Validator wraps struct-tag validation and domain business rules.
type Validator struct {
	validate *validatorv10.Validate
	business *BusinessValidator
}

func New() *Validator {
	validate := validatorv10.New()
	return &Validator{
		validate: validate,
		business: NewBusinessValidator(validate),
	}
}

// Validate runs struct-tag validation and returns ValidationErrors or nil.
func (v *Validator) Validate(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var errors ValidationErrors
	for _, fieldErr := range err.(validatorv10.ValidationErrors) {
		errors = append(errors, ValidationError{
			Field:   fieldErr.Field(),
			Message: messageForTag(fieldErr),
			Value:   fieldErr.Value(),
			Rule:    fieldErr.Tag(),
		})
	}
	return errors
}

func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}

func messageForTag(err validatorv10.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())
	default:
		return fmt.Sprintf("failed %s validation", err.Tag())
	}
}
