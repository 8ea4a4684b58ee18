package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "addressbook/pkg/domain-errors"
	s "addressbook/pkg/string"
)

var (
	// A single word of letters with at most one inner hyphen or apostrophe.
	namePattern        = regexp.MustCompile(`^[A-Za-z]+[-']?[A-Za-z]+$`)
	phonePattern       = regexp.MustCompile(`^[+][1-9]\d{0,2}-\d{3}-\d{3}-\d{3}$`)
	displayNamePattern = regexp.MustCompile(`^\w{3,16}$`)
)

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("contact_name", func(fl validator.FieldLevel) bool {
		return namePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("contact_phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("display_name", func(fl validator.FieldLevel) bool {
		return displayNamePattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate validates a struct using the default validator and returns a domain error
func Validate(req any) error {
	if err := defaultValidator.Struct(req); err != nil {
		return dErrors.New(dErrors.CodeValidation, ErrorMessage(err))
	}
	return nil
}

// Var validates a single value against a tag expression, naming it field in the
// returned message.
func Var(field string, value any, tag string) error {
	if err := defaultValidator.Var(value, tag); err != nil {
		msg := ErrorMessage(err)
		return dErrors.New(dErrors.CodeValidation, field+strings.TrimPrefix(msg, "value"))
	}
	return nil
}

// ErrorMessage converts a validator error into a human-readable message
func ErrorMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "invalid input"
	}

	fe := validationErrs[0]
	fieldName := fe.Field()
	if fieldName == "" {
		fieldName = fe.StructField()
	}
	field := s.ToSnakeCase(fieldName)
	if field == "" {
		field = "value"
	}

	switch fe.ActualTag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	case "contact_name":
		return fmt.Sprintf("%s must contain only letters and at most one ' or - character", field)
	case "contact_phone":
		return fmt.Sprintf("%s must match +###-###-###-###", field)
	case "display_name":
		return fmt.Sprintf("%s must be 3 to 16 letters, digits or underscores", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
