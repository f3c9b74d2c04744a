package utils

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// old format is nine digits and a V or X, new format is twelve digits
var nicPattern = regexp.MustCompile(`^([0-9]{9}[VvXx]|[0-9]{12})$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("nic", func(fl validator.FieldLevel) bool {
		return nicPattern.MatchString(fl.Field().String())
	})
	return v
}

// ValidateStruct returns field name -> message, or nil when data is valid.
func ValidateStruct(data interface{}) map[string]string {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldErr := range validationErrors {
			errors[fieldErr.Field()] = fieldMessage(fieldErr)
		}
	}

	return errors
}

func fieldMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "nic":
		return "Must be a valid NIC (9 digits with V or X, or 12 digits)"
	case "min":
		return fmt.Sprintf("Minimum length is %s", err.Param())
	case "max":
		return fmt.Sprintf("Maximum length is %s", err.Param())
	case "gt":
		return fmt.Sprintf("Must be greater than %s", err.Param())
	case "gte":
		return fmt.Sprintf("Must be at least %s", err.Param())
	case "lte":
		return fmt.Sprintf("Must be at most %s", err.Param())
	case "latitude":
		return "Must be a valid latitude"
	case "longitude":
		return "Must be a valid longitude"
	case "numeric":
		return "Must contain digits only"
	default:
		return fmt.Sprintf("Invalid %s field", err.Field())
	}
}

// FieldMessages flattens a ValidateStruct result into "field: message" lines ordered by field.
func FieldMessages(errors map[string]string) []string {
	fields := make([]string, 0, len(errors))
	for field := range errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, field := range fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, errors[field]))
	}
	return msgs
}

// FormatValidationErrors joins FieldMessages into one line.
func FormatValidationErrors(errors map[string]string) string {
	return strings.Join(FieldMessages(errors), "; ")
}
