package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/twotimesgi/cardtrader-assignment/internal/transport"
)

var validate = validator.New()

// checkStruct runs validator tags over a request DTO and converts the
// outcome into the field-level error list the API reports.
func checkStruct(req any) *ValidationError {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return validationError(FieldError{Field: "body", Message: "invalid request"})
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Message: messageFor(fe)})
	}
	return &ValidationError{Fields: fields}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be %s or more characters long", fe.Param())
	case "uuid":
		return "must be a valid UUID"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return "is invalid"
	}
}

// checkAttributeNames rejects a submission where two attributes share a
// name within the category, before anything is written. Comparison is
// case-insensitive on the trimmed name.
func checkAttributeNames(attrs []transport.AttributeInput) *ValidationError {
	seen := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		name := strings.ToLower(strings.TrimSpace(a.Name))
		if name == "" {
			continue
		}
		if seen[name] {
			return validationError(FieldError{
				Field:   "attributes",
				Message: fmt.Sprintf("duplicate attribute name %q", a.Name),
			})
		}
		seen[name] = true
	}
	return nil
}
