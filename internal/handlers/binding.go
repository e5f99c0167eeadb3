package handlers

import (
	"codequest/internal/common"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// bindingError turns a ShouldBindJSON failure into a field-level validation
// error naming the first offending JSON field.
func bindingError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return common.NewValidationError("", "Invalid request body")
	}

	fe := validationErrs[0]
	field := jsonFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return common.NewValidationError(field, fmt.Sprintf("%s is required", field))
	case "max":
		return common.NewValidationError(field, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
	default:
		return common.NewValidationError(field, fmt.Sprintf("%s is invalid", field))
	}
}

func jsonFieldName(structField string) string {
	if structField == "" {
		return ""
	}
	return strings.ToLower(structField[:1]) + structField[1:]
}
