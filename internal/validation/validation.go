// Package validation exposes struct validation backed by
// go-playground/validator, mapping failures onto the application error
// taxonomy.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/skillsenselab/whisperd/internal/apperr"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct checks the struct's validate tags and returns an
// INVALID_INPUT error listing every failed field.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.InvalidInput(err.Error())
	}

	fields := make([]map[string]string, 0, len(verrs))
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("failed %q validation", fe.Tag())
		fields = append(fields, map[string]string{
			"field":   fe.Field(),
			"message": msg,
		})
		messages = append(messages, fmt.Sprintf("%s: %s", fe.Field(), msg))
	}

	return apperr.InvalidInput(strings.Join(messages, "; ")).
		WithDetail("fields", fields)
}
