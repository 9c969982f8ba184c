// Package utils holds request validation shared by commands and queries.
package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// messages renders a failed tag for a lowercased field name and the tag's param
var messages = map[string]func(field, param string) string{
	"required": func(f, _ string) string { return f + " is required" },
	"datetime": func(f, p string) string { return fmt.Sprintf("%s must match the format %s", f, p) },
	"min":      func(f, p string) string { return fmt.Sprintf("%s must be at least %s", f, p) },
	"max":      func(f, p string) string { return fmt.Sprintf("%s must be at most %s", f, p) },
}

// ValidateStruct checks s against its `validate` tags. Field failures are
// joined into one message, e.g. "bucket is required; score must be at most 100".
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := strings.ToLower(fe.Field())
		if render, ok := messages[fe.Tag()]; ok {
			parts = append(parts, render(field, fe.Param()))
			continue
		}
		parts = append(parts, field+" is invalid")
	}
	return errors.New(strings.Join(parts, "; "))
}
