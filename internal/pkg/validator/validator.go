// Package validator wraps struct-tag validation into the field to
// failed-tag map the handlers attach to 400 responses.
package validator

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate returns nil when v satisfies its binding tags, otherwise a
// map of field name to the tag that failed.
func Validate(v any) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	failed := make(map[string]string)
	for _, fe := range err.(validator.ValidationErrors) {
		failed[fe.Field()] = fe.Tag()
	}
	return failed
}
