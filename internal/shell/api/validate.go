package api

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/artpar/shipyard/internal/core/validation"
	"github.com/go-playground/validator/v10"
)

// newValidator builds a validator that reports fields by their JSON name and
// knows the "repository" rule.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("repository", func(fl validator.FieldLevel) bool {
		return validation.IsRepositoryURL(fl.Field().String())
	})

	return v
}

// formatValidationErrors maps each failing field to a message. ok is false
// when err is not a validation failure.
func formatValidationErrors(err error) (fields map[string]string, ok bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}

	fields = make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = validation.FieldMessage(fe.Field(), fe.Tag(), fe.Param())
	}
	return fields, true
}

// summarize joins field messages in field order.
func summarize(fields map[string]string) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	msgs := make([]string, 0, len(names))
	for _, name := range names {
		msgs = append(msgs, fields[name])
	}
	return strings.Join(msgs, "; ")
}
