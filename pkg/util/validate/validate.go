// Package validate wraps a shared validator instance and maps its failures
// onto ValidationFailure domain errors.
package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/spec-kit/storefront/pkg/util/errorutil"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	// Report json names so details line up with request bodies.
	val.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return val
}

// Struct validates s against its `validate` tags.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errorutil.NewValidationError("invalid input", map[string]any{"reason": err.Error()})
	}
	fields := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return errorutil.NewValidationError("invalid input", map[string]any{"fields": fields})
}

// Var validates a single value against tag.
func Var(value any, tag string) bool {
	return v.Var(value, tag) == nil
}
