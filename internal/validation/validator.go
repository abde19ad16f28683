// Package validation checks the shape of genre command inputs using validator/v10.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/listenupapp/genregraph/internal/domain"
	apperrors "github.com/listenupapp/genregraph/internal/errors"
)

// Validator wraps go-playground/validator with application error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the genretype tag registered: a known
// domain.GenreType, where empty passes (use required to forbid it).
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Use JSON tag names in error details.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("genretype", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || domain.GenreType(s).Valid()
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns an application validation error with
// one message per offending field.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = friendlyMessage(e)
	}
	return apperrors.ValidationWithDetails("validation failed", fieldErrors)
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "max":
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("must not have more than %s entries", e.Param())
		}
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "gt":
		return "must be greater than " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "genretype":
		return "must be one of: META MOVEMENT SCENE STYLE TREND"
	default:
		return "is invalid"
	}
}
