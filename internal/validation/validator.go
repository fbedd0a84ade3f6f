// Package validation checks request bodies before they are sent upstream.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	apperrors "holidaze/internal/errors"

	"github.com/go-playground/validator/v10"
)

// StudentEmailDomain is the only domain the API accepts for registration
const StudentEmailDomain = "@stud.noroff.no"

// Validator wraps go-playground/validator and returns *errors.ValidationError
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New()

	// json names in field errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("studemail", func(fl validator.FieldLevel) bool {
		return strings.HasSuffix(strings.ToLower(fl.Field().String()), StudentEmailDomain)
	})

	return &Validator{v: v}
}

// Validate reports the first failing field, in struct order
func (v *Validator) Validate(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return err
	}

	e := validationErrs[0]
	return apperrors.Validation(fieldPath(e), message(e))
}

// fieldPath drops the struct name prefix: "VenueRequest.media[0].url" -> "media[0].url"
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return e.Field()
}

func message(e validator.FieldError) string {
	label := label(e.Field())

	switch e.Tag() {
	case "required":
		if e.Kind() == reflect.Bool || e.Type() == reflect.TypeOf((*bool)(nil)) {
			return fmt.Sprintf("Select %s.", label)
		}
		return fmt.Sprintf("%s is required.", label)
	case "email":
		return "Enter a valid email address."
	case "studemail":
		return fmt.Sprintf("Email must end with '%s'.", StudentEmailDomain)
	case "url":
		return fmt.Sprintf("%s must be a valid URL.", label)
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters.", label, e.Param())
		}
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("%s needs at least %s items.", label, e.Param())
		}
		return fmt.Sprintf("%s must be at least %s.", label, e.Param())
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must not exceed %s characters.", label, e.Param())
		}
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("%s allows at most %s items.", label, e.Param())
		}
		return fmt.Sprintf("%s must be at most %s.", label, e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s.", label, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s.", label, e.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s.", label, e.Param())
	default:
		return fmt.Sprintf("%s is invalid.", label)
	}
}

var labels = map[string]string{
	"maxGuests":    "Max guests",
	"venueManager": "whether you are going to rent out venues",
	"url":          "Image URL",
	"alt":          "Image description",
}

func label(field string) string {
	if l, ok := labels[field]; ok {
		return l
	}
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + field[1:]
}
