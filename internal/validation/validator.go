// Package validation wraps go-playground/validator with the tags and messages
// used by request payloads. Failures are returned as field-level apperr errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/models"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
)

// FieldErrors is returned when one or more fields fail validation.
type FieldErrors struct {
	Fields map[string][]string
}

func (e *FieldErrors) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msgs := range e.Fields {
		parts = append(parts, field+": "+strings.Join(msgs, ", "))
	}
	return strings.Join(parts, "; ")
}

// Get returns the shared validator with the custom tags registered.
func Get() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report JSON names instead of Go field names.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		_ = validate.RegisterValidation("hexcolor_short", func(fl validator.FieldLevel) bool {
			return models.ValidTagColor(fl.Field().String())
		})
		_ = validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return models.ValidSlug(fl.Field().String())
		})
		_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// Struct validates s and converts failures into an apperr validation error.
// The returned error's Err field holds a *FieldErrors with every failing field.
func Struct(s interface{}) error {
	err := Get().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Internal(err)
	}

	fe := &FieldErrors{Fields: map[string][]string{}}
	for _, v := range verrs {
		field := fieldPath(v)
		fe.Fields[field] = append(fe.Fields[field], message(v))
	}

	first := verrs[0]
	return &apperr.Error{
		Kind:    apperr.KindValidation,
		Code:    apperr.CodeInvalidInput,
		Field:   fieldPath(first),
		Message: message(first),
		Err:     fe,
	}
}

// fieldPath strips the root struct name from the namespace, so
// "recipeRequest.ingredients[0].amount" becomes "ingredients[0].amount".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i != -1 {
		return ns[i+1:]
	}
	return fe.Field()
}

var messages = map[string]string{
	"required":       "this field is required",
	"email":          "enter a valid email address",
	"hexcolor_short": "enter a valid hex color",
	"slug":           "only letters, digits, hyphens and underscores are allowed",
	"username":       "only letters, digits and @/./+/-/_ are allowed",
	"dive":           "invalid item",
}

var paramMessages = map[string]string{
	"min": "must be at least %s",
	"max": "must be at most %s",
	"gte": "must be greater than or equal to %s",
	"lte": "must be less than or equal to %s",
}

func message(fe validator.FieldError) string {
	if m, ok := messages[fe.Tag()]; ok {
		return m
	}
	if tmpl, ok := paramMessages[fe.Tag()]; ok {
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("length "+tmpl, fe.Param())
		}
		return fmt.Sprintf(tmpl, fe.Param())
	}
	return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
}
