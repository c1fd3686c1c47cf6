// Package validate wraps go-playground/validator with field names taken from
// json tags and turns its errors into *errors.ValidationError.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "fitspace-backend/pkg/errors"
)

// Messages maps a json field name to the message reported when any rule on
// that field fails. Fields without an entry get a generic message.
type Messages map[string]string

// Validator validates request structs.
type Validator struct {
	v        *validator.Validate
	messages Messages
}

// New creates a Validator using messages for field-specific errors.
func New(messages Messages) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v, messages: messages}
}

// Struct validates s. It returns nil or a *errors.ValidationError naming the
// first failing field.
func (val *Validator) Struct(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.NewValidationError("", err.Error())
	}

	seen := make(map[string]bool, len(fieldErrs))
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if seen[fe.Field()] {
			continue
		}
		seen[fe.Field()] = true
		messages = append(messages, val.message(fe))
	}

	return apperrors.NewValidationError(fieldErrs[0].Field(), strings.Join(messages, "; "))
}

func (val *Validator) message(fe validator.FieldError) string {
	if fe.Tag() == "required" {
		return fmt.Sprintf("%s is required", fe.Field())
	}
	if msg, ok := val.messages[fe.Field()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "min", "gte", "gt":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte", "lt":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// Trimmed returns nil for nil or blank strings and a trimmed copy otherwise.
func Trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
