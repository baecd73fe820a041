package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/coaching-portal/pkg/errors"
)

const phoneRuleMessage = "Phone number must be 10 digits (India) or E.164 format (e.g. +1234567890)"

// NewValidator returns a validator that knows the `phone` tag and reports
// fields by their json name.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			name = strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		}
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		_, ok := NormalizePhone(fl.Field().String())
		return ok
	})
	return v
}

// NormalizePhone strips spaces and dashes and accepts either a 10 digit local
// number or an international number. Bare digit strings longer than 10 are
// treated as international and gain a leading plus.
func NormalizePhone(raw string) (string, bool) {
	phone := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(raw))
	if phone == "" {
		return "", false
	}

	if strings.HasPrefix(phone, "+") {
		if len(phone) > 10 && isDigits(phone[1:]) {
			return phone, true
		}
		return "", false
	}

	if !isDigits(phone) {
		return "", false
	}
	switch {
	case len(phone) == 10:
		return phone, true
	case len(phone) > 10:
		return "+" + phone, true
	default:
		return "", false
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// validationError converts validator output into a VALIDATION_ERROR whose
// message names the first offending field.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	fe := fieldErrs[0]
	var message string
	switch fe.Tag() {
	case "required", "required_without":
		message = fmt.Sprintf("%s is required", fe.Field())
	case "email":
		message = "Please enter a valid email address"
	case "phone":
		message = phoneRuleMessage
	case "oneof":
		message = fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "min":
		message = fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		message = fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "url":
		message = fmt.Sprintf("%s must be a valid URL", fe.Field())
	default:
		message = fmt.Sprintf("%s is invalid", fe.Field())
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
