package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/coaching-portal/internal/models"
	appErrors "github.com/noah-isme/coaching-portal/pkg/errors"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"98765 43210", "9876543210", true},
		{"987-654-3210", "9876543210", true},
		{"+1 234 567 8901", "+12345678901", true},
		{"919876543210", "+919876543210", true},
		{"12345", "", false},
		{"+12345", "", false},
		{"98765abc10", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := NormalizePhone(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestValidatorReportsFieldByJSONName(t *testing.T) {
	v := NewValidator()

	err := v.Struct(models.CreateLeadRequest{Name: "Amy", Email: "amy@example.com", Phone: "123", City: "Pune"})
	appErr := appErrors.FromError(validationError(err))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, phoneRuleMessage, appErr.Message)

	err = v.Struct(models.CreateLeadRequest{Email: "amy@example.com", Phone: "9876543210", City: "Pune"})
	assert.Equal(t, "name is required", appErrors.FromError(validationError(err)).Message)

	err = v.Struct(models.CreateLeadRequest{Name: "Amy", Email: "amy@example.com", Phone: "9876543210", City: "Pune", Role: "teacher"})
	assert.Equal(t, "role must be one of: student parent", appErrors.FromError(validationError(err)).Message)
}
