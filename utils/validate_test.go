package utils

import (
	"testing"

	"forever-ecommerce/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email    string         `json:"email" validate:"required,email"`
	Password string         `json:"password" validate:"required,min=8"`
	Phone    string         `json:"phone" validate:"required,phone"`
	Address  models.Address `json:"address"`
}

func TestValidator_Struct(t *testing.T) {
	v := NewValidator()
	valid := signup{
		Email:    "a@x.com",
		Password: "password1",
		Phone:    "+919876543210",
		Address:  models.Address{Street: "s", City: "c", State: "st", Zip: "1", Country: "in"},
	}
	require.NoError(t, v.Struct(valid))

	bad := valid
	bad.Email = "nope"
	bad.Password = "short"
	bad.Phone = "12ab"
	bad.Address.City = ""

	err := v.Struct(bad)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 400, apiErr.Status)
	assert.Equal(t, "Invalid email format", apiErr.Errors["email"])
	assert.Equal(t, "password must be at least 8 characters", apiErr.Errors["password"])
	assert.Equal(t, "Invalid phone number", apiErr.Errors["phone"])
	assert.Equal(t, "city is required", apiErr.Errors["address.city"])
}

func TestValidator_SettingsRules(t *testing.T) {
	v := NewValidator()
	s := models.DefaultSettings()
	require.NoError(t, v.Struct(s))

	s.General.DateFormat = "YY"
	s.Security.FailedAttempts = 11
	err := v.Struct(s)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Contains(t, apiErr.Errors, "general.dateFormat")
	assert.Contains(t, apiErr.Errors, "security.failedAttempts")
}
