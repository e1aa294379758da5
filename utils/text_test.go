package utils

import (
	"testing"

	"forever-ecommerce/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  john   DOE ", "john DOE"},
		{"McDonald", "McDonald"},
		{"cafe\u0301", "caf\u00e9"},
		{"   ", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}

func TestNormalizeAddress(t *testing.T) {
	got := NormalizeAddress(models.Address{Street: " 12 park   lane", City: "mumbai", State: "MAHARASHTRA", Zip: " 400001 ", Country: "india"})
	assert.Equal(t, models.Address{Street: "12 park lane", City: "mumbai", State: "MAHARASHTRA", Zip: "400001", Country: "india"}, got)
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.com "))
}

func TestNormalizeAddress_KeepsCase(t *testing.T) {
	in := models.Address{FirstName: "Ronald", LastName: "McDonald", Street: "350 5th Ave", City: "New York", State: "NY", Zip: "10118", Country: "USA"}
	assert.Equal(t, in, NormalizeAddress(in))
}

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 20; i++ {
		otp, err := GenerateOTP()
		require.NoError(t, err)
		assert.Regexp(t, `^[0-9]{6}$`, otp)
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("password1", 4)
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "password1"))
	assert.False(t, CheckPassword(hash, "password2"))
}
