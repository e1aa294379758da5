package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret")

	token, err := m.GenerateJWT("64b000000000000000000001", "user", UserTokenTTL)
	require.NoError(t, err)

	claims, err := m.ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "64b000000000000000000001", claims.Subject)
	assert.Equal(t, "user", claims.Role)
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("secret")

	expired := NewJWTManager("secret")
	expired.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	old, err := expired.GenerateJWT("id", "admin", AdminTokenTTL)
	require.NoError(t, err)

	other, err := NewJWTManager("other").GenerateJWT("id", "admin", AdminTokenTTL)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", old},
		{"wrong secret", other},
		{"garbage", "not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.ParseJWT(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
