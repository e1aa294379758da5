package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

const (
	UserTokenTTL  = 7 * 24 * time.Hour
	AdminTokenTTL = 24 * time.Hour
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims represents the JWT claims. Subject carries the user or admin id.
type Claims struct {
	Role string `json:"role"`
	jwt.StandardClaims
}

// JWTManager signs and verifies session tokens with a shared HS256 secret.
type JWTManager struct {
	key []byte
	now func() time.Time
}

func NewJWTManager(secret string) *JWTManager {
	return &JWTManager{key: []byte(secret), now: time.Now}
}

// GenerateJWT generates a JWT token for the given subject and role
func (m *JWTManager) GenerateJWT(subject, role string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := &Claims{
		Role: role,
		StandardClaims: jwt.StandardClaims{
			Subject:   subject,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ParseJWT verifies signature and expiry and returns the claims.
func (m *JWTManager) ParseJWT(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.key, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
