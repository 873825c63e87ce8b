package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type AdminClaims struct {
	Subject string `json:"sub_name,omitempty"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateAdminToken issues a short-lived admin bearer token. Used by the
// pipeline CLI when calling the admin endpoints of a running server.
func GenerateAdminToken(subject, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AdminClaims{
		Subject: subject,
		Role:    "ADMIN",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseAdminToken validates signature and expiry and returns the claims.
func ParseAdminToken(tokenString, secret string) (*AdminClaims, error) {
	claims := &AdminClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
