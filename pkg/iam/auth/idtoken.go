package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Abraxas-365/nimbus/pkg/kernel"
)

// IDTokenClaims are the user pool claims login reads from an ID token.
type IDTokenClaims struct {
	Username string `json:"cognito:username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// UserID returns the pool username, falling back to the subject.
func (c *IDTokenClaims) UserID() kernel.UserID {
	if c.Username != "" {
		return kernel.NewUserID(c.Username)
	}
	return kernel.NewUserID(c.Subject)
}

// Expiry returns the token expiry, or the zero time when absent.
func (c *IDTokenClaims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// ParseIDToken decodes the claims of an ID token without verifying its
// signature. Only use it on tokens received directly from the user pool.
func ParseIDToken(token string) (*IDTokenClaims, error) {
	claims := &IDTokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("auth: parse id token: %w", err)
	}
	return claims, nil
}
