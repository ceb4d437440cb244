package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the access token claims issued by the backend.
//
// They are decoded without verifying the signature: the client never holds
// the signing key and uses them for display only. The backend verifies every
// request.
type Claims struct {
	UserID int64  `json:"user_id"`
	Type   string `json:"type"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Expiry returns the expiry, or the zero time if the token has none.
func (c Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// ParseClaims decodes the claims of an access token.
func ParseClaims(token string) (Claims, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Claims{}, fmt.Errorf("session: parse claims: %w", err)
	}
	return claims, nil
}

// Claims decodes the current access token.
func (m *Manager) Claims() (Claims, error) {
	token, ok := m.AccessToken()
	if !ok {
		return Claims{}, ErrNotAuthenticated
	}
	return ParseClaims(token)
}

// Role returns the role carried by the access token, or "" when there is no
// token or it cannot be decoded.
func (m *Manager) Role() string {
	claims, err := m.Claims()
	if err != nil {
		return ""
	}
	return claims.Role
}
