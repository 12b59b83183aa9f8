package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"wohee/vodtracker/internal/access"
)

// SessionClaims is the payload of the session cookie.
type SessionClaims struct {
	UserID   string   `json:"userId"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// User returns the identity the permission model works on.
func (c *SessionClaims) User() *access.User {
	if c == nil {
		return nil
	}
	return &access.User{ID: c.UserID, Username: c.Username, Roles: c.Roles}
}
