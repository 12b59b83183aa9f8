package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"wohee/vodtracker/internal/access"
	"wohee/vodtracker/internal/common"
	"wohee/vodtracker/internal/constants"
)

var (
	ErrInvalidSession = errors.New("invalid session")
	ErrSessionRevoked = errors.New("session revoked")
)

// SessionSigner issues and verifies HMAC signed session tokens. Logged out
// token ids are kept in revoked until the token would have expired anyway.
type SessionSigner struct {
	secretKey []byte
	ttl       time.Duration
	revoked   common.CacheInterface
	now       func() time.Time
}

func NewSessionSigner(secretKey []byte, ttl time.Duration, revoked common.CacheInterface) *SessionSigner {
	return &SessionSigner{
		secretKey: secretKey,
		ttl:       ttl,
		revoked:   revoked,
		now:       time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (s *SessionSigner) WithClock(now func() time.Time) *SessionSigner {
	s.now = now
	return s
}

func (s *SessionSigner) TTL() time.Duration {
	return s.ttl
}

// Issue signs a session for user.
func (s *SessionSigner) Issue(user access.User) (string, time.Time, error) {
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.ttl)

	claims := &SessionClaims{
		UserID:   user.ID,
		Username: user.Username,
		Roles:    user.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session: %w", err)
	}
	return tokenString, expiresAt, nil
}

// Verify checks signature, expiry and revocation.
func (s *SessionSigner) Verify(ctx context.Context, tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if !token.Valid || claims.UserID == "" || claims.ID == "" {
		return nil, ErrInvalidSession
	}

	if s.revoked != nil {
		_, found, err := s.revoked.Get(ctx, revokedKey(claims.ID))
		if err != nil {
			return nil, fmt.Errorf("failed to check session revocation: %w", err)
		}
		if found {
			return nil, ErrSessionRevoked
		}
	}
	return claims, nil
}

// Revoke blocks the session's token id for the rest of its lifetime.
func (s *SessionSigner) Revoke(ctx context.Context, claims *SessionClaims) error {
	if s.revoked == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	remaining := claims.ExpiresAt.Sub(s.now())
	if remaining <= 0 {
		return nil
	}
	if err := s.revoked.Set(ctx, revokedKey(claims.ID), "1", remaining); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func revokedKey(tokenID string) string {
	return string(constants.CachePrefixRevokedSession) + tokenID
}
