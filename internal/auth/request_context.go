package auth

import (
	"context"
)

type contextKey string

var (
	sessionKey   contextKey = "session_claims"
	requestIDKey contextKey = "request_id"
)

func SetSession(ctx context.Context, claims *SessionClaims) context.Context {
	return context.WithValue(ctx, sessionKey, claims)
}

// GetSession returns the verified session of the request, or nil.
func GetSession(ctx context.Context) *SessionClaims {
	claims, _ := ctx.Value(sessionKey).(*SessionClaims)
	return claims
}

func SetRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
