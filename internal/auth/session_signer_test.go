package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"wohee/vodtracker/internal/access"
	"wohee/vodtracker/internal/common"
)

func TestSessionSigner_IssueVerify(t *testing.T) {
	signer := NewSessionSigner([]byte("test-secret"), 7*24*time.Hour, common.NewCacheService(time.Hour, time.Hour))
	user := access.User{ID: "123456789012345678", Username: "alice", Roles: []string{"r1", "r2"}}

	token, expiresAt, err := signer.Issue(user)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if d := time.Until(expiresAt); d < 6*24*time.Hour {
		t.Errorf("Expected a seven day expiry, got %v", d)
	}

	claims, err := signer.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if claims.UserID != user.ID || claims.Username != "alice" || len(claims.Roles) != 2 {
		t.Errorf("Unexpected claims %+v", claims)
	}
	if claims.User().Roles[1] != "r2" {
		t.Errorf("Expected roles to survive the round trip, got %v", claims.User().Roles)
	}
}

func TestSessionSigner_RejectsTamperedAndForeign(t *testing.T) {
	signer := NewSessionSigner([]byte("test-secret"), time.Hour, nil)
	other := NewSessionSigner([]byte("other-secret"), time.Hour, nil)

	token, _, _ := other.Issue(access.User{ID: "1", Username: "mallory"})
	if _, err := signer.Verify(context.Background(), token); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("Expected ErrInvalidSession for a foreign key, got %v", err)
	}
	if _, err := signer.Verify(context.Background(), "not-a-token"); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("Expected ErrInvalidSession for garbage, got %v", err)
	}
}

func TestSessionSigner_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	signer := NewSessionSigner([]byte("test-secret"), time.Hour, nil).WithClock(func() time.Time { return now })

	token, _, err := signer.Issue(access.User{ID: "1", Username: "bob"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	now = now.Add(59 * time.Minute)
	if _, err := signer.Verify(context.Background(), token); err != nil {
		t.Fatalf("Expected token to be valid before expiry, got %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := signer.Verify(context.Background(), token); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("Expected expired token to be rejected, got %v", err)
	}
}

func TestSessionSigner_Revoke(t *testing.T) {
	signer := NewSessionSigner([]byte("test-secret"), time.Hour, common.NewCacheService(time.Hour, time.Hour))
	ctx := context.Background()

	token, _, _ := signer.Issue(access.User{ID: "1", Username: "carol"})
	claims, err := signer.Verify(ctx, token)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := signer.Revoke(ctx, claims); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := signer.Verify(ctx, token); !errors.Is(err, ErrSessionRevoked) {
		t.Errorf("Expected ErrSessionRevoked, got %v", err)
	}

	fresh, _, _ := signer.Issue(access.User{ID: "1", Username: "carol"})
	if _, err := signer.Verify(ctx, fresh); err != nil {
		t.Errorf("Expected a new session to be unaffected, got %v", err)
	}
}

func TestRequestContext(t *testing.T) {
	ctx := context.Background()
	if GetSession(ctx) != nil || GetRequestID(ctx) != "" {
		t.Fatal("Expected empty context")
	}
	ctx = SetSession(SetRequestID(ctx, "req-1"), &SessionClaims{UserID: "1"})
	if GetSession(ctx).UserID != "1" || GetRequestID(ctx) != "req-1" {
		t.Error("Expected values to round trip through the context")
	}
}
