package common

import (
	"context"
	"testing"
	"time"
)

func TestCacheService_SetGetDelete(t *testing.T) {
	cs := NewCacheService(time.Minute, time.Minute)
	ctx := context.Background()

	if _, found, _ := cs.Get(ctx, "missing"); found {
		t.Fatal("Expected missing key not to be found")
	}

	if err := cs.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	val, found, err := cs.Get(ctx, "k")
	if err != nil || !found || val != "v" {
		t.Fatalf("Expected v/true/nil, got %q/%v/%v", val, found, err)
	}

	_ = cs.Delete(ctx, "k")
	if _, found, _ := cs.Get(ctx, "k"); found {
		t.Error("Expected key to be gone after Delete")
	}
}

func TestCacheService_Expiry(t *testing.T) {
	cs := NewCacheService(time.Minute, time.Minute)
	ctx := context.Background()

	_ = cs.Set(ctx, "short", "v", 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, found, _ := cs.Get(ctx, "short"); found {
		t.Error("Expected expired key not to be found")
	}
}
