package services

import (
	"sync"
	"time"

	"wohee/vodtracker/internal/models"
)

// MemberCache holds one roster snapshot for a fixed time. The lock only
// guards the slot; refetches are not coordinated, so two callers missing at
// the same moment both fetch and the later write wins.
type MemberCache struct {
	mu        sync.RWMutex
	set       *models.MemberSet
	fetchedAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

func NewMemberCache(ttl time.Duration) *MemberCache {
	return &MemberCache{ttl: ttl, now: time.Now}
}

// WithClock replaces the time source, for tests.
func (c *MemberCache) WithClock(now func() time.Time) *MemberCache {
	c.now = now
	return c
}

// Get returns the cached snapshot while it is younger than the TTL.
func (c *MemberCache) Get() (*models.MemberSet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.set == nil || c.now().Sub(c.fetchedAt) >= c.ttl {
		return nil, false
	}
	return c.set, true
}

func (c *MemberCache) Set(set *models.MemberSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set = set
	c.fetchedAt = c.now()
}

func (c *MemberCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set = nil
	c.fetchedAt = time.Time{}
}

// ExpiresAt reports when the current snapshot goes stale.
func (c *MemberCache) ExpiresAt() (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.set == nil {
		return time.Time{}, false
	}
	return c.fetchedAt.Add(c.ttl), true
}
