package access

import (
	"sort"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"wohee/vodtracker/internal/constants"
)

// Authorizer is what request handling needs from the permission model.
type Authorizer interface {
	IsMasterByRoles(roles []string) bool
	IsLeadershipByRoles(roles []string) bool
	HasAnyAccessByRoles(roles []string) bool
	WeaponPermissions(roles []string) []constants.WeaponPair
	CanEditWeapon(roles []string, primary, secondary string) bool
	AccessLevel(roles []string) constants.AccessLevel
}

var (
	_ Authorizer = (*Resolver)(nil)
	_ Authorizer = (*MemoResolver)(nil)
)

// MemoResolver caches the boolean checks of a Resolver. Keys carry the whole
// sorted role list, so two users with the same roles share entries and a
// role change produces a fresh key. Entries expire after ttl and the whole
// memo is dropped once it reaches maxEntries.
type MemoResolver struct {
	*Resolver
	memo       *cache.Cache
	maxEntries int
}

func NewMemoResolver(r *Resolver, ttl time.Duration, maxEntries int) *MemoResolver {
	return &MemoResolver{
		Resolver:   r,
		memo:       cache.New(ttl, 2*ttl),
		maxEntries: maxEntries,
	}
}

func (m *MemoResolver) IsMasterByRoles(roles []string) bool {
	return m.cached("master|"+rolesKey(roles), func() bool {
		return m.Resolver.IsMasterByRoles(roles)
	})
}

func (m *MemoResolver) IsLeadershipByRoles(roles []string) bool {
	return m.cached("leadership|"+rolesKey(roles), func() bool {
		return m.Resolver.IsLeadershipByRoles(roles)
	})
}

func (m *MemoResolver) HasAnyAccessByRoles(roles []string) bool {
	return m.IsMasterByRoles(roles) || len(m.Resolver.WeaponPermissions(roles)) > 0
}

func (m *MemoResolver) CanEditWeapon(roles []string, primary, secondary string) bool {
	key := "weapon|" + rolesKey(roles) + "|" + primary + "|" + secondary
	return m.cached(key, func() bool {
		return m.Resolver.CanEditWeapon(roles, primary, secondary)
	})
}

// Len returns the number of memoized entries.
func (m *MemoResolver) Len() int {
	return m.memo.ItemCount()
}

// Reset drops every memoized entry.
func (m *MemoResolver) Reset() {
	m.memo.Flush()
}

func (m *MemoResolver) cached(key string, compute func() bool) bool {
	key = string(constants.CachePrefixPermission) + key
	if v, ok := m.memo.Get(key); ok {
		return v.(bool)
	}

	result := compute()
	if m.maxEntries > 0 && m.memo.ItemCount() >= m.maxEntries {
		m.memo.Flush()
	}
	m.memo.SetDefault(key, result)
	return result
}

func rolesKey(roles []string) string {
	sorted := append([]string(nil), roles...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}
