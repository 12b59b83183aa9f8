// Package access derives capabilities from a user's Discord role ids.
//
// Every predicate is a pure function of the role list and the static role
// tables. Authorization decisions use the boolean checks here; AccessLevel is
// a display label and must never be used to grant anything.
package access

import (
	"wohee/vodtracker/internal/constants"
)

// Tables holds the role configuration. The zero value grants nothing.
type Tables struct {
	WeaponLeads map[string]constants.WeaponPair
	Master      map[string]struct{}
	Leadership  map[string]struct{}
}

// DefaultTables returns the guild's production role configuration.
func DefaultTables() Tables {
	return NewTables(constants.WeaponLeadRoles, constants.MasterRoles, constants.LeadershipRoles)
}

func NewTables(weaponLeads map[string]constants.WeaponPair, master, leadership []string) Tables {
	t := Tables{
		WeaponLeads: make(map[string]constants.WeaponPair, len(weaponLeads)),
		Master:      toSet(master),
		Leadership:  toSet(leadership),
	}
	for role, pair := range weaponLeads {
		t.WeaponLeads[role] = pair
	}
	return t
}

// User is the identity carried by a session.
type User struct {
	ID       string
	Username string
	Roles    []string
}

// Resolver answers capability questions against a fixed set of tables.
type Resolver struct {
	tables Tables
}

func NewResolver(tables Tables) *Resolver {
	return &Resolver{tables: tables}
}

func (r *Resolver) IsMasterByRoles(roles []string) bool {
	return intersects(roles, r.tables.Master)
}

func (r *Resolver) IsMasterByUser(user *User) bool {
	if user == nil {
		return false
	}
	return r.IsMasterByRoles(user.Roles)
}

func (r *Resolver) IsLeadershipByRoles(roles []string) bool {
	return intersects(roles, r.tables.Leadership)
}

func (r *Resolver) IsLeadershipByUser(user *User) bool {
	if user == nil {
		return false
	}
	return r.IsLeadershipByRoles(user.Roles)
}

// WeaponPermissions lists the loadouts the roles lead, in role order,
// without duplicates.
func (r *Resolver) WeaponPermissions(roles []string) []constants.WeaponPair {
	perms := make([]constants.WeaponPair, 0)
	seen := make(map[constants.WeaponPair]struct{})
	for _, role := range roles {
		pair, ok := r.tables.WeaponLeads[role]
		if !ok {
			continue
		}
		if _, dup := seen[pair]; dup {
			continue
		}
		seen[pair] = struct{}{}
		perms = append(perms, pair)
	}
	return perms
}

func (r *Resolver) HasAnyAccessByRoles(roles []string) bool {
	return r.IsMasterByRoles(roles) || len(r.WeaponPermissions(roles)) > 0
}

func (r *Resolver) HasAnyAccessByUser(user *User) bool {
	if user == nil {
		return false
	}
	return r.HasAnyAccessByRoles(user.Roles)
}

// CanEditWeapon reports whether the roles allow editing members with the
// given loadout. Master roles can edit every loadout.
func (r *Resolver) CanEditWeapon(roles []string, primary, secondary string) bool {
	if r.IsMasterByRoles(roles) {
		return true
	}
	want := constants.WeaponPair{Primary: primary, Secondary: secondary}
	for _, role := range roles {
		if pair, ok := r.tables.WeaponLeads[role]; ok && pair == want {
			return true
		}
	}
	return false
}

func (r *Resolver) CanEditWeaponByUser(user *User, primary, secondary string) bool {
	if user == nil {
		return false
	}
	return r.CanEditWeapon(user.Roles, primary, secondary)
}

// AccessLevel returns the badge shown in the UI.
func (r *Resolver) AccessLevel(roles []string) constants.AccessLevel {
	switch {
	case r.IsLeadershipByRoles(roles):
		return constants.AccessLeadership
	case r.IsMasterByRoles(roles):
		return constants.AccessMaster
	case len(r.WeaponPermissions(roles)) > 0:
		return constants.AccessWeaponLead
	default:
		return constants.AccessNone
	}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func intersects(roles []string, set map[string]struct{}) bool {
	for _, role := range roles {
		if _, ok := set[role]; ok {
			return true
		}
	}
	return false
}
