package constants

import "time"

type CachePrefix string

const (
	CachePrefixRevokedSession CachePrefix = "revoked_session:"
	CachePrefixPermission     CachePrefix = "perm:"
)

const (
	SessionCookieName = "session"

	MaxNotesLength = 500

	GearScoreMin = 3000
	GearScoreMax = 5000

	StaticGroupMin = 1
	StaticGroupMax = 12

	// DefaultPageSize is the largest page the document API returns.
	DefaultPageSize = 100

	MemberCacheTTL = 5 * time.Minute
)

// Static presets each live in their own collection.
const (
	StaticPreset1 = "preset1"
	StaticPreset2 = "preset2"
)

// Logical collection names. Backends translate them to their own ids.
const (
	CollectionMembers        = "members"
	CollectionVodTracking    = "vod_tracking"
	CollectionStatics        = "statics"
	CollectionStaticsPreset2 = "statics_preset2"
)
