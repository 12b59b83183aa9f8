package services

import (
	"context"
	"sort"
	"strings"

	"wohee/vodtracker/internal/common"
	"wohee/vodtracker/internal/constants"
	"wohee/vodtracker/internal/logging"
	"wohee/vodtracker/internal/metrics"
	"wohee/vodtracker/internal/models"
	"wohee/vodtracker/internal/store"
)

const memberCacheName = "members"

type MemberService struct {
	fetcher *store.Fetcher
	cache   *MemberCache
	metrics *metrics.MetricsRegistry
}

func NewMemberService(fetcher *store.Fetcher, cache *MemberCache, metricsReg *metrics.MetricsRegistry) *MemberService {
	return &MemberService{fetcher: fetcher, cache: cache, metrics: metricsReg}
}

func (s *MemberService) Cache() *MemberCache {
	return s.cache
}

// GetMembers serves the roster from the cache, refetching it once the TTL
// has passed. A failed refetch returns the error and keeps the old entry.
func (s *MemberService) GetMembers(ctx context.Context) (*models.MemberSet, error) {
	if set, ok := s.cache.Get(); ok {
		s.metrics.CacheHit(memberCacheName)
		return set, nil
	}
	s.metrics.CacheMiss(memberCacheName)
	return s.Refresh(ctx)
}

// Refresh fetches every member with a guild and replaces the cache entry.
func (s *MemberService) Refresh(ctx context.Context) (*models.MemberSet, error) {
	docs, err := s.fetcher.FetchAll(ctx, constants.CollectionMembers,
		[]store.Query{store.IsNotNull(models.AttrGuild)},
		[]store.Query{store.OrderAsc(models.AttrGuild), store.OrderAsc(models.AttrIngameName)},
	)
	if err != nil {
		return nil, common.Upstream(constants.MsgFetchFailed, err)
	}

	members, err := models.DecodeAll[models.Member](docs)
	if err != nil {
		return nil, common.Upstream(constants.MsgFetchFailed, err)
	}

	set := &models.MemberSet{
		Members:      members,
		UniqueValues: DeriveUniqueValues(members),
	}
	s.cache.Set(set)
	s.metrics.SetMemberCacheSize(len(members))
	logging.Info("member cache refreshed", "members", len(members), "guilds", len(set.UniqueValues.Guilds))
	return set, nil
}

// LookupMember reads one member straight from the store, bypassing the
// cache, so write paths see the current loadout and thread flag.
func (s *MemberService) LookupMember(ctx context.Context, discordID string) (*models.Member, error) {
	list, err := s.fetcher.Store().ListDocuments(ctx, constants.CollectionMembers,
		store.Equal(models.AttrDiscordID, discordID), store.Limit(1))
	if err != nil {
		return nil, common.Upstream(constants.MsgFetchFailed, err)
	}
	if len(list.Documents) == 0 {
		return nil, common.NotFound(constants.MsgMemberNotFound)
	}
	m, err := models.Decode[models.Member](list.Documents[0])
	if err != nil {
		return nil, common.Upstream(constants.MsgFetchFailed, err)
	}
	return &m, nil
}

// DeriveUniqueValues collects the trimmed, non-blank guilds and weapons of
// members, each sorted ascending.
func DeriveUniqueValues(members []models.Member) models.UniqueValues {
	guilds := make(map[string]struct{})
	primaries := make(map[string]struct{})
	secondaries := make(map[string]struct{})

	for _, m := range members {
		addTrimmed(guilds, m.GuildName())
		addTrimmed(primaries, m.PrimaryWeapon)
		addTrimmed(secondaries, m.SecondaryWeapon)
	}

	return models.UniqueValues{
		Guilds:           sortedKeys(guilds),
		PrimaryWeapons:   sortedKeys(primaries),
		SecondaryWeapons: sortedKeys(secondaries),
	}
}

func addTrimmed(set map[string]struct{}, v string) {
	if v = strings.TrimSpace(v); v != "" {
		set[v] = struct{}{}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
