package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"wohee/vodtracker/internal/access"
	"wohee/vodtracker/internal/constants"
	"wohee/vodtracker/internal/metrics"
	"wohee/vodtracker/internal/store"
)

const (
	roleSnsGs   = "role-sns-gs"
	roleWandBow = "role-wand-bow"
	roleMaster  = "role-master"
	roleLeader  = "role-leader"
)

var errUpstream = errors.New("upstream unavailable")

// spyStore counts list calls per collection and can be told to fail.
type spyStore struct {
	*store.MemoryStore
	mu      sync.Mutex
	lists   map[string]int
	failing bool
}

func (s *spyStore) ListDocuments(ctx context.Context, collection string, queries ...store.Query) (*store.DocumentList, error) {
	s.mu.Lock()
	s.lists[collection]++
	failing := s.failing
	s.mu.Unlock()
	if failing {
		return nil, errUpstream
	}
	return s.MemoryStore.ListDocuments(ctx, collection, queries...)
}

func (s *spyStore) listCalls(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lists[collection]
}

func (s *spyStore) setFailing(v bool) {
	s.mu.Lock()
	s.failing = v
	s.mu.Unlock()
}

type fixture struct {
	store   *spyStore
	clock   *testClock
	metrics *metrics.MetricsRegistry
	authz   *access.Resolver
	members *MemberService
	vod     *VodService
	statics *StaticsService
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newFixture(t *testing.T, maxGroupSize int) *fixture {
	t.Helper()
	spy := &spyStore{MemoryStore: store.NewMemoryStore(), lists: make(map[string]int)}
	clock := &testClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	reg := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	authz := access.NewResolver(access.NewTables(
		map[string]constants.WeaponPair{
			roleSnsGs:   {Primary: "SNS", Secondary: "GS"},
			roleWandBow: {Primary: "Wand", Secondary: "Bow"},
		},
		[]string{roleMaster, roleLeader},
		[]string{roleLeader},
	))

	fetcher := store.NewFetcher(spy, 100, 4)
	members := NewMemberService(fetcher, NewMemberCache(5*time.Minute).WithClock(clock.Now), reg)
	presets := map[string]string{
		constants.StaticPreset1: constants.CollectionStatics,
		constants.StaticPreset2: constants.CollectionStaticsPreset2,
	}

	return &fixture{
		store:   spy,
		clock:   clock,
		metrics: reg,
		authz:   authz,
		members: members,
		vod:     NewVodService(members, fetcher, authz, reg).WithClock(clock.Now),
		statics: NewStaticsService(fetcher, members, authz, presets, maxGroupSize, reg),
	}
}

func (f *fixture) addMember(discordID, guild, primary, secondary string, hasThread bool) {
	doc := store.Document{
		"discord_id":       discordID,
		"discord_username": "user" + discordID,
		"ingame_name":      "ign" + discordID,
		"primary_weapon":   primary,
		"secondary_weapon": secondary,
		"has_thread":       hasThread,
	}
	if guild != "" {
		doc["guild"] = guild
	}
	f.store.Seed(constants.CollectionMembers, doc)
}

func user(name string, roles ...string) *access.User {
	return &access.User{ID: "1000000000000000" + name, Username: name, Roles: roles}
}
