package services

import (
	"context"
	"strconv"

	"wohee/vodtracker/internal/access"
	"wohee/vodtracker/internal/common"
	"wohee/vodtracker/internal/constants"
	"wohee/vodtracker/internal/logging"
	"wohee/vodtracker/internal/metrics"
	"wohee/vodtracker/internal/models"
	"wohee/vodtracker/internal/store"
)

// StaticsService manages the twelve static groups of each preset.
type StaticsService struct {
	fetcher      *store.Fetcher
	members      *MemberService
	authz        access.Authorizer
	presets      map[string]string
	maxGroupSize int
	metrics      *metrics.MetricsRegistry
}

// NewStaticsService takes the collection of every configured preset.
// maxGroupSize caps how many members of one guild a group may hold; 0
// leaves the cap to the UI.
func NewStaticsService(fetcher *store.Fetcher, members *MemberService, authz access.Authorizer, presets map[string]string, maxGroupSize int, metricsReg *metrics.MetricsRegistry) *StaticsService {
	return &StaticsService{
		fetcher:      fetcher,
		members:      members,
		authz:        authz,
		presets:      presets,
		maxGroupSize: maxGroupSize,
		metrics:      metricsReg,
	}
}

// Collection resolves a preset name, defaulting to preset1.
func (s *StaticsService) Collection(preset string) (string, error) {
	if preset == "" {
		preset = constants.StaticPreset1
	}
	if preset != constants.StaticPreset1 && preset != constants.StaticPreset2 {
		return "", common.Invalid(constants.MsgInvalidPreset)
	}
	collection, ok := s.presets[preset]
	if !ok || collection == "" {
		return "", common.Invalid(constants.MsgPresetUnavailable)
	}
	return collection, nil
}

// List returns every assignment of preset ordered by group.
func (s *StaticsService) List(ctx context.Context, preset string) ([]models.Static, error) {
	collection, err := s.Collection(preset)
	if err != nil {
		return nil, err
	}
	docs, err := s.fetcher.FetchAll(ctx, collection, nil, []store.Query{store.OrderAsc(models.AttrGroup)})
	if err != nil {
		return nil, common.Upstream(constants.MsgStaticsFetchFailed, err)
	}
	statics, err := models.DecodeAll[models.Static](docs)
	if err != nil {
		return nil, common.Upstream(constants.MsgStaticsFetchFailed, err)
	}
	return statics, nil
}

// SetGroup moves a member into group, or out of every group when group is
// nil, and returns the refetched assignments of the preset. Only masters
// may call it.
func (s *StaticsService) SetGroup(ctx context.Context, actor *access.User, preset, discordID string, group *int) ([]models.Static, error) {
	if actor == nil {
		return nil, common.Unauthenticated(constants.MsgNoSession)
	}
	if !s.authz.IsMasterByRoles(actor.Roles) {
		return nil, common.Forbidden(constants.MsgMasterRequired)
	}
	if discordID == "" {
		return nil, common.Invalid(constants.MsgDiscordIDRequired)
	}
	if group != nil && (*group < constants.StaticGroupMin || *group > constants.StaticGroupMax) {
		return nil, common.Invalid(constants.MsgInvalidGroup)
	}
	collection, err := s.Collection(preset)
	if err != nil {
		return nil, err
	}

	db := s.fetcher.Store()
	existing, err := db.ListDocuments(ctx, collection,
		store.Equal(models.AttrDiscordID, discordID), store.Limit(store.MaxPageSize))
	if err != nil {
		return nil, common.Upstream(constants.MsgStaticUpdateFailed, err)
	}

	if group != nil && s.maxGroupSize > 0 {
		if err := s.checkCapacity(ctx, collection, discordID, *group); err != nil {
			return nil, err
		}
	}

	action, err := s.apply(ctx, collection, discordID, group, existing.Documents)
	if err != nil {
		return nil, common.Upstream(constants.MsgStaticUpdateFailed, err)
	}
	s.metrics.StaticChanged(presetLabel(preset), action)
	logging.Info("static group updated",
		"actor", actor.Username,
		"member", discordID,
		"preset", presetLabel(preset),
		"action", action,
		"group", groupLabel(group),
	)

	return s.List(ctx, preset)
}

// apply performs the move. Any extra records left by older writers are
// removed so the member ends up in at most one group.
func (s *StaticsService) apply(ctx context.Context, collection, discordID string, group *int, existing []store.Document) (string, error) {
	db := s.fetcher.Store()

	if group == nil {
		for _, doc := range existing {
			if err := db.DeleteDocument(ctx, collection, store.DocumentID(doc)); err != nil {
				return "", err
			}
		}
		return "remove", nil
	}

	if len(existing) == 0 {
		_, err := db.CreateDocument(ctx, collection, "", map[string]any{
			models.AttrDiscordID: discordID,
			models.AttrGroup:     *group,
		})
		return "add", err
	}

	if _, err := db.UpdateDocument(ctx, collection, store.DocumentID(existing[0]), map[string]any{models.AttrGroup: *group}); err != nil {
		return "", err
	}
	for _, doc := range existing[1:] {
		if err := db.DeleteDocument(ctx, collection, store.DocumentID(doc)); err != nil {
			return "", err
		}
	}
	return "move", nil
}

// checkCapacity rejects a move into a group that already holds
// maxGroupSize members of the target member's guild.
func (s *StaticsService) checkCapacity(ctx context.Context, collection, discordID string, group int) error {
	target, err := s.members.LookupMember(ctx, discordID)
	if err != nil {
		return err
	}
	set, err := s.members.GetMembers(ctx)
	if err != nil {
		return err
	}
	guildOf := make(map[string]string, len(set.Members))
	for _, m := range set.Members {
		guildOf[m.DiscordID] = m.GuildName()
	}

	docs, err := s.fetcher.FetchAll(ctx, collection, []store.Query{store.Equal(models.AttrGroup, group)}, nil)
	if err != nil {
		return common.Upstream(constants.MsgStaticUpdateFailed, err)
	}
	statics, err := models.DecodeAll[models.Static](docs)
	if err != nil {
		return common.Upstream(constants.MsgStaticUpdateFailed, err)
	}

	count := 0
	for _, st := range statics {
		if st.DiscordID == discordID {
			continue
		}
		if guildOf[st.DiscordID] == target.GuildName() {
			count++
		}
	}
	if count >= s.maxGroupSize {
		return common.InvalidWithDetails(constants.MsgGroupFull,
			"group "+strconv.Itoa(group)+" already has "+strconv.Itoa(count)+" members")
	}
	return nil
}

func presetLabel(preset string) string {
	if preset == "" {
		return constants.StaticPreset1
	}
	return preset
}

func groupLabel(group *int) string {
	if group == nil {
		return "none"
	}
	return strconv.Itoa(*group)
}
