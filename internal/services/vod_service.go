package services

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"wohee/vodtracker/internal/access"
	"wohee/vodtracker/internal/common"
	"wohee/vodtracker/internal/constants"
	"wohee/vodtracker/internal/logging"
	"wohee/vodtracker/internal/metrics"
	"wohee/vodtracker/internal/models"
	"wohee/vodtracker/internal/store"
)

// checkDateLayout matches what browsers produce with Date.toISOString.
const checkDateLayout = "2006-01-02T15:04:05.000Z"

// equal queries accept at most this many values
const maxEqualValues = 100

var markupPattern = regexp.MustCompile(`<[^>]*>`)

// VodUpdate is a partial change to one member's tracking record. Nil
// pointers leave the stored value alone.
type VodUpdate struct {
	DiscordID     string
	Checked       *bool
	Notes         *string
	VodCheckDate  *string
	GearChecked   *bool
	GearCheckDate *string

	// GearScore is the raw client value (string, number or nil) and only
	// applies when GearScoreSet is true. nil or "" clears the score.
	GearScore    any
	GearScoreSet bool
}

type VodService struct {
	members *MemberService
	fetcher *store.Fetcher
	authz   access.Authorizer
	metrics *metrics.MetricsRegistry
	now     func() time.Time
}

func NewVodService(members *MemberService, fetcher *store.Fetcher, authz access.Authorizer, metricsReg *metrics.MetricsRegistry) *VodService {
	return &VodService{
		members: members,
		fetcher: fetcher,
		authz:   authz,
		metrics: metricsReg,
		now:     time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (s *VodService) WithClock(now func() time.Time) *VodService {
	s.now = now
	return s
}

// Update validates in, checks that actor leads the member's loadout and
// that the member has a ticket thread, then upserts the record. A check
// flag set to false clears its date and lead in the same write; set to true
// it stamps the actor and either the supplied date or now.
func (s *VodService) Update(ctx context.Context, actor *access.User, in VodUpdate) (*models.VodTracking, error) {
	rec, err := s.update(ctx, actor, in)
	s.metrics.VodUpdated(err)
	return rec, err
}

func (s *VodService) update(ctx context.Context, actor *access.User, in VodUpdate) (*models.VodTracking, error) {
	if actor == nil {
		return nil, common.Unauthenticated(constants.MsgNoSession)
	}
	gearScore, err := validateVodUpdate(in)
	if err != nil {
		return nil, err
	}

	member, err := s.members.LookupMember(ctx, in.DiscordID)
	if err != nil {
		return nil, err
	}
	if !s.authz.CanEditWeapon(actor.Roles, member.PrimaryWeapon, member.SecondaryWeapon) {
		logging.Warn("vod update denied",
			"actor", actor.Username,
			"member", in.DiscordID,
			"loadout", member.Loadout().String(),
		)
		return nil, common.Forbidden(constants.MsgWeaponPermission)
	}
	if !member.HasThread {
		return nil, common.Invalid(constants.MsgThreadRequired)
	}

	db := s.fetcher.Store()
	existing, err := db.ListDocuments(ctx, constants.CollectionVodTracking,
		store.Equal(models.AttrDiscordID, in.DiscordID), store.Limit(1))
	if err != nil {
		return nil, common.Upstream(constants.MsgVodUpdateFailed, err)
	}

	var current *models.VodTracking
	if len(existing.Documents) > 0 {
		rec, err := models.Decode[models.VodTracking](existing.Documents[0])
		if err != nil {
			return nil, common.Upstream(constants.MsgVodUpdateFailed, err)
		}
		current = &rec
	}

	patch, err := s.buildPatch(in, gearScore, actor.Username, current)
	if err != nil {
		return nil, err
	}

	var doc store.Document
	if current != nil {
		doc, err = db.UpdateDocument(ctx, constants.CollectionVodTracking, current.ID, patch)
	} else {
		doc, err = db.CreateDocument(ctx, constants.CollectionVodTracking, "", withVodDefaults(patch))
	}
	if err != nil {
		return nil, common.Upstream(constants.MsgVodUpdateFailed, err)
	}

	rec, err := models.Decode[models.VodTracking](doc)
	if err != nil {
		return nil, common.Upstream(constants.MsgVodUpdateFailed, err)
	}
	logging.Info("vod tracking updated", "actor", actor.Username, "member", in.DiscordID, "created", current == nil)
	return &rec, nil
}

func (s *VodService) buildPatch(in VodUpdate, gearScore *string, actorName string, current *models.VodTracking) (map[string]any, error) {
	patch := map[string]any{models.AttrDiscordID: in.DiscordID}
	now := s.now().UTC().Format(checkDateLayout)

	if in.Notes != nil {
		patch[models.AttrNotes] = *in.Notes
	}

	vodChecked := current != nil && current.HasVod
	if err := applyCheck(patch, in.Checked, in.VodCheckDate, vodChecked, actorName, now,
		models.AttrHasVod, models.AttrVodCheckDate, models.AttrVodCheckLead); err != nil {
		return nil, err
	}

	gearChecked := current != nil && current.GearChecked
	if err := applyCheck(patch, in.GearChecked, in.GearCheckDate, gearChecked, actorName, now,
		models.AttrGearChecked, models.AttrGearCheckDate, models.AttrGearCheckLead); err != nil {
		return nil, err
	}

	if in.GearScoreSet {
		if gearScore == nil {
			patch[models.AttrGearScore] = nil
		} else {
			patch[models.AttrGearScore] = *gearScore
		}
	}
	return patch, nil
}

// applyCheck writes one flag with its paired date and lead. A date without
// a flag refreshes the timestamp of a check that is already set.
func applyCheck(patch map[string]any, checked *bool, date *string, currentlyChecked bool, actorName, now, flagAttr, dateAttr, leadAttr string) error {
	switch {
	case checked != nil && !*checked:
		patch[flagAttr] = false
		patch[dateAttr] = nil
		patch[leadAttr] = nil
	case checked != nil:
		patch[flagAttr] = true
		patch[leadAttr] = actorName
		patch[dateAttr] = now
		if date != nil {
			patch[dateAttr] = *date
		}
	case date != nil:
		if !currentlyChecked {
			return common.Invalid(constants.MsgRefreshUnchecked)
		}
		patch[dateAttr] = *date
		patch[leadAttr] = actorName
	}
	return nil
}

func withVodDefaults(patch map[string]any) map[string]any {
	rec := map[string]any{
		models.AttrHasVod:        false,
		models.AttrNotes:         "",
		models.AttrVodCheckDate:  nil,
		models.AttrVodCheckLead:  nil,
		models.AttrGearChecked:   false,
		models.AttrGearCheckDate: nil,
		models.AttrGearCheckLead: nil,
		models.AttrGearScore:     nil,
	}
	for k, v := range patch {
		rec[k] = v
	}
	return rec
}

// validateVodUpdate rejects bad input before any store call and returns the
// normalized gear score.
func validateVodUpdate(in VodUpdate) (*string, error) {
	if strings.TrimSpace(in.DiscordID) == "" {
		return nil, common.Invalid(constants.MsgDiscordIDRequired)
	}
	if in.Notes != nil {
		if utf8.RuneCountInString(*in.Notes) > constants.MaxNotesLength {
			return nil, common.Invalid(constants.MsgNotesTooLong)
		}
		if markupPattern.MatchString(*in.Notes) {
			return nil, common.Invalid(constants.MsgNotesMarkup)
		}
	}
	for _, date := range []*string{in.VodCheckDate, in.GearCheckDate} {
		if date != nil && !validCheckDate(*date) {
			return nil, common.Invalid(constants.MsgInvalidCheckDate)
		}
	}
	if !in.GearScoreSet {
		return nil, nil
	}
	return ParseGearScore(in.GearScore)
}

func validCheckDate(v string) bool {
	if _, err := time.Parse(time.RFC3339, v); err == nil {
		return true
	}
	_, err := time.Parse(time.DateOnly, v)
	return err == nil
}

// ParseGearScore accepts an integer as a string or JSON number and clamps
// it into the allowed range. nil and "" mean no score.
func ParseGearScore(v any) (*string, error) {
	var n int
	switch raw := v.(type) {
	case nil:
		return nil, nil
	case string:
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil, nil
		}
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, common.Invalid(constants.MsgInvalidGearScore)
		}
		n = parsed
	case float64:
		if raw != math.Trunc(raw) || math.IsInf(raw, 0) {
			return nil, common.Invalid(constants.MsgInvalidGearScore)
		}
		n = int(math.Max(math.Min(raw, math.MaxInt32), math.MinInt32))
	case int:
		n = raw
	default:
		return nil, common.Invalid(constants.MsgInvalidGearScore)
	}

	n = min(max(n, constants.GearScoreMin), constants.GearScoreMax)
	out := strconv.Itoa(n)
	return &out, nil
}

// GetTracking returns the records of the given members keyed by discord id.
func (s *VodService) GetTracking(ctx context.Context, discordIDs []string) (map[string]models.VodTracking, error) {
	out := make(map[string]models.VodTracking, len(discordIDs))
	for start := 0; start < len(discordIDs); start += maxEqualValues {
		end := min(start+maxEqualValues, len(discordIDs))
		values := make([]any, 0, end-start)
		for _, id := range discordIDs[start:end] {
			values = append(values, id)
		}

		docs, err := s.fetcher.FetchAll(ctx, constants.CollectionVodTracking,
			[]store.Query{store.Equal(models.AttrDiscordID, values...)}, nil)
		if err != nil {
			return nil, common.Upstream(constants.MsgFetchFailed, err)
		}
		if err := keyTracking(out, docs); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// GetAllTracking returns every tracking record keyed by discord id.
func (s *VodService) GetAllTracking(ctx context.Context) (map[string]models.VodTracking, error) {
	docs, err := s.fetcher.FetchAll(ctx, constants.CollectionVodTracking, nil, nil)
	if err != nil {
		return nil, common.Upstream(constants.MsgFetchFailed, err)
	}
	out := make(map[string]models.VodTracking, len(docs))
	if err := keyTracking(out, docs); err != nil {
		return nil, err
	}
	return out, nil
}

func keyTracking(out map[string]models.VodTracking, docs []store.Document) error {
	recs, err := models.DecodeAll[models.VodTracking](docs)
	if err != nil {
		return common.Upstream(constants.MsgFetchFailed, err)
	}
	for _, rec := range recs {
		out[rec.DiscordID] = rec
	}
	return nil
}
