package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/sync/errgroup"
	"wohee/vodtracker/internal/access"
	"wohee/vodtracker/internal/common"
	"wohee/vodtracker/internal/constants"
	"wohee/vodtracker/internal/logging"
	"wohee/vodtracker/internal/metrics"
	"wohee/vodtracker/internal/models"
)

const staticsEmbedColor = 0x004499

// WebhookSender delivers a message to a Discord webhook URL.
type WebhookSender interface {
	Send(ctx context.Context, webhookURL string, params *discordgo.WebhookParams) error
}

// WebhookService posts the static groups of a guild to its Discord channel.
type WebhookService struct {
	statics *StaticsService
	members *MemberService
	authz   access.Authorizer
	sender  WebhookSender
	hooks   map[string]string
	metrics *metrics.MetricsRegistry
	now     func() time.Time
}

// NewWebhookService takes the webhook URL of every guild name.
func NewWebhookService(statics *StaticsService, members *MemberService, authz access.Authorizer, sender WebhookSender, hooks map[string]string, metricsReg *metrics.MetricsRegistry) *WebhookService {
	return &WebhookService{
		statics: statics,
		members: members,
		authz:   authz,
		sender:  sender,
		hooks:   hooks,
		metrics: metricsReg,
		now:     time.Now,
	}
}

func (s *WebhookService) WithClock(now func() time.Time) *WebhookService {
	s.now = now
	return s
}

// PublishStatics sends one embed listing the twelve groups of guild in
// preset. Only leadership may publish. Nothing is stored, so a failed
// delivery leaves no state behind.
func (s *WebhookService) PublishStatics(ctx context.Context, actor *access.User, guild, preset string) error {
	if actor == nil {
		return common.Unauthenticated(constants.MsgNoSession)
	}
	if !s.authz.IsLeadershipByRoles(actor.Roles) {
		return common.Forbidden(constants.MsgLeadershipRequired)
	}
	guild = strings.TrimSpace(guild)
	if guild == "" {
		return common.Invalid(constants.MsgMissingGuild)
	}
	webhookURL, ok := s.hooks[guild]
	if !ok {
		return common.Invalid(constants.MsgNoWebhook)
	}
	if _, err := s.statics.Collection(preset); err != nil {
		return err
	}

	var (
		statics []models.Static
		set     *models.MemberSet
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		statics, err = s.statics.List(gctx, preset)
		return err
	})
	g.Go(func() error {
		var err error
		set, err = s.members.GetMembers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	embed := BuildStaticsEmbed(guild, preset, statics, set.Members, s.now())
	err := s.sender.Send(ctx, webhookURL, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
	s.metrics.WebhookSent(err)
	if err != nil {
		return common.Upstream(constants.MsgWebhookFailed, err)
	}

	logging.Info("statics published to discord", "actor", actor.Username, "guild", guild, "preset", presetLabel(preset))
	return nil
}

// BuildStaticsEmbed lays out all twelve groups of guild as inline fields.
// Assignments of members from other guilds are skipped.
func BuildStaticsEmbed(guild, preset string, statics []models.Static, members []models.Member, now time.Time) *discordgo.MessageEmbed {
	byID := make(map[string]models.Member)
	for _, m := range members {
		if m.GuildName() == guild {
			byID[m.DiscordID] = m
		}
	}

	groups := make(map[int][]string)
	for _, st := range statics {
		m, ok := byID[st.DiscordID]
		if !ok {
			continue
		}
		groups[st.Group] = append(groups[st.Group], m.DisplayName())
	}

	fields := make([]*discordgo.MessageEmbedField, 0, constants.StaticGroupMax)
	for n := constants.StaticGroupMin; n <= constants.StaticGroupMax; n++ {
		value := "Empty"
		if names := groups[n]; len(names) > 0 {
			value = strings.Join(names, "\n")
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("__Group %d__", n),
			Value:  value,
			Inline: true,
		})
	}

	presetName := "Preset 1"
	if preset == constants.StaticPreset2 {
		presetName = "Preset 2"
	}
	return &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("Static Groups - %s - %s", guild, presetName),
		Fields:    fields,
		Color:     staticsEmbedColor,
		Timestamp: now.UTC().Format(time.RFC3339),
		Footer:    &discordgo.MessageEmbedFooter{Text: "Last Updated"},
	}
}
