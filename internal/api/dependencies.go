package api

import (
	"context"
	"time"

	"wohee/vodtracker/internal/access"
	"wohee/vodtracker/internal/auth"
	"wohee/vodtracker/internal/common"
	"wohee/vodtracker/internal/config"
	"wohee/vodtracker/internal/constants"
	"wohee/vodtracker/internal/metrics"
	"wohee/vodtracker/internal/services"
	"wohee/vodtracker/internal/store"
)

// IdentityProvider resolves an OAuth authorization code into a user.
type IdentityProvider interface {
	Identify(ctx context.Context, code, redirectURL string) (*access.User, error)
}

type Services struct {
	Members  *services.MemberService
	Vod      *services.VodService
	Statics  *services.StaticsService
	Snapshot *services.SnapshotService
	Webhooks *services.WebhookService
}

type Dependencies struct {
	Config   *config.Config
	Store    store.DocumentStore
	Authz    access.Authorizer
	Signer   *auth.SessionSigner
	Identity IdentityProvider
	Revoked  common.CacheInterface
	Metrics  *metrics.MetricsRegistry
	Services *Services
	UpSince  time.Time
}

// InitDependencies wires the services on top of an opened document store.
// revoked holds logged out session ids; sender delivers statics webhooks.
func InitDependencies(cfg *config.Config, docs store.DocumentStore, revoked common.CacheInterface,
	identity IdentityProvider, sender services.WebhookSender, metricsReg *metrics.MetricsRegistry) *Dependencies {

	authz := access.NewMemoResolver(access.NewResolver(access.DefaultTables()), 10*time.Minute, 1024)
	fetcher := store.NewFetcher(docs, cfg.Roster.FetchPageSize, cfg.Roster.FetchConcurrency).
		WithObserver(metricsReg.ObserveFetch)

	members := services.NewMemberService(fetcher, services.NewMemberCache(cfg.Roster.MemberCacheTTL), metricsReg)
	vod := services.NewVodService(members, fetcher, authz, metricsReg)
	statics := services.NewStaticsService(fetcher, members, authz, StaticsPresets(cfg), cfg.Roster.MaxStaticGroupSize, metricsReg)

	return &Dependencies{
		Config:   cfg,
		Store:    docs,
		Authz:    authz,
		Signer:   auth.NewSessionSigner([]byte(cfg.Session.Secret), cfg.Session.TTL, revoked),
		Identity: identity,
		Revoked:  revoked,
		Metrics:  metricsReg,
		Services: &Services{
			Members:  members,
			Vod:      vod,
			Statics:  statics,
			Snapshot: services.NewSnapshotService(members, vod, statics),
			Webhooks: services.NewWebhookService(statics, members, authz, sender, cfg.Discord.GuildWebhooks, metricsReg),
		},
		UpSince: time.Now(),
	}
}

// StaticsPresets maps each usable preset to its collection. Appwrite
// deployments only get preset2 when its collection id is configured.
func StaticsPresets(cfg *config.Config) map[string]string {
	presets := map[string]string{constants.StaticPreset1: constants.CollectionStatics}
	if cfg.Store.Backend != config.BackendAppwrite || cfg.Appwrite.StaticsPreset2CollectionID != "" {
		presets[constants.StaticPreset2] = constants.CollectionStaticsPreset2
	}
	return presets
}

func (d *Dependencies) Cookies() auth.CookieOptions {
	return auth.CookieOptions{
		Domain: d.Config.Session.CookieDomain,
		Secure: d.Config.Session.CookieSecure,
	}
}
