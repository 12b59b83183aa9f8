package routes

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
	"wohee/vodtracker/internal/access"
	"wohee/vodtracker/internal/api"
	"wohee/vodtracker/internal/common"
	"wohee/vodtracker/internal/config"
	"wohee/vodtracker/internal/constants"
	"wohee/vodtracker/internal/metrics"
	"wohee/vodtracker/internal/store"
)

const (
	roleWeaponLead = "1323123243959451671"
	roleMaster     = "1309284427553312769"
	roleLeader     = "1309271313398894643"
)

type staticIdentity struct{ user *access.User }

func (s staticIdentity) Identify(context.Context, string, string) (*access.User, error) {
	return s.user, nil
}

type nopSender struct{}

func (nopSender) Send(context.Context, string, *discordgo.WebhookParams) error { return nil }

func newTestRouter(t *testing.T, rateLimit int) (http.Handler, *api.Dependencies) {
	t.Helper()
	cfg := &config.Config{
		AppEnv:  "development",
		Session: config.SessionConfig{Secret: "router-secret", TTL: time.Hour},
		HTTP: config.HTTPConfig{
			CORSOrigins:     []string{"http://localhost:5173"},
			RateLimitMax:    rateLimit,
			RateLimitWindow: time.Hour,
		},
		Roster: config.RosterConfig{MemberCacheTTL: time.Minute, FetchPageSize: 100, FetchConcurrency: 2},
		Store:  config.StoreConfig{Backend: config.BackendMemory},
		Discord: config.DiscordConfig{
			GuildWebhooks: map[string]string{"Alpha": "https://discord.example/webhooks/1/abc"},
		},
	}
	docs := store.NewMemoryStore()
	docs.Seed(constants.CollectionMembers, store.Document{
		"discord_id": "123456789012345678", "guild": "Alpha", "ingame_name": "Aria",
		"primary_weapon": "Xbow", "secondary_weapon": "Dagger", "has_thread": true,
	})

	deps := api.InitDependencies(cfg, docs, common.NewCacheService(time.Hour, time.Hour),
		staticIdentity{user: &access.User{ID: "111111111111111111", Username: "alice", Roles: []string{roleWeaponLead}}},
		nopSender{}, metrics.NewMetricsRegistry(prometheus.NewRegistry()))
	return RegisterRoutes(deps), deps
}

func sessionCookie(t *testing.T, deps *api.Dependencies, roles ...string) *http.Cookie {
	t.Helper()
	token, _, err := deps.Signer.Issue(access.User{ID: "222222222222222222", Username: "tester", Roles: roles})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return &http.Cookie{Name: constants.SessionCookieName, Value: token}
}

func TestRouteTiers(t *testing.T) {
	router, deps := newTestRouter(t, 1000)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		roles  []string
		noAuth bool
		want   int
	}{
		{"all data needs a session", http.MethodGet, "/api/all-data", "", nil, true, http.StatusUnauthorized},
		{"all data needs a capability", http.MethodGet, "/api/all-data", "", []string{"random"}, false, http.StatusForbidden},
		{"weapon lead reads all data", http.MethodGet, "/api/all-data", "", []string{roleWeaponLead}, false, http.StatusOK},
		{"weapon lead lists statics", http.MethodGet, "/api/statics", "", []string{roleWeaponLead}, false, http.StatusOK},
		{"weapon lead cannot move statics", http.MethodPost, "/api/statics/update", `{"discordId":"123456789012345678","group":1}`, []string{roleWeaponLead}, false, http.StatusForbidden},
		{"master moves statics", http.MethodPost, "/api/statics/update", `{"discordId":"123456789012345678","group":1}`, []string{roleMaster}, false, http.StatusOK},
		{"master cannot publish", http.MethodPost, "/api/statics/discord-webhook", `{"guild":"Alpha"}`, []string{roleMaster}, false, http.StatusForbidden},
		{"leadership publishes", http.MethodPost, "/api/statics/discord-webhook", `{"guild":"Alpha"}`, []string{roleLeader}, false, http.StatusOK},
		{"weapon lead updates own loadout", http.MethodPost, "/api/vod-update", `{"discordId":"123456789012345678","checked":true}`, []string{roleWeaponLead}, false, http.StatusOK},
		{"verify needs a session", http.MethodGet, "/api/auth/verify", "", nil, true, http.StatusUnauthorized},
		{"verify without access still answers", http.MethodGet, "/api/auth/verify", "", []string{"random"}, false, http.StatusOK},
		{"health is public", http.MethodGet, "/healthCheck", "", nil, true, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if !tt.noAuth {
				req.AddCookie(sessionCookie(t, deps, tt.roles...))
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("Expected status %d, got %d: %s", tt.want, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestLoginFlow(t *testing.T) {
	router, _ := newTestRouter(t, 1000)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/auth/discord/callback?code=abc", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("Expected session cookie, got %v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/all-data", nil)
	req.AddCookie(cookies[0])
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200 with the issued cookie, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(cookies[0])
	router.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/api/all-data", nil)
	req.AddCookie(cookies[0])
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected logged out cookie to be rejected, got %d", rr.Code)
	}
}

func TestRateLimitAndCORS(t *testing.T) {
	router, _ := newTestRouter(t, 2)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/all-data", nil))
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusUnauthorized || codes[1] != http.StatusUnauthorized || codes[2] != http.StatusTooManyRequests {
		t.Errorf("Expected 401, 401, 429, got %v", codes)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthCheck", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("Expected health check outside the limiter, got %d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodOptions, "/api/all-data", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Errorf("Expected CORS origin to be allowed, got %q", rr.Header().Get("Access-Control-Allow-Origin"))
	}
	if rr.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("Expected credentials to be allowed")
	}
}
