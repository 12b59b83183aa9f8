package config

import (
	"testing"
	"time"
)

func setMemoryEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DOCUMENT_BACKEND", BackendMemory)
}

func TestLoad_Defaults(t *testing.T) {
	setMemoryEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Session.TTL != 7*24*time.Hour {
		t.Errorf("Expected 7 day session TTL, got %v", cfg.Session.TTL)
	}
	if cfg.Roster.MemberCacheTTL != 5*time.Minute {
		t.Errorf("Expected 5 minute member cache TTL, got %v", cfg.Roster.MemberCacheTTL)
	}
	if cfg.Roster.FetchPageSize != 100 {
		t.Errorf("Expected page size 100, got %d", cfg.Roster.FetchPageSize)
	}
	if cfg.HTTP.RateLimitMax != 100 || cfg.HTTP.RateLimitWindow != 15*time.Minute {
		t.Errorf("Expected 100 requests per 15m, got %d per %v", cfg.HTTP.RateLimitMax, cfg.HTTP.RateLimitWindow)
	}
	if cfg.Roster.MaxStaticGroupSize != 0 {
		t.Errorf("Expected group size cap disabled by default, got %d", cfg.Roster.MaxStaticGroupSize)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	setMemoryEnv(t)
	t.Setenv("SESSION_TTL", "24h")
	t.Setenv("FETCH_PAGE_SIZE", "50")
	t.Setenv("STATICS_MAX_GROUP_SIZE", "6")
	t.Setenv("CORS_ORIGINS", "https://vods.example.com, https://admin.example.com")
	t.Setenv("DISCORD_GUILD_1_NAME", "Vanguard")
	t.Setenv("DISCORD_GUILD_1_WEBHOOK", "https://discord.com/api/webhooks/1/abc")
	t.Setenv("DISCORD_GUILD_2_NAME", "Orphan")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Session.TTL != 24*time.Hour {
		t.Errorf("Expected 24h session TTL, got %v", cfg.Session.TTL)
	}
	if cfg.Roster.FetchPageSize != 50 {
		t.Errorf("Expected page size 50, got %d", cfg.Roster.FetchPageSize)
	}
	if cfg.Roster.MaxStaticGroupSize != 6 {
		t.Errorf("Expected group size cap 6, got %d", cfg.Roster.MaxStaticGroupSize)
	}
	if len(cfg.HTTP.CORSOrigins) != 2 || cfg.HTTP.CORSOrigins[1] != "https://admin.example.com" {
		t.Errorf("Unexpected CORS origins: %v", cfg.HTTP.CORSOrigins)
	}
	if got := cfg.Discord.GuildWebhooks["Vanguard"]; got != "https://discord.com/api/webhooks/1/abc" {
		t.Errorf("Expected Vanguard webhook, got %q", got)
	}
	if _, ok := cfg.Discord.GuildWebhooks["Orphan"]; ok {
		t.Error("Expected guild without webhook URL to be skipped")
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	setMemoryEnv(t)
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("Expected error when JWT_SECRET is missing")
	}
}

func TestValidate_AppwriteRequiresCollections(t *testing.T) {
	cfg := defaultConfig()
	cfg.Session.Secret = "s"
	cfg.Appwrite = AppwriteConfig{
		Endpoint:   "https://cloud.appwrite.io/v1",
		ProjectID:  "proj",
		DatabaseID: "db",
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("Expected error for missing collection ids")
	}

	cfg.Appwrite.MembersCollectionID = "members"
	cfg.Appwrite.VodCollectionID = "vods"
	cfg.Appwrite.StaticsCollectionID = "statics"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected valid config, got %v", err)
	}
}

func TestValidate_PageSizeBounds(t *testing.T) {
	cfg := defaultConfig()
	cfg.Session.Secret = "s"
	cfg.Store.Backend = BackendMemory

	for _, size := range []int{0, 101} {
		cfg.Roster.FetchPageSize = size
		if err := cfg.Validate(); err == nil {
			t.Errorf("Expected error for page size %d", size)
		}
	}
}
