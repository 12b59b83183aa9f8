package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"wohee/vodtracker/internal/constants"
)

const (
	BackendAppwrite = "appwrite"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

type Config struct {
	AppEnv string `koanf:"app_env"`
	Port   string `koanf:"port"`

	Session  SessionConfig  `koanf:"session"`
	HTTP     HTTPConfig     `koanf:"http"`
	Roster   RosterConfig   `koanf:"roster"`
	Store    StoreConfig    `koanf:"store"`
	Appwrite AppwriteConfig `koanf:"appwrite"`
	Redis    RedisConfig    `koanf:"redis"`
	Discord  DiscordConfig  `koanf:"discord"`
}

type SessionConfig struct {
	Secret       string        `koanf:"secret"`
	TTL          time.Duration `koanf:"ttl"`
	CookieDomain string        `koanf:"cookie_domain"`
	CookieSecure bool          `koanf:"cookie_secure"`
}

type HTTPConfig struct {
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitMax    int           `koanf:"rate_limit_max"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

type RosterConfig struct {
	MemberCacheTTL     time.Duration `koanf:"member_cache_ttl"`
	FetchPageSize      int           `koanf:"fetch_page_size"`
	FetchConcurrency   int           `koanf:"fetch_concurrency"`
	MaxStaticGroupSize int           `koanf:"max_static_group_size"`
	// CacheWarmInterval refreshes the member cache in the background. Zero
	// leaves refreshes to the first request after expiry.
	CacheWarmInterval time.Duration `koanf:"cache_warm_interval"`
}

type StoreConfig struct {
	Backend     string `koanf:"backend"`
	PostgresDSN string `koanf:"postgres_dsn"`
	SQLitePath  string `koanf:"sqlite_path"`
}

type AppwriteConfig struct {
	Endpoint                   string `koanf:"endpoint"`
	ProjectID                  string `koanf:"project_id"`
	APIKey                     string `koanf:"api_key"`
	DatabaseID                 string `koanf:"database_id"`
	MembersCollectionID        string `koanf:"members_collection_id"`
	VodCollectionID            string `koanf:"vod_collection_id"`
	StaticsCollectionID        string `koanf:"statics_collection_id"`
	StaticsPreset2CollectionID string `koanf:"statics_preset2_collection_id"`
}

type RedisConfig struct {
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	Password string `koanf:"password"`
}

// Enabled reports whether a redis host was configured. Without one the
// session revocation list stays in process memory.
func (r RedisConfig) Enabled() bool { return r.Host != "" }

type DiscordConfig struct {
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
	GuildID      string `koanf:"guild_id"`
	RedirectURL  string `koanf:"redirect_url"`
	APIBase      string `koanf:"api_base"`

	// GuildWebhooks maps an in-game guild name to its Discord webhook URL.
	GuildWebhooks map[string]string `koanf:"-"`
}

func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

func defaultConfig() Config {
	return Config{
		AppEnv: "development",
		Port:   "3456",
		Session: SessionConfig{
			TTL: 7 * 24 * time.Hour,
		},
		HTTP: HTTPConfig{
			CORSOrigins:     []string{"http://localhost:5173", "http://127.0.0.1:5173"},
			RateLimitMax:    100,
			RateLimitWindow: 15 * time.Minute,
		},
		Roster: RosterConfig{
			MemberCacheTTL:   constants.MemberCacheTTL,
			FetchPageSize:    constants.DefaultPageSize,
			FetchConcurrency: 4,
		},
		Store: StoreConfig{
			Backend:    BackendAppwrite,
			SQLitePath: "vodtracker.db",
		},
		Redis: RedisConfig{
			Port: "6379",
		},
		Discord: DiscordConfig{
			APIBase: "https://discord.com/api/v10",
		},
	}
}

// envKeys maps the deployment's environment variable names onto koanf paths.
var envKeys = map[string]string{
	"app_env":                                "app_env",
	"port":                                   "port",
	"jwt_secret":                             "session.secret",
	"session_ttl":                            "session.ttl",
	"cookie_domain":                          "session.cookie_domain",
	"cookie_secure":                          "session.cookie_secure",
	"cors_origins":                           "http.cors_origins",
	"rate_limit_max":                         "http.rate_limit_max",
	"rate_limit_window":                      "http.rate_limit_window",
	"member_cache_ttl":                       "roster.member_cache_ttl",
	"fetch_page_size":                        "roster.fetch_page_size",
	"fetch_concurrency":                      "roster.fetch_concurrency",
	"statics_max_group_size":                 "roster.max_static_group_size",
	"member_cache_warm_interval":             "roster.cache_warm_interval",
	"document_backend":                       "store.backend",
	"pg_dsn":                                 "store.postgres_dsn",
	"sqlite_path":                            "store.sqlite_path",
	"appwrite_endpoint":                      "appwrite.endpoint",
	"appwrite_project_id":                    "appwrite.project_id",
	"appwrite_api_key":                       "appwrite.api_key",
	"appwrite_database_id":                   "appwrite.database_id",
	"appwrite_collection_id":                 "appwrite.members_collection_id",
	"appwrite_vod_collection_id":             "appwrite.vod_collection_id",
	"appwrite_statics_collection_id":         "appwrite.statics_collection_id",
	"appwrite_statics_preset2_collection_id": "appwrite.statics_preset2_collection_id",
	"redis_host":                             "redis.host",
	"redis_port":                             "redis.port",
	"redis_password":                         "redis.password",
	"discord_client_id":                      "discord.client_id",
	"discord_client_secret":                  "discord.client_secret",
	"discord_guild_id":                       "discord.guild_id",
	"discord_redirect_url":                   "discord.redirect_url",
	"discord_api_base":                       "discord.api_base",
}

// maxWebhookGuilds is how many DISCORD_GUILD_n_NAME / DISCORD_GUILD_n_WEBHOOK pairs are read.
const maxWebhookGuilds = 4

// Load reads .env files, then the process environment, on top of the defaults.
func Load() (*Config, error) {
	envFile := ".env"
	if os.Getenv("APP_ENV") == "development" {
		envFile = ".env.dev"
	}
	// a missing env file is fine, the environment may already be populated
	_ = godotenv.Load(envFile)

	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// cookies are only marked Secure by default outside development
	if os.Getenv("APP_ENV") == "production" {
		_ = k.Set("session.cookie_secure", true)
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.HTTP.CORSOrigins = splitList(cfg.HTTP.CORSOrigins)
	cfg.Discord.GuildWebhooks = loadGuildWebhooks(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// envTransformFunc turns JWT_SECRET into session.secret and drops variables
// that are not ours.
func envTransformFunc(key string) string {
	if path, ok := envKeys[strings.ToLower(key)]; ok {
		return path
	}
	return ""
}

func loadGuildWebhooks(getenv func(string) string) map[string]string {
	hooks := make(map[string]string)
	for i := 1; i <= maxWebhookGuilds; i++ {
		name := strings.TrimSpace(getenv(fmt.Sprintf("DISCORD_GUILD_%d_NAME", i)))
		url := strings.TrimSpace(getenv(fmt.Sprintf("DISCORD_GUILD_%d_WEBHOOK", i)))
		if name == "" || url == "" {
			continue
		}
		hooks[name] = url
	}
	return hooks
}

// splitList flattens entries that still hold comma separated values.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func (c *Config) Validate() error {
	if c.Session.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Session.TTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.Roster.FetchPageSize < 1 || c.Roster.FetchPageSize > 100 {
		return fmt.Errorf("FETCH_PAGE_SIZE must be between 1 and 100, got %d", c.Roster.FetchPageSize)
	}
	if c.Roster.FetchConcurrency < 1 {
		return fmt.Errorf("FETCH_CONCURRENCY must be at least 1, got %d", c.Roster.FetchConcurrency)
	}
	if c.Roster.MaxStaticGroupSize < 0 {
		return fmt.Errorf("STATICS_MAX_GROUP_SIZE cannot be negative, got %d", c.Roster.MaxStaticGroupSize)
	}
	if c.HTTP.RateLimitMax < 1 || c.HTTP.RateLimitWindow <= 0 {
		return errors.New("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be positive")
	}

	switch c.Store.Backend {
	case BackendAppwrite:
		a := c.Appwrite
		if a.Endpoint == "" || a.ProjectID == "" || a.DatabaseID == "" {
			return errors.New("APPWRITE_ENDPOINT, APPWRITE_PROJECT_ID and APPWRITE_DATABASE_ID are required for the appwrite backend")
		}
		if a.MembersCollectionID == "" || a.VodCollectionID == "" || a.StaticsCollectionID == "" {
			return errors.New("APPWRITE_COLLECTION_ID, APPWRITE_VOD_COLLECTION_ID and APPWRITE_STATICS_COLLECTION_ID are required")
		}
	case BackendPostgres:
		if c.Store.PostgresDSN == "" {
			return errors.New("PG_DSN is required for the postgres backend")
		}
	case BackendSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required for the sqlite backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown DOCUMENT_BACKEND %q", c.Store.Backend)
	}
	return nil
}
