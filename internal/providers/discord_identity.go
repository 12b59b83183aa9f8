package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
	"wohee/vodtracker/internal/access"
	"wohee/vodtracker/internal/logging"
)

// DiscordIdentityConfig holds the OAuth application and the guild whose
// roles are read.
type DiscordIdentityConfig struct {
	ClientID     string
	ClientSecret string
	GuildID      string
	RedirectURL  string
	APIBase      string
	Timeout      time.Duration
}

// DiscordIdentityProvider turns an authorization code into the user's id,
// username and guild roles.
type DiscordIdentityProvider struct {
	oauth   oauth2.Config
	apiBase string
	guildID string
	client  *http.Client
}

func NewDiscordIdentityProvider(cfg DiscordIdentityConfig) *DiscordIdentityProvider {
	base := strings.TrimRight(cfg.APIBase, "/")
	if base == "" {
		base = "https://discord.com/api/v10"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &DiscordIdentityProvider{
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"identify", "guilds.members.read"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   base + "/oauth2/authorize",
				TokenURL:  base + "/oauth2/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		apiBase: base,
		guildID: cfg.GuildID,
		client:  &http.Client{Timeout: timeout},
	}
}

// WithHTTPClient replaces the client used for the token exchange and API calls.
func (p *DiscordIdentityProvider) WithHTTPClient(c *http.Client) *DiscordIdentityProvider {
	p.client = c
	return p
}

// AuthCodeURL returns the consent page the login button points at.
func (p *DiscordIdentityProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "none"))
}

// Identify exchanges code and reads the user and their guild member record.
// redirectURL overrides the configured one when set; Discord requires it to
// match the URL used to obtain the code.
func (p *DiscordIdentityProvider) Identify(ctx context.Context, code, redirectURL string) (*access.User, error) {
	conf := p.oauth
	if redirectURL != "" {
		conf.RedirectURL = redirectURL
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)
	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, &ProviderError{
			Code:    ErrCodeTokenExchange,
			Message: "Token exchange failed",
			Err:     err,
		}
	}

	client := conf.Client(ctx, token)

	var user discordgo.User
	if err := p.doGET(ctx, client, "/users/@me", &user); err != nil {
		return nil, err
	}

	var member discordgo.Member
	if err := p.doGET(ctx, client, fmt.Sprintf("/users/@me/guilds/%s/member", p.guildID), &member); err != nil {
		return nil, err
	}

	roles := member.Roles
	if roles == nil {
		roles = []string{}
	}

	logging.Debug("discord identity resolved", "user_id", user.ID, "roles", len(roles))
	return &access.User{ID: user.ID, Username: user.Username, Roles: roles}, nil
}

func (p *DiscordIdentityProvider) doGET(ctx context.Context, client *http.Client, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBase+endpoint, nil)
	if err != nil {
		return &ProviderError{Code: ErrCodeNetworkError, Message: "Failed to create request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return &ProviderError{Code: ErrCodeNetworkError, Message: "Discord request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ProviderError{Code: ErrCodeNetworkError, Message: "Failed to read response body", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return buildHTTPError(resp.StatusCode, endpoint, string(body))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return &ProviderError{
			Code:    ErrCodeBadResponse,
			Message: "Failed to decode response",
			Status:  resp.StatusCode,
			Details: string(body),
			Err:     err,
		}
	}
	return nil
}
