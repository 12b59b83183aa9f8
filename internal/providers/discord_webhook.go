package providers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/goccy/go-json"
)

// WebhookClient posts messages to Discord webhook URLs.
type WebhookClient struct {
	client *http.Client
}

func NewWebhookClient(timeout time.Duration) *WebhookClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookClient{client: &http.Client{Timeout: timeout}}
}

func (c *WebhookClient) WithHTTPClient(client *http.Client) *WebhookClient {
	c.client = client
	return c
}

// Send executes the webhook. Discord answers 204 when wait is not requested.
func (c *WebhookClient) Send(ctx context.Context, webhookURL string, params *discordgo.WebhookParams) error {
	payload, err := json.Marshal(params)
	if err != nil {
		return &ProviderError{Code: ErrCodeBadResponse, Message: "Failed to marshal webhook payload", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(payload))
	if err != nil {
		return &ProviderError{Code: ErrCodeNetworkError, Message: "Failed to create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &ProviderError{Code: ErrCodeNetworkError, Message: "Webhook request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return buildHTTPError(resp.StatusCode, "webhook", string(body))
	}
	return nil
}
