package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/maintenance-service/internal/config"
)

// WebhookChannel posts messages as JSON to the configured webhook endpoint,
// which relays them to the actual messaging destination.
type WebhookChannel struct {
	url     string
	maxLen  int
	client  *http.Client
	logger  *zap.Logger
}

// NewWebhookChannel builds a channel from configuration.
func NewWebhookChannel(cfg config.NotificationConfig, logger *zap.Logger) *WebhookChannel {
	maxLen := cfg.MaxMessageLength
	if maxLen <= 0 {
		maxLen = 4096
	}
	return &WebhookChannel{
		url:    cfg.WebhookURL,
		maxLen: maxLen,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

type webhookPayload struct {
	Destination string  `json:"destination"`
	Text        string  `json:"text"`
	Action      *Action `json:"action,omitempty"`
}

// Send delivers one message. Failures are returned for the dispatcher to log;
// they are never retried here.
func (c *WebhookChannel) Send(ctx context.Context, destination, text string, action *Action) error {
	if c.url == "" {
		c.logger.Debug("webhook url not configured, dropping notification",
			zap.String("destination", destination))
		return nil
	}

	body, err := json.Marshal(webhookPayload{Destination: destination, Text: text, Action: action})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook status %d", resp.StatusCode)
	}
	return nil
}

// MaxTextLength returns the per-message limit.
func (c *WebhookChannel) MaxTextLength() int {
	return c.maxLen
}
