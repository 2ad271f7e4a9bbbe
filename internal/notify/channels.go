package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/smtp"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Recipients carries the delivery targets resolved for an event, split by
// transport: email addresses for mail channels, endpoint URLs for webhooks.
type Recipients struct {
	Emails      []string
	WebhookURLs []string
}

// Channel is one delivery transport. Channels fail independently: a disabled
// or erroring channel never affects another channel or the caller.
type Channel interface {
	Kind() domain.NotificationChannel
	Enabled() bool
	// Targets picks this channel's delivery targets out of the resolved
	// recipients.
	Targets(recipients Recipients) []string
	Send(ctx context.Context, target, subject, body string) error
}

// EmailChannel delivers through plain SMTP.
type EmailChannel struct {
	cfg config.NotificationConfig
}

// NewEmailChannel builds the channel from notification settings.
func NewEmailChannel(cfg config.NotificationConfig) *EmailChannel {
	return &EmailChannel{cfg: cfg}
}

func (c *EmailChannel) Kind() domain.NotificationChannel { return domain.ChannelEmail }

func (c *EmailChannel) Enabled() bool {
	return c.cfg.EmailEnabled && c.cfg.SMTPAddr != "" && c.cfg.EmailFrom != ""
}

func (c *EmailChannel) Targets(recipients Recipients) []string { return recipients.Emails }

func (c *EmailChannel) Send(ctx context.Context, target, subject, body string) error {
	if target == "" {
		return errors.New("empty recipient")
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		c.cfg.EmailFrom, target, subject, body)

	var auth smtp.Auth
	if c.cfg.SMTPUsername != "" {
		host := c.cfg.SMTPAddr
		if idx := strings.IndexByte(host, ':'); idx >= 0 {
			host = host[:idx]
		}
		auth = smtp.PlainAuth("", c.cfg.SMTPUsername, c.cfg.SMTPPassword, host)
	}

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(c.cfg.SMTPAddr, auth, c.cfg.EmailFrom, []string{target}, []byte(msg))
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WebhookChannel posts event payloads to a configured HTTP endpoint.
type WebhookChannel struct {
	cfg    config.NotificationConfig
	client *http.Client
}

// NewWebhookChannel builds the channel from notification settings.
func NewWebhookChannel(cfg config.NotificationConfig) *WebhookChannel {
	return &WebhookChannel{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.AttemptTimeout},
	}
}

func (c *WebhookChannel) Kind() domain.NotificationChannel { return domain.ChannelWebhook }

func (c *WebhookChannel) Enabled() bool {
	return c.cfg.WebhookEnabled
}

// Targets posts to each team-level webhook plus the service-wide endpoint
// when one is configured, deduplicated.
func (c *WebhookChannel) Targets(recipients Recipients) []string {
	targets := make([]string, 0, len(recipients.WebhookURLs)+1)
	seen := make(map[string]struct{}, len(recipients.WebhookURLs)+1)
	add := func(url string) {
		if url == "" {
			return
		}
		if _, dup := seen[url]; dup {
			return
		}
		seen[url] = struct{}{}
		targets = append(targets, url)
	}
	for _, url := range recipients.WebhookURLs {
		add(url)
	}
	add(c.cfg.WebhookURL)
	return targets
}

func (c *WebhookChannel) Send(ctx context.Context, target, subject, body string) error {
	payload, err := json.Marshal(map[string]string{
		"subject": subject,
		"body":    body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
