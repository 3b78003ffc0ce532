package email

import (
	"context"

	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/resend/resend-go/v2"
)

// EmailClient wraps the resend client with the configured sender identity
type EmailClient struct {
	client      *resend.Client
	enabled     bool
	fromAddress string
	replyTo     string
}

// Config holds the email client configuration
type Config struct {
	Enabled     bool
	APIKey      string
	FromAddress string
	ReplyTo     string
}

// NewEmailClient creates a new email client. Without an API key the client is disabled.
func NewEmailClient(cfg Config) *EmailClient {
	if !cfg.Enabled || cfg.APIKey == "" {
		return &EmailClient{enabled: false}
	}

	return &EmailClient{
		client:      resend.NewClient(cfg.APIKey),
		enabled:     true,
		fromAddress: cfg.FromAddress,
		replyTo:     cfg.ReplyTo,
	}
}

// IsEnabled returns whether the email client is enabled
func (c *EmailClient) IsEnabled() bool {
	return c.enabled
}

// GetFromAddress returns the default from address
func (c *EmailClient) GetFromAddress() string {
	return c.fromAddress
}

// SendEmail sends a plain text email and returns the provider message id
func (c *EmailClient) SendEmail(ctx context.Context, from, to, subject, textContent string) (string, error) {
	if !c.enabled {
		return "", ierr.NewError("email client is disabled").
			WithHint("Email delivery is not configured").
			Mark(ierr.ErrInvalidOperation)
	}

	params := &resend.SendEmailRequest{
		From:    from,
		To:      []string{to},
		Subject: subject,
		Text:    textContent,
	}
	if c.replyTo != "" {
		params.ReplyTo = c.replyTo
	}

	sent, err := c.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to send email").
			Mark(ierr.ErrSystem)
	}

	return sent.Id, nil
}
