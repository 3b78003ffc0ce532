package email

import (
	"context"

	"github.com/naasdev/naas/internal/config"
	"github.com/naasdev/naas/internal/logger"
	"github.com/naasdev/naas/internal/validator"
)

// Email sends transactional mail through the configured provider
type Email struct {
	client *EmailClient
	logger *logger.Logger
}

// NewEmail builds the email service from configuration
func NewEmail(cfg *config.Configuration, logger *logger.Logger) *Email {
	return &Email{
		client: NewEmailClient(Config{
			Enabled:     cfg.Email.Enabled,
			APIKey:      cfg.Email.APIKey,
			FromAddress: cfg.Email.FromAddress,
			ReplyTo:     cfg.Email.ReplyTo,
		}),
		logger: logger,
	}
}

// IsEnabled reports whether mail can be sent
func (s *Email) IsEnabled() bool {
	return s.client.IsEnabled()
}

// SendEmail sends a plain text email. The default from address is used
// when the request does not carry one.
func (s *Email) SendEmail(ctx context.Context, req SendEmailRequest) (*SendEmailResponse, error) {
	if err := validator.ValidateRequest(req); err != nil {
		return nil, err
	}

	fromAddress := req.FromAddress
	if fromAddress == "" {
		fromAddress = s.client.GetFromAddress()
	}

	messageID, err := s.client.SendEmail(ctx, fromAddress, req.ToAddress, req.Subject, req.Text)
	if err != nil {
		s.logger.Errorw("failed to send email",
			"error", err,
			"to", req.ToAddress,
			"subject", req.Subject,
		)
		return &SendEmailResponse{Success: false, Error: err.Error()}, err
	}

	s.logger.Infow("email sent",
		"message_id", messageID,
		"to", req.ToAddress,
		"subject", req.Subject,
	)

	return &SendEmailResponse{MessageID: messageID, Success: true}, nil
}
