package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/naasdev/naas/internal/domain/customer"
	domain "github.com/naasdev/naas/internal/domain/notification"
	"github.com/naasdev/naas/internal/email"
	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/logger"
	"github.com/naasdev/naas/internal/types"
)

// Sender delivers one notification over a single channel. The customer is
// nil when the notification is not linked to one.
type Sender interface {
	Send(ctx context.Context, n *domain.Notification, c *customer.Customer) error
}

// logSender records the notification in the log only. It backs every
// channel without a real transport.
type logSender struct {
	logger *logger.Logger
}

func NewLogSender(logger *logger.Logger) Sender {
	return &logSender{logger: logger}
}

func (s *logSender) Send(ctx context.Context, n *domain.Notification, c *customer.Customer) error {
	s.logger.Infow("notification delivered",
		"notification_id", n.ID,
		"type", n.Type,
		"channel", n.Channel,
		"customer_id", n.CustomerID,
		"user_id", n.UserID,
	)
	return nil
}

type emailSender struct {
	email *email.Email
}

func NewEmailSender(e *email.Email) Sender {
	return &emailSender{email: e}
}

func (s *emailSender) Send(ctx context.Context, n *domain.Notification, c *customer.Customer) error {
	if c == nil || c.Email == "" {
		return ierr.NewError("no email address for notification").
			WithHint("Customer has no email address").
			WithReportableDetails(map[string]any{
				"notification_id": n.ID,
				"customer_id":     n.CustomerID,
			}).
			Mark(ierr.ErrValidation)
	}

	_, err := s.email.SendEmail(ctx, email.SendEmailRequest{
		ToAddress: c.Email,
		Subject:   Subject(n.Type),
		Text:      fmt.Sprintf("Dear %s,\n\n%s", c.Name, n.Content),
	})
	return err
}

// Subject returns the email subject line for a notification type
func Subject(t types.NotificationType) string {
	switch t {
	case types.NotificationTypePaymentReminder:
		return "Payment reminder"
	case types.NotificationTypePaymentConfirmation:
		return "Payment received"
	case types.NotificationTypeSubscriptionConfirmation:
		return "Subscription confirmed"
	case types.NotificationTypeSubscriptionModification:
		return "Subscription updated"
	case types.NotificationTypeDeliveryUpdate:
		return "Delivery update"
	}
	return strings.ToLower(strings.ReplaceAll(string(t), "_", " "))
}

// Senders routes notifications to the sender registered for their channel
type Senders struct {
	byChannel map[types.NotificationChannel]Sender
	fallback  Sender
}

// NewSenders uses resend for EMAIL when it is configured and the log
// sender for everything else
func NewSenders(e *email.Email, logger *logger.Logger) *Senders {
	s := &Senders{
		byChannel: make(map[types.NotificationChannel]Sender),
		fallback:  NewLogSender(logger),
	}
	if e != nil && e.IsEnabled() {
		s.byChannel[types.NotificationChannelEmail] = NewEmailSender(e)
	}
	return s
}

// Register overrides the sender for a channel
func (s *Senders) Register(channel types.NotificationChannel, sender Sender) {
	s.byChannel[channel] = sender
}

// For returns the sender for the channel
func (s *Senders) For(channel types.NotificationChannel) Sender {
	if sender, ok := s.byChannel[channel]; ok {
		return sender
	}
	return s.fallback
}
