package notification

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/naasdev/naas/internal/config"
	domain "github.com/naasdev/naas/internal/domain/notification"
	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/logger"
	"github.com/naasdev/naas/internal/pubsub"
	"github.com/naasdev/naas/internal/types"
)

// Publisher announces stored notifications to the delivery consumer
type Publisher interface {
	Publish(ctx context.Context, n *domain.Notification) error
	Close() error
}

type publisher struct {
	pubSub pubsub.PubSub
	topic  string
	logger *logger.Logger
}

func NewPublisher(pubSub pubsub.PubSub, cfg *config.Configuration, logger *logger.Logger) Publisher {
	return &publisher{
		pubSub: pubSub,
		topic:  cfg.Notification.Topic,
		logger: logger,
	}
}

func (p *publisher) Publish(ctx context.Context, n *domain.Notification) error {
	payload, err := json.Marshal(Event{
		NotificationID: n.ID,
		CustomerID:     n.CustomerID,
		UserID:         n.UserID,
		Type:           n.Type,
		Channel:        n.Channel,
		CreatedAt:      n.CreatedAt,
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode notification event").
			Mark(ierr.ErrSystem)
	}

	// the notification id doubles as the message id so redeliveries dedupe
	msg := message.NewMessage(n.ID, payload)
	msg.Metadata.Set("event_name", EventNameCreated)
	msg.Metadata.Set("request_id", types.GetRequestID(ctx))

	if err := p.pubSub.Publish(ctx, p.topic, msg); err != nil {
		p.logger.Errorw("failed to publish notification event",
			"error", err,
			"notification_id", n.ID,
			"topic", p.topic,
		)
		return ierr.WithError(err).
			WithHint("Failed to publish notification").
			Mark(ierr.ErrSystem)
	}

	p.logger.Debugw("published notification event",
		"notification_id", n.ID,
		"type", n.Type,
		"topic", p.topic,
	)
	return nil
}

func (p *publisher) Close() error {
	return p.pubSub.Close()
}
