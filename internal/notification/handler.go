package notification

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/naasdev/naas/internal/config"
	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/logger"
	"github.com/naasdev/naas/internal/pubsub"
	pubsubRouter "github.com/naasdev/naas/internal/pubsub/router"
	"github.com/naasdev/naas/internal/sentry"
	"github.com/naasdev/naas/internal/types"
)

// Handler consumes notification events and delivers them
type Handler interface {
	RegisterHandler(router *pubsubRouter.Router)
}

type handler struct {
	pubSub     pubsub.PubSub
	topic      string
	dispatcher *Dispatcher
	sentry     *sentry.Service
	logger     *logger.Logger
}

func NewHandler(
	pubSub pubsub.PubSub,
	cfg *config.Configuration,
	dispatcher *Dispatcher,
	sentry *sentry.Service,
	logger *logger.Logger,
) Handler {
	return &handler{
		pubSub:     pubSub,
		topic:      cfg.Notification.Topic,
		dispatcher: dispatcher,
		sentry:     sentry,
		logger:     logger,
	}
}

func (h *handler) RegisterHandler(router *pubsubRouter.Router) {
	router.AddNoPublishHandler(
		"notification_delivery_handler",
		h.topic,
		h.pubSub,
		h.processMessage,
	)
}

func (h *handler) processMessage(msg *message.Message) error {
	var event Event
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		h.logger.Errorw("failed to unmarshal notification event",
			"error", err,
			"message_uuid", msg.UUID,
		)
		// malformed payloads never succeed
		return nil
	}

	ctx := types.NewSystemContext(msg.Context())
	if requestID := msg.Metadata.Get("request_id"); requestID != "" {
		ctx = types.SetRequestID(ctx, requestID)
	}

	span, ctx := h.sentry.StartConsumerSpan(ctx, h.topic)
	if span != nil {
		defer span.Finish()
	}

	status, err := h.dispatcher.Deliver(ctx, event.NotificationID)
	if err != nil {
		if ierr.IsNotFound(err) {
			h.logger.Warnw("notification for event not found",
				"notification_id", event.NotificationID,
				"message_uuid", msg.UUID,
			)
			return nil
		}
		return err
	}

	h.logger.Debugw("processed notification event",
		"notification_id", event.NotificationID,
		"status", status,
		"message_uuid", msg.UUID,
	)
	return nil
}
