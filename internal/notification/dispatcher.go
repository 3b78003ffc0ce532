package notification

import (
	"context"

	"github.com/naasdev/naas/internal/clock"
	"github.com/naasdev/naas/internal/domain/customer"
	domain "github.com/naasdev/naas/internal/domain/notification"
	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/logger"
	"github.com/naasdev/naas/internal/metrics"
	"github.com/naasdev/naas/internal/types"
)

// Dispatcher delivers stored notifications and records the outcome
type Dispatcher struct {
	notificationRepo domain.Repository
	customerRepo     customer.Repository
	senders          *Senders
	clock            clock.Clock
	metrics          *metrics.Collector
	logger           *logger.Logger
}

func NewDispatcher(
	notificationRepo domain.Repository,
	customerRepo customer.Repository,
	senders *Senders,
	clk clock.Clock,
	m *metrics.Collector,
	logger *logger.Logger,
) *Dispatcher {
	return &Dispatcher{
		notificationRepo: notificationRepo,
		customerRepo:     customerRepo,
		senders:          senders,
		clock:            clk,
		metrics:          m,
		logger:           logger,
	}
}

// Deliver sends a PENDING notification and marks it SENT or FAILED.
// Anything not PENDING is left alone, so redelivered messages are harmless.
// A send failure is recorded on the notification and not returned; only
// storage errors are returned.
func (d *Dispatcher) Deliver(ctx context.Context, id string) (types.NotificationStatus, error) {
	n, err := d.notificationRepo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if n.Status != types.NotificationStatusPending {
		d.logger.Debugw("skipping notification that is not pending",
			"notification_id", id,
			"status", n.Status,
		)
		return n.Status, nil
	}

	var c *customer.Customer
	if n.CustomerID != "" {
		c, err = d.customerRepo.Get(ctx, n.CustomerID)
		if err != nil && !ierr.IsNotFound(err) {
			return "", err
		}
	}

	sendErr := d.senders.For(n.Channel).Send(ctx, n, c)
	if sendErr != nil {
		d.logger.Warnw("notification delivery failed",
			"notification_id", id,
			"channel", n.Channel,
			"error", sendErr,
		)
		err = n.MarkFailed()
	} else {
		err = n.MarkSent(d.clock.Now())
	}
	if err != nil {
		return "", err
	}

	n.Touch(ctx)
	if err := d.notificationRepo.Update(ctx, n); err != nil {
		return "", err
	}

	if d.metrics != nil {
		d.metrics.NotificationsDelivered.WithLabelValues(string(n.Type), string(n.Status)).Inc()
	}
	return n.Status, nil
}
