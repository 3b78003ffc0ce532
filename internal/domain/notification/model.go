package notification

import (
	"time"

	"github.com/naasdev/naas/internal/types"
)

// Notification is a message for a user produced by a billing or lifecycle event
type Notification struct {
	ID string `db:"id" json:"id"`
	// UserID is the owner of the notification, empty when the customer has no login
	UserID string `db:"user_id" json:"user_id"`
	// CustomerID is the account the event concerns
	CustomerID string                    `db:"customer_id" json:"customer_id"`
	Type       types.NotificationType    `db:"type" json:"type"`
	Content    string                    `db:"content" json:"content"`
	Channel    types.NotificationChannel `db:"channel" json:"channel"`
	Status     types.NotificationStatus  `db:"status" json:"status"`
	SentAt     *time.Time                `db:"sent_at" json:"sent_at,omitempty"`

	types.BaseModel
}

// MarkSent records a successful delivery
func (n *Notification) MarkSent(at time.Time) error {
	status, err := n.Status.TransitionTo(types.NotificationStatusSent)
	if err != nil {
		return err
	}
	n.Status = status
	n.SentAt = &at
	return nil
}

// MarkFailed records a failed delivery
func (n *Notification) MarkFailed() error {
	status, err := n.Status.TransitionTo(types.NotificationStatusFailed)
	if err != nil {
		return err
	}
	n.Status = status
	return nil
}

// MarkRead records that the owner has seen the notification. Reading twice is a no-op.
func (n *Notification) MarkRead() error {
	if n.Status == types.NotificationStatusRead {
		return nil
	}
	status, err := n.Status.TransitionTo(types.NotificationStatusRead)
	if err != nil {
		return err
	}
	n.Status = status
	return nil
}
