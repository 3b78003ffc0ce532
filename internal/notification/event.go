package notification

import (
	"time"

	"github.com/naasdev/naas/internal/types"
)

// EventNameCreated is set as the event_name metadata of every published message
const EventNameCreated = "notification.created"

// Event is the message payload announcing a stored notification
type Event struct {
	NotificationID string                    `json:"notification_id"`
	CustomerID     string                    `json:"customer_id"`
	UserID         string                    `json:"user_id"`
	Type           types.NotificationType    `json:"type"`
	Channel        types.NotificationChannel `json:"channel"`
	CreatedAt      time.Time                 `json:"created_at"`
}
