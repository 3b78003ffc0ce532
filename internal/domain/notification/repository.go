package notification

import (
	"context"

	"github.com/naasdev/naas/internal/types"
)

// Repository defines the interface for notification data access
type Repository interface {
	Create(ctx context.Context, notification *Notification) error
	Get(ctx context.Context, id string) (*Notification, error)
	Update(ctx context.Context, notification *Notification) error
	List(ctx context.Context, filter *types.NotificationFilter) ([]*Notification, error)
	Count(ctx context.Context, filter *types.NotificationFilter) (int, error)
}
