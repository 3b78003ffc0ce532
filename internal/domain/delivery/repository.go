package delivery

import (
	"context"
	"time"

	"github.com/naasdev/naas/internal/types"
)

// PersonnelRepository defines the interface for delivery personnel data access
type PersonnelRepository interface {
	Create(ctx context.Context, personnel *Personnel) error
	Get(ctx context.Context, id string) (*Personnel, error)
	List(ctx context.Context, filter *types.DeliveryPersonnelFilter) ([]*Personnel, error)
	Count(ctx context.Context, filter *types.DeliveryPersonnelFilter) (int, error)
	Update(ctx context.Context, personnel *Personnel) error
}

// ScheduleRepository defines the interface for delivery schedule data access
type ScheduleRepository interface {
	// Create fails with an already exists error when the subscription is
	// already scheduled for that date
	Create(ctx context.Context, schedule *Schedule) error
	Get(ctx context.Context, id string) (*Schedule, error)
	Update(ctx context.Context, schedule *Schedule) error
	// List orders by date, oldest first
	List(ctx context.Context, filter *types.DeliveryScheduleFilter) ([]*Schedule, error)
	Count(ctx context.Context, filter *types.DeliveryScheduleFilter) (int, error)

	// ScheduledSubscriptions returns the subscription IDs already scheduled on day
	ScheduledSubscriptions(ctx context.Context, day time.Time) ([]string, error)
}
