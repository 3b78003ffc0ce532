package subscription

import (
	"context"
	"time"

	"github.com/naasdev/naas/internal/types"
)

// Repository defines the interface for subscription data access
type Repository interface {
	Create(ctx context.Context, subscription *Subscription) error
	Get(ctx context.Context, id string) (*Subscription, error)
	Update(ctx context.Context, subscription *Subscription) error
	List(ctx context.Context, filter *types.SubscriptionFilter) ([]*Subscription, error)
	Count(ctx context.Context, filter *types.SubscriptionFilter) (int, error)

	// ListBillableForPeriod returns every ACTIVE or SUSPENDED subscription
	// whose [start, end] range overlaps the period
	ListBillableForPeriod(ctx context.Context, period types.BillingPeriod) ([]*Subscription, error)

	// ListDeliverableOn returns the ACTIVE subscriptions that started on or
	// before day and have not ended before it, oldest first
	ListDeliverableOn(ctx context.Context, day time.Time) ([]*Subscription, error)

	// ExistsNonTerminal reports whether the pair already has an ACTIVE or SUSPENDED subscription
	ExistsNonTerminal(ctx context.Context, customerID, publicationID string) (bool, error)
}
