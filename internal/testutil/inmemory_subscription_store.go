package testutil

import (
	"context"
	"time"

	"github.com/naasdev/naas/internal/domain/subscription"
	"github.com/naasdev/naas/internal/types"
	"github.com/samber/lo"
)

// InMemorySubscriptionStore implements subscription.Repository
type InMemorySubscriptionStore struct {
	*InMemoryStore[*subscription.Subscription]
}

func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		InMemoryStore: NewInMemoryStore[*subscription.Subscription](),
	}
}

func copySubscription(sub *subscription.Subscription) *subscription.Subscription {
	if sub == nil {
		return nil
	}
	cp := *sub
	cp.EndDate = clonePtr(sub.EndDate)
	cp.SuspensionStartDate = clonePtr(sub.SuspensionStartDate)
	cp.SuspensionEndDate = clonePtr(sub.SuspensionEndDate)
	cp.ModificationDate = clonePtr(sub.ModificationDate)
	cp.CancellationDate = clonePtr(sub.CancellationDate)
	return &cp
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, sub *subscription.Subscription) error {
	return s.InMemoryStore.Create(ctx, sub.ID, copySubscription(sub))
}

func (s *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return copySubscription(sub), nil
}

func (s *InMemorySubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) error {
	return s.InMemoryStore.Update(ctx, sub.ID, copySubscription(sub))
}

func (s *InMemorySubscriptionStore) List(ctx context.Context, filter *types.SubscriptionFilter) ([]*subscription.Subscription, error) {
	var page types.BaseFilter
	if filter != nil {
		page = paginated(filter.QueryFilter)
	}
	items, err := s.InMemoryStore.List(ctx, page, subscriptionFilterFn(filter), subscriptionSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(sub *subscription.Subscription, _ int) *subscription.Subscription {
		return copySubscription(sub)
	}), nil
}

func (s *InMemorySubscriptionStore) Count(ctx context.Context, filter *types.SubscriptionFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, nil, subscriptionFilterFn(filter))
}

func (s *InMemorySubscriptionStore) ListBillableForPeriod(ctx context.Context, period types.BillingPeriod) ([]*subscription.Subscription, error) {
	items, err := s.InMemoryStore.List(ctx, nil, func(_ context.Context, sub *subscription.Subscription, _ interface{}) bool {
		if !lo.Contains(types.BillableSubscriptionStatuses, sub.Status) {
			return false
		}
		if sub.StartDate.After(period.End) {
			return false
		}
		return sub.EndDate == nil || !sub.EndDate.Before(period.Start)
	}, func(i, j *subscription.Subscription) bool {
		if i.CustomerID != j.CustomerID {
			return i.CustomerID < j.CustomerID
		}
		return i.CreatedAt.Before(j.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(sub *subscription.Subscription, _ int) *subscription.Subscription {
		return copySubscription(sub)
	}), nil
}

func (s *InMemorySubscriptionStore) ListDeliverableOn(ctx context.Context, day time.Time) ([]*subscription.Subscription, error) {
	day = types.DateOf(day)
	items, err := s.InMemoryStore.List(ctx, nil, func(_ context.Context, sub *subscription.Subscription, _ interface{}) bool {
		if sub.Status != types.SubscriptionStatusActive || sub.StartDate.After(day) {
			return false
		}
		return sub.EndDate == nil || !sub.EndDate.Before(day)
	}, func(i, j *subscription.Subscription) bool {
		if i.CreatedAt.Equal(j.CreatedAt) {
			return i.ID < j.ID
		}
		return i.CreatedAt.Before(j.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(sub *subscription.Subscription, _ int) *subscription.Subscription {
		return copySubscription(sub)
	}), nil
}

func (s *InMemorySubscriptionStore) ExistsNonTerminal(ctx context.Context, customerID, publicationID string) (bool, error) {
	n, err := s.InMemoryStore.Count(ctx, nil, func(_ context.Context, sub *subscription.Subscription, _ interface{}) bool {
		return sub.CustomerID == customerID &&
			sub.PublicationID == publicationID &&
			!sub.Status.IsTerminal()
	})
	return n > 0, err
}

func subscriptionFilterFn(f *types.SubscriptionFilter) FilterFunc[*subscription.Subscription] {
	return func(_ context.Context, sub *subscription.Subscription, _ interface{}) bool {
		if f == nil {
			return true
		}
		if f.CustomerID != "" && sub.CustomerID != f.CustomerID {
			return false
		}
		if f.PublicationID != "" && sub.PublicationID != f.PublicationID {
			return false
		}
		if len(f.Statuses) > 0 && !lo.Contains(f.Statuses, sub.Status) {
			return false
		}
		return true
	}
}

func subscriptionSortFn(i, j *subscription.Subscription) bool {
	if i.CreatedAt.Equal(j.CreatedAt) {
		return i.ID < j.ID
	}
	return i.CreatedAt.After(j.CreatedAt)
}
