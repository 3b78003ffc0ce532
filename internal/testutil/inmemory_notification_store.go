package testutil

import (
	"context"

	"github.com/naasdev/naas/internal/domain/notification"
	"github.com/naasdev/naas/internal/types"
	"github.com/samber/lo"
)

// InMemoryNotificationStore implements notification.Repository
type InMemoryNotificationStore struct {
	*InMemoryStore[*notification.Notification]
}

func NewInMemoryNotificationStore() *InMemoryNotificationStore {
	return &InMemoryNotificationStore{
		InMemoryStore: NewInMemoryStore[*notification.Notification](),
	}
}

func copyNotification(n *notification.Notification) *notification.Notification {
	if n == nil {
		return nil
	}
	cp := *n
	cp.SentAt = clonePtr(n.SentAt)
	return &cp
}

func (s *InMemoryNotificationStore) Create(ctx context.Context, n *notification.Notification) error {
	return s.InMemoryStore.Create(ctx, n.ID, copyNotification(n))
}

func (s *InMemoryNotificationStore) Get(ctx context.Context, id string) (*notification.Notification, error) {
	n, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return copyNotification(n), nil
}

func (s *InMemoryNotificationStore) Update(ctx context.Context, n *notification.Notification) error {
	return s.InMemoryStore.Update(ctx, n.ID, copyNotification(n))
}

func (s *InMemoryNotificationStore) List(ctx context.Context, filter *types.NotificationFilter) ([]*notification.Notification, error) {
	var page types.BaseFilter
	if filter != nil {
		page = paginated(filter.QueryFilter)
	}
	items, err := s.InMemoryStore.List(ctx, page, notificationFilterFn(filter), func(i, j *notification.Notification) bool {
		if i.CreatedAt.Equal(j.CreatedAt) {
			return i.ID < j.ID
		}
		return i.CreatedAt.After(j.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(n *notification.Notification, _ int) *notification.Notification {
		return copyNotification(n)
	}), nil
}

func (s *InMemoryNotificationStore) Count(ctx context.Context, filter *types.NotificationFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, nil, notificationFilterFn(filter))
}

func notificationFilterFn(f *types.NotificationFilter) FilterFunc[*notification.Notification] {
	return func(_ context.Context, n *notification.Notification, _ interface{}) bool {
		if f == nil {
			return true
		}
		if f.UserID != "" && n.UserID != f.UserID {
			return false
		}
		if f.CustomerID != "" && n.CustomerID != f.CustomerID {
			return false
		}
		if len(f.Statuses) > 0 && !lo.Contains(f.Statuses, n.Status) {
			return false
		}
		if len(f.Types) > 0 && !lo.Contains(f.Types, n.Type) {
			return false
		}
		return true
	}
}
