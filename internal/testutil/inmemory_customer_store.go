package testutil

import (
	"context"

	"github.com/naasdev/naas/internal/domain/customer"
	"github.com/naasdev/naas/internal/types"
	"github.com/samber/lo"
)

// InMemoryCustomerStore implements customer.Repository
type InMemoryCustomerStore struct {
	*InMemoryStore[*customer.Customer]
}

func NewInMemoryCustomerStore() *InMemoryCustomerStore {
	return &InMemoryCustomerStore{
		InMemoryStore: NewInMemoryStore[*customer.Customer](),
	}
}

func copyCustomer(c *customer.Customer) *customer.Customer {
	if c == nil {
		return nil
	}
	cp := *c
	if c.DueSince != nil {
		dueSince := *c.DueSince
		cp.DueSince = &dueSince
	}
	return &cp
}

func (s *InMemoryCustomerStore) Create(ctx context.Context, c *customer.Customer) error {
	return s.InMemoryStore.Create(ctx, c.ID, copyCustomer(c))
}

func (s *InMemoryCustomerStore) Get(ctx context.Context, id string) (*customer.Customer, error) {
	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return copyCustomer(c), nil
}

func (s *InMemoryCustomerStore) GetForUpdate(ctx context.Context, id string) (*customer.Customer, error) {
	return s.Get(ctx, id)
}

func (s *InMemoryCustomerStore) List(ctx context.Context, filter *types.CustomerFilter) ([]*customer.Customer, error) {
	var page types.BaseFilter
	if filter != nil {
		page = paginated(filter.QueryFilter)
	}
	items, err := s.InMemoryStore.List(ctx, page, customerFilterFn(filter), customerSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(c *customer.Customer, _ int) *customer.Customer {
		return copyCustomer(c)
	}), nil
}

func (s *InMemoryCustomerStore) Count(ctx context.Context, filter *types.CustomerFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, nil, customerFilterFn(filter))
}

func (s *InMemoryCustomerStore) Update(ctx context.Context, c *customer.Customer) error {
	return s.InMemoryStore.Update(ctx, c.ID, copyCustomer(c))
}

func customerFilterFn(f *types.CustomerFilter) FilterFunc[*customer.Customer] {
	return func(_ context.Context, c *customer.Customer, _ interface{}) bool {
		if f == nil {
			return true
		}
		if len(f.Statuses) > 0 && !lo.Contains(f.Statuses, c.Status) {
			return false
		}
		if len(f.CustomerIDs) > 0 && !lo.Contains(f.CustomerIDs, c.ID) {
			return false
		}
		if f.UserID != "" && c.UserID != f.UserID {
			return false
		}
		return true
	}
}

func customerSortFn(i, j *customer.Customer) bool {
	if i.CreatedAt.Equal(j.CreatedAt) {
		return i.ID < j.ID
	}
	return i.CreatedAt.After(j.CreatedAt)
}
