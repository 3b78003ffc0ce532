package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/naasdev/naas/internal/domain/delivery"
	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/types"
	"github.com/samber/lo"
)

// InMemoryPersonnelStore implements delivery.PersonnelRepository
type InMemoryPersonnelStore struct {
	*InMemoryStore[*delivery.Personnel]
}

func NewInMemoryPersonnelStore() *InMemoryPersonnelStore {
	return &InMemoryPersonnelStore{
		InMemoryStore: NewInMemoryStore[*delivery.Personnel](),
	}
}

func copyPersonnel(p *delivery.Personnel) *delivery.Personnel {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

func (s *InMemoryPersonnelStore) Create(ctx context.Context, p *delivery.Personnel) error {
	return s.InMemoryStore.Create(ctx, p.ID, copyPersonnel(p))
}

func (s *InMemoryPersonnelStore) Get(ctx context.Context, id string) (*delivery.Personnel, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return copyPersonnel(p), nil
}

func (s *InMemoryPersonnelStore) List(ctx context.Context, filter *types.DeliveryPersonnelFilter) ([]*delivery.Personnel, error) {
	var page types.BaseFilter
	if filter != nil {
		page = paginated(filter.QueryFilter)
	}
	items, err := s.InMemoryStore.List(ctx, page, personnelFilterFn(filter), func(i, j *delivery.Personnel) bool {
		if i.CreatedAt.Equal(j.CreatedAt) {
			return i.ID < j.ID
		}
		return i.CreatedAt.Before(j.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(p *delivery.Personnel, _ int) *delivery.Personnel {
		return copyPersonnel(p)
	}), nil
}

func (s *InMemoryPersonnelStore) Count(ctx context.Context, filter *types.DeliveryPersonnelFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, nil, personnelFilterFn(filter))
}

func (s *InMemoryPersonnelStore) Update(ctx context.Context, p *delivery.Personnel) error {
	return s.InMemoryStore.Update(ctx, p.ID, copyPersonnel(p))
}

func personnelFilterFn(f *types.DeliveryPersonnelFilter) FilterFunc[*delivery.Personnel] {
	return func(_ context.Context, p *delivery.Personnel, _ interface{}) bool {
		return f == nil || !f.ActiveOnly || p.IsActive
	}
}

// InMemoryScheduleStore implements delivery.ScheduleRepository. Like the
// delivery_schedules table it holds one row per subscription and date.
type InMemoryScheduleStore struct {
	*InMemoryStore[*delivery.Schedule]
	mu sync.Mutex
}

func NewInMemoryScheduleStore() *InMemoryScheduleStore {
	return &InMemoryScheduleStore{
		InMemoryStore: NewInMemoryStore[*delivery.Schedule](),
	}
}

func copySchedule(sch *delivery.Schedule) *delivery.Schedule {
	if sch == nil {
		return nil
	}
	cp := *sch
	cp.DeliveryTime = clonePtr(sch.DeliveryTime)
	return &cp
}

func (s *InMemoryScheduleStore) Create(ctx context.Context, sch *delivery.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := types.DateOf(sch.Date)
	clash, err := s.InMemoryStore.Count(ctx, nil, func(_ context.Context, existing *delivery.Schedule, _ interface{}) bool {
		return existing.SubscriptionID == sch.SubscriptionID && types.DateOf(existing.Date).Equal(day)
	})
	if err != nil {
		return err
	}
	if clash > 0 {
		return ierr.NewError("delivery schedule already exists").
			WithHint("The subscription is already scheduled for that date").
			WithReportableDetails(map[string]any{
				"subscription_id": sch.SubscriptionID,
				"date":            day,
			}).
			Mark(ierr.ErrAlreadyExists)
	}
	return s.InMemoryStore.Create(ctx, sch.ID, copySchedule(sch))
}

func (s *InMemoryScheduleStore) Get(ctx context.Context, id string) (*delivery.Schedule, error) {
	sch, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return copySchedule(sch), nil
}

func (s *InMemoryScheduleStore) Update(ctx context.Context, sch *delivery.Schedule) error {
	return s.InMemoryStore.Update(ctx, sch.ID, copySchedule(sch))
}

func (s *InMemoryScheduleStore) List(ctx context.Context, filter *types.DeliveryScheduleFilter) ([]*delivery.Schedule, error) {
	var page types.BaseFilter
	if filter != nil {
		page = paginated(filter.QueryFilter)
	}
	items, err := s.InMemoryStore.List(ctx, page, scheduleFilterFn(filter), func(i, j *delivery.Schedule) bool {
		if !i.Date.Equal(j.Date) {
			return i.Date.Before(j.Date)
		}
		return i.CreatedAt.Before(j.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(sch *delivery.Schedule, _ int) *delivery.Schedule {
		return copySchedule(sch)
	}), nil
}

func (s *InMemoryScheduleStore) Count(ctx context.Context, filter *types.DeliveryScheduleFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, nil, scheduleFilterFn(filter))
}

func (s *InMemoryScheduleStore) ScheduledSubscriptions(ctx context.Context, day time.Time) ([]string, error) {
	day = types.DateOf(day)
	items, err := s.InMemoryStore.List(ctx, nil, func(_ context.Context, sch *delivery.Schedule, _ interface{}) bool {
		return types.DateOf(sch.Date).Equal(day)
	}, nil)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(sch *delivery.Schedule, _ int) string {
		return sch.SubscriptionID
	}), nil
}

func scheduleFilterFn(f *types.DeliveryScheduleFilter) FilterFunc[*delivery.Schedule] {
	return func(_ context.Context, sch *delivery.Schedule, _ interface{}) bool {
		if f == nil {
			return true
		}
		if f.PersonnelID != "" && sch.PersonnelID != f.PersonnelID {
			return false
		}
		if len(f.SubscriptionIDs) > 0 && !lo.Contains(f.SubscriptionIDs, sch.SubscriptionID) {
			return false
		}
		if len(f.Statuses) > 0 && !lo.Contains(f.Statuses, sch.Status) {
			return false
		}
		if f.StartTime != nil && sch.Date.Before(types.DateOf(*f.StartTime)) {
			return false
		}
		if f.EndTime != nil && sch.Date.After(types.DateOf(*f.EndTime)) {
			return false
		}
		return true
	}
}
