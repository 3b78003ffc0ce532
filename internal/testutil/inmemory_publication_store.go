package testutil

import (
	"context"

	"github.com/naasdev/naas/internal/domain/publication"
	"github.com/naasdev/naas/internal/types"
	"github.com/samber/lo"
)

// InMemoryPublicationStore implements publication.Repository
type InMemoryPublicationStore struct {
	*InMemoryStore[*publication.Publication]
	gets int
}

func NewInMemoryPublicationStore() *InMemoryPublicationStore {
	return &InMemoryPublicationStore{
		InMemoryStore: NewInMemoryStore[*publication.Publication](),
	}
}

func copyPublication(p *publication.Publication) *publication.Publication {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

func (s *InMemoryPublicationStore) Create(ctx context.Context, p *publication.Publication) error {
	return s.InMemoryStore.Create(ctx, p.ID, copyPublication(p))
}

func (s *InMemoryPublicationStore) Get(ctx context.Context, id string) (*publication.Publication, error) {
	s.gets++
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return copyPublication(p), nil
}

// GetCalls returns how many times Get reached the store
func (s *InMemoryPublicationStore) GetCalls() int {
	return s.gets
}

func (s *InMemoryPublicationStore) List(ctx context.Context, filter *types.PublicationFilter) ([]*publication.Publication, error) {
	var page types.BaseFilter
	if filter != nil {
		page = paginated(filter.QueryFilter)
	}
	items, err := s.InMemoryStore.List(ctx, page, publicationFilterFn(filter), func(i, j *publication.Publication) bool {
		return i.Name < j.Name
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(p *publication.Publication, _ int) *publication.Publication {
		return copyPublication(p)
	}), nil
}

func (s *InMemoryPublicationStore) Count(ctx context.Context, filter *types.PublicationFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, nil, publicationFilterFn(filter))
}

func (s *InMemoryPublicationStore) Update(ctx context.Context, p *publication.Publication) error {
	return s.InMemoryStore.Update(ctx, p.ID, copyPublication(p))
}

func publicationFilterFn(f *types.PublicationFilter) FilterFunc[*publication.Publication] {
	return func(_ context.Context, p *publication.Publication, _ interface{}) bool {
		if f == nil {
			return p.IsActive
		}
		if !f.IncludeInactive && !p.IsActive {
			return false
		}
		if f.Type != nil && p.Type != *f.Type {
			return false
		}
		if len(f.PublicationIDs) > 0 && !lo.Contains(f.PublicationIDs, p.ID) {
			return false
		}
		return true
	}
}
