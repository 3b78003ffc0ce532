package service

import (
	"context"

	"github.com/naasdev/naas/internal/api/dto"
	"github.com/naasdev/naas/internal/cache"
	"github.com/naasdev/naas/internal/domain/publication"
	"github.com/naasdev/naas/internal/types"
	"github.com/samber/lo"
)

type PublicationService interface {
	CreatePublication(ctx context.Context, req dto.CreatePublicationRequest) (*dto.PublicationResponse, error)
	GetPublication(ctx context.Context, id string) (*dto.PublicationResponse, error)
	GetPublications(ctx context.Context, filter *types.PublicationFilter) (*dto.ListPublicationsResponse, error)
	UpdatePublication(ctx context.Context, id string, req dto.UpdatePublicationRequest) (*dto.PublicationResponse, error)
}

type publicationService struct {
	ServiceParams
}

func NewPublicationService(params ServiceParams) PublicationService {
	return &publicationService{
		ServiceParams: params,
	}
}

func (s *publicationService) CreatePublication(ctx context.Context, req dto.CreatePublicationRequest) (*dto.PublicationResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p := req.ToPublication(ctx)
	if err := s.PublicationRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.Cache.DeleteByPrefix(ctx, cache.PrefixPublicationList)

	return &dto.PublicationResponse{Publication: p}, nil
}

// GetPublication reads through the cache. Invoice runs look up the same
// publications for every subscriber.
func (s *publicationService) GetPublication(ctx context.Context, id string) (*dto.PublicationResponse, error) {
	key := cache.GenerateKey(cache.PrefixPublication, id)
	if cached, found := s.Cache.Get(ctx, key); found {
		if p, ok := cached.(*publication.Publication); ok {
			cp := *p
			return &dto.PublicationResponse{Publication: &cp}, nil
		}
	}

	p, err := s.PublicationRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	cp := *p
	s.Cache.Set(ctx, key, &cp, 0)
	return &dto.PublicationResponse{Publication: p}, nil
}

func (s *publicationService) GetPublications(ctx context.Context, filter *types.PublicationFilter) (*dto.ListPublicationsResponse, error) {
	if filter == nil {
		filter = types.NewPublicationFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	key := cache.GenerateKey(cache.PrefixPublicationList,
		filter.IncludeInactive,
		lo.FromPtr(filter.Type),
		filter.PublicationIDs,
		filter.GetLimit(),
		filter.GetOffset(),
		filter.GetSort(),
		filter.GetOrder(),
	)
	if cached, found := s.Cache.Get(ctx, key); found {
		if resp, ok := cached.(*dto.ListPublicationsResponse); ok {
			return resp, nil
		}
	}

	items, err := s.PublicationRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.PublicationRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := types.NewListResponse(lo.Map(items, func(p *publication.Publication, _ int) *dto.PublicationResponse {
		return &dto.PublicationResponse{Publication: p}
	}), total, filter)
	s.Cache.Set(ctx, key, &resp, 0)
	return &resp, nil
}

func (s *publicationService) UpdatePublication(ctx context.Context, id string, req dto.UpdatePublicationRequest) (*dto.PublicationResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.PublicationRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = req.Price.Round(2)
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	p.Touch(ctx)

	if err := s.PublicationRepo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.Cache.Delete(ctx, cache.GenerateKey(cache.PrefixPublication, id))
	s.Cache.DeleteByPrefix(ctx, cache.PrefixPublicationList)
	return &dto.PublicationResponse{Publication: p}, nil
}
