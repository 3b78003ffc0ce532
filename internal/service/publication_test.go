package service

import (
	"testing"

	"github.com/naasdev/naas/internal/api/dto"
	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/testutil"
	"github.com/naasdev/naas/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PublicationServiceSuite struct {
	testutil.BaseServiceTestSuite
	service PublicationService
	store   *testutil.InMemoryPublicationStore
}

func TestPublicationService(t *testing.T) {
	suite.Run(t, new(PublicationServiceSuite))
}

func (s *PublicationServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewPublicationService(newTestServiceParams(&s.BaseServiceTestSuite))
	s.store = s.GetStores().PublicationRepo.(*testutil.InMemoryPublicationStore)
}

func (s *PublicationServiceSuite) TestCreatePublication() {
	resp, err := s.service.CreatePublication(s.GetContext(), dto.CreatePublicationRequest{
		Name:      "Morning Herald",
		Type:      types.PublicationTypeNewspaper,
		Frequency: types.PublicationFrequencyDaily,
		Price:     decimal.RequireFromString("310.005"),
	})
	s.NoError(err)
	s.True(resp.IsActive)
	s.Equal("310.01", resp.Price.StringFixed(2))
	s.True(decimal.RequireFromString("310.01").Equal(resp.Price))
}

func (s *PublicationServiceSuite) TestCreatePublication_Validation() {
	tests := []struct {
		name string
		req  dto.CreatePublicationRequest
	}{
		{
			name: "zero price",
			req: dto.CreatePublicationRequest{
				Name: "Free Sheet", Type: types.PublicationTypeNewspaper,
				Frequency: types.PublicationFrequencyDaily, Price: decimal.Zero,
			},
		},
		{
			name: "unknown type",
			req: dto.CreatePublicationRequest{
				Name: "Pamphlet", Type: types.PublicationType("PAMPHLET"),
				Frequency: types.PublicationFrequencyDaily, Price: decimal.NewFromInt(10),
			},
		},
		{
			name: "unknown frequency",
			req: dto.CreatePublicationRequest{
				Name: "Quarterly", Type: types.PublicationTypeMagazine,
				Frequency: types.PublicationFrequency("QUARTERLY"), Price: decimal.NewFromInt(10),
			},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.CreatePublication(s.GetContext(), tt.req)
			s.Error(err)
			s.True(ierr.IsValidation(err))
		})
	}
}

func (s *PublicationServiceSuite) TestGetPublication_ReadsThroughCache() {
	p := createTestPublication(&s.BaseServiceTestSuite, "Morning Herald", "310")

	for i := 0; i < 3; i++ {
		resp, err := s.service.GetPublication(s.GetContext(), p.ID)
		s.NoError(err)
		s.Equal(p.Name, resp.Name)
	}
	s.Equal(1, s.store.GetCalls())
}

func (s *PublicationServiceSuite) TestGetPublication_CachedCopyIsIsolated() {
	p := createTestPublication(&s.BaseServiceTestSuite, "Morning Herald", "310")

	first, err := s.service.GetPublication(s.GetContext(), p.ID)
	s.NoError(err)
	first.Name = "changed by caller"

	second, err := s.service.GetPublication(s.GetContext(), p.ID)
	s.NoError(err)
	s.Equal("Morning Herald", second.Name)
}

func (s *PublicationServiceSuite) TestUpdatePublication_InvalidatesCache() {
	p := createTestPublication(&s.BaseServiceTestSuite, "Morning Herald", "310")

	_, err := s.service.GetPublication(s.GetContext(), p.ID)
	s.NoError(err)

	_, err = s.service.UpdatePublication(s.GetContext(), p.ID, dto.UpdatePublicationRequest{
		Price:    lo.ToPtr(decimal.RequireFromString("330")),
		IsActive: lo.ToPtr(false),
	})
	s.NoError(err)

	resp, err := s.service.GetPublication(s.GetContext(), p.ID)
	s.NoError(err)
	s.True(decimal.NewFromInt(330).Equal(resp.Price))
	s.False(resp.IsActive)
}

func (s *PublicationServiceSuite) TestGetPublications_HidesInactiveByDefault() {
	createTestPublication(&s.BaseServiceTestSuite, "Morning Herald", "310")
	retired := createTestPublication(&s.BaseServiceTestSuite, "Old Gazette", "90")

	resp, err := s.service.GetPublications(s.GetContext(), nil)
	s.NoError(err)
	s.Len(resp.Items, 2)

	_, err = s.service.UpdatePublication(s.GetContext(), retired.ID, dto.UpdatePublicationRequest{
		IsActive: lo.ToPtr(false),
	})
	s.NoError(err)

	resp, err = s.service.GetPublications(s.GetContext(), nil)
	s.NoError(err)
	s.Require().Len(resp.Items, 1)
	s.Equal("Morning Herald", resp.Items[0].Name)

	filter := types.NewPublicationFilter()
	filter.IncludeInactive = true
	resp, err = s.service.GetPublications(s.GetContext(), filter)
	s.NoError(err)
	s.Len(resp.Items, 2)
}

func (s *PublicationServiceSuite) TestUpdatePublication_NotFound() {
	_, err := s.service.UpdatePublication(s.GetContext(), "missing", dto.UpdatePublicationRequest{
		IsActive: lo.ToPtr(false),
	})
	s.True(ierr.IsNotFound(err))
}
