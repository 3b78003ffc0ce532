package service

import (
	"context"

	"github.com/naasdev/naas/internal/api/dto"
	"github.com/naasdev/naas/internal/domain/customer"
	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/types"
	"github.com/samber/lo"
)

type CustomerService interface {
	CreateCustomer(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error)
	GetCustomer(ctx context.Context, id string) (*dto.CustomerResponse, error)
	GetCustomers(ctx context.Context, filter *types.CustomerFilter) (*dto.ListCustomersResponse, error)
	SuspendCustomer(ctx context.Context, id string) (*dto.CustomerResponse, error)
	ReactivateCustomer(ctx context.Context, id string) (*dto.CustomerResponse, error)
}

type customerService struct {
	ServiceParams
}

func NewCustomerService(params ServiceParams) CustomerService {
	return &customerService{
		ServiceParams: params,
	}
}

func (s *customerService) CreateCustomer(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c := req.ToCustomer(ctx)
	if err := s.CustomerRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.Logger.Infow("created customer", "customer_id", c.ID, "user_id", c.UserID)
	return &dto.CustomerResponse{Customer: c}, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id string) (*dto.CustomerResponse, error) {
	if id == "" {
		return nil, ierr.NewError("customer_id is required").
			WithHint("Customer ID is required").
			Mark(ierr.ErrValidation)
	}

	c, err := s.CustomerRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.CustomerResponse{Customer: c}, nil
}

func (s *customerService) GetCustomers(ctx context.Context, filter *types.CustomerFilter) (*dto.ListCustomersResponse, error) {
	if filter == nil {
		filter = types.NewCustomerFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	customers, err := s.CustomerRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.CustomerRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := types.NewListResponse(lo.Map(customers, func(c *customer.Customer, _ int) *dto.CustomerResponse {
		return &dto.CustomerResponse{Customer: c}
	}), total, filter)
	return &resp, nil
}

// SuspendCustomer puts an ACTIVE customer on hold. Settling every unpaid
// invoice lifts the hold again.
func (s *customerService) SuspendCustomer(ctx context.Context, id string) (*dto.CustomerResponse, error) {
	var c *customer.Customer
	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		c, err = s.CustomerRepo.GetForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if err := c.TransitionTo(types.CustomerStatusSuspended); err != nil {
			return err
		}
		c.Touch(txCtx)
		return s.CustomerRepo.Update(txCtx, c)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("suspended customer", "customer_id", id)
	return &dto.CustomerResponse{Customer: c}, nil
}

// ReactivateCustomer lifts a suspension by hand. It is refused while the
// customer still has unpaid invoices.
func (s *customerService) ReactivateCustomer(ctx context.Context, id string) (*dto.CustomerResponse, error) {
	var c *customer.Customer
	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		c, err = s.CustomerRepo.GetForUpdate(txCtx, id)
		if err != nil {
			return err
		}

		unpaid, err := s.InvoiceRepo.ListUnpaidByCustomer(txCtx, id)
		if err != nil {
			return err
		}
		if len(unpaid) > 0 {
			return ierr.NewError("customer has unpaid invoices").
				WithHint("Please clear all outstanding invoices before reactivating").
				WithReportableDetails(map[string]any{
					"customer_id":     id,
					"unpaid_invoices": len(unpaid),
				}).
				Mark(ierr.ErrInvalidOperation)
		}

		if err := c.TransitionTo(types.CustomerStatusActive); err != nil {
			return err
		}
		c.Touch(txCtx)
		return s.CustomerRepo.Update(txCtx, c)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("reactivated customer", "customer_id", id)
	return &dto.CustomerResponse{Customer: c}, nil
}
