package dto

import (
	"context"

	"github.com/naasdev/naas/internal/domain/customer"
	"github.com/naasdev/naas/internal/types"
	"github.com/naasdev/naas/internal/validator"
	"github.com/shopspring/decimal"
)

type CreateCustomerRequest struct {
	UserID  string `json:"user_id" validate:"omitempty,max=64"`
	Name    string `json:"name" validate:"required,max=255"`
	Address string `json:"address" validate:"required"`
	Phone   string `json:"phone" validate:"required,max=32"`
	Email   string `json:"email" validate:"omitempty,email"`
}

func (r *CreateCustomerRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *CreateCustomerRequest) ToCustomer(ctx context.Context) *customer.Customer {
	return &customer.Customer{
		ID:             types.GenerateUUID(),
		UserID:         r.UserID,
		Name:           r.Name,
		Address:        r.Address,
		Phone:          r.Phone,
		Email:          r.Email,
		OutstandingDue: decimal.Zero,
		Status:         types.CustomerStatusActive,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
}

type CustomerResponse struct {
	*customer.Customer
}

// ListCustomersResponse represents the response for listing customers
type ListCustomersResponse = types.ListResponse[*CustomerResponse]

// CustomerSummary is the customer header shown with an invoice listing
type CustomerSummary struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	OutstandingDue decimal.Decimal `json:"outstanding_due" swaggertype:"string"`
}
