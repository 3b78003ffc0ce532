package dto

import (
	"context"
	"time"

	"github.com/naasdev/naas/internal/domain/subscription"
	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/types"
	"github.com/naasdev/naas/internal/validator"
)

type CreateSubscriptionRequest struct {
	CustomerID    string             `json:"customer_id" validate:"required"`
	PublicationID string             `json:"publication_id" validate:"required"`
	StartDate     time.Time          `json:"start_date" validate:"required"`
	BillingCycle  types.BillingCycle `json:"billing_cycle,omitempty"`
}

func (r *CreateSubscriptionRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.BillingCycle == "" {
		r.BillingCycle = types.BillingCycleMonthly
	}
	return r.BillingCycle.Validate()
}

func (r *CreateSubscriptionRequest) ToSubscription(ctx context.Context) *subscription.Subscription {
	return &subscription.Subscription{
		ID:            types.GenerateUUID(),
		CustomerID:    r.CustomerID,
		PublicationID: r.PublicationID,
		StartDate:     types.DateOf(r.StartDate),
		Status:        types.SubscriptionStatusActive,
		BillingCycle:  r.BillingCycle,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
}

type SuspendSubscriptionRequest struct {
	SuspensionStartDate time.Time `json:"suspension_start_date" validate:"required"`
	SuspensionEndDate   time.Time `json:"suspension_end_date" validate:"required"`
}

func (r *SuspendSubscriptionRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.SuspensionEndDate.Before(r.SuspensionStartDate) {
		return ierr.NewError("suspension end before start").
			WithHint("Suspension end date must not be before the start date").
			Mark(ierr.ErrValidation)
	}
	return nil
}

type UpdateBillingCycleRequest struct {
	BillingCycle types.BillingCycle `json:"billing_cycle" validate:"required"`
}

func (r *UpdateBillingCycleRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.BillingCycle.Validate()
}

type SubscriptionResponse struct {
	*subscription.Subscription
}

type ListSubscriptionsResponse = types.ListResponse[*SubscriptionResponse]
