package service

import (
	"context"
	"fmt"

	"github.com/naasdev/naas/internal/api/dto"
	"github.com/naasdev/naas/internal/domain/subscription"
	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/types"
	"github.com/samber/lo"
)

type SubscriptionService interface {
	CreateSubscription(ctx context.Context, req dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error)
	GetSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	ListSubscriptions(ctx context.Context, filter *types.SubscriptionFilter) (*dto.ListSubscriptionsResponse, error)
	SuspendSubscription(ctx context.Context, id string, req dto.SuspendSubscriptionRequest) (*dto.SubscriptionResponse, error)
	ResumeSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	CancelSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	UpdateBillingCycle(ctx context.Context, id string, req dto.UpdateBillingCycleRequest) (*dto.SubscriptionResponse, error)
}

type subscriptionService struct {
	ServiceParams
}

func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{
		ServiceParams: params,
	}
}

func (s *subscriptionService) CreateSubscription(ctx context.Context, req dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := s.CustomerRepo.Get(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if c.IsDiscontinued() {
		return nil, ierr.NewError("customer is discontinued").
			WithHint("Discontinued customers cannot take new subscriptions").
			WithReportableDetails(map[string]any{"customer_id": c.ID}).
			Mark(ierr.ErrInvalidOperation)
	}

	pub, err := NewPublicationService(s.ServiceParams).GetPublication(ctx, req.PublicationID)
	if err != nil {
		return nil, err
	}
	if !pub.IsActive {
		return nil, ierr.NewError("publication is not active").
			WithHint("This publication is no longer available").
			WithReportableDetails(map[string]any{"publication_id": pub.ID}).
			Mark(ierr.ErrValidation)
	}

	sub := req.ToSubscription(ctx)
	err = s.DB.WithTx(ctx, func(txCtx context.Context) error {
		exists, err := s.SubRepo.ExistsNonTerminal(txCtx, c.ID, pub.ID)
		if err != nil {
			return err
		}
		if exists {
			return ierr.NewError("subscription already exists").
				WithHint("Customer already has an active subscription for this publication").
				WithReportableDetails(map[string]any{
					"customer_id":    c.ID,
					"publication_id": pub.ID,
				}).
				Mark(ierr.ErrValidation)
		}
		return s.SubRepo.Create(txCtx, sub)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, c, types.NotificationTypeSubscriptionConfirmation,
		fmt.Sprintf("Your subscription to %s has been confirmed and will start on %s.",
			pub.Name, sub.StartDate.Format(dateLayout)))

	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

func (s *subscriptionService) GetSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

func (s *subscriptionService) ListSubscriptions(ctx context.Context, filter *types.SubscriptionFilter) (*dto.ListSubscriptionsResponse, error) {
	if filter == nil {
		filter = types.NewSubscriptionFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	subs, err := s.SubRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.SubRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := types.NewListResponse(lo.Map(subs, func(sub *subscription.Subscription, _ int) *dto.SubscriptionResponse {
		return &dto.SubscriptionResponse{Subscription: sub}
	}), total, filter)
	return &resp, nil
}

// SuspendSubscription pauses delivery for a window that starts at least
// the configured notice period from today
func (s *subscriptionService) SuspendSubscription(ctx context.Context, id string, req dto.SuspendSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	earliest := types.DateOf(now).AddDate(0, 0, s.Config.Billing.SuspensionNoticeDays)
	if types.DateOf(req.SuspensionStartDate).Before(earliest) {
		return nil, ierr.NewError("suspension notice too short").
			WithHint("Suspension requires minimum one week advance notice").
			WithReportableDetails(map[string]any{
				"suspension_start_date": req.SuspensionStartDate,
				"earliest_start_date":   earliest,
			}).
			Mark(ierr.ErrValidation)
	}

	sub, err := s.modify(ctx, id, func(sub *subscription.Subscription) error {
		return sub.Suspend(req.SuspensionStartDate, req.SuspensionEndDate, now)
	})
	if err != nil {
		return nil, err
	}

	s.notifyModification(ctx, sub, func(name string) string {
		return fmt.Sprintf("Your subscription to %s has been suspended from %s to %s.",
			name, sub.SuspensionStartDate.Format(dateLayout), sub.SuspensionEndDate.Format(dateLayout))
	})
	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

func (s *subscriptionService) ResumeSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	now := s.Clock.Now()
	sub, err := s.modify(ctx, id, func(sub *subscription.Subscription) error {
		return sub.Resume(now)
	})
	if err != nil {
		return nil, err
	}

	s.notifyModification(ctx, sub, func(name string) string {
		return fmt.Sprintf("Your subscription to %s has been resumed.", name)
	})
	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

// CancelSubscription stops the subscription. Delivery runs on for the
// configured grace period.
func (s *subscriptionService) CancelSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	now := s.Clock.Now()
	endDate := types.DateOf(now).AddDate(0, 0, s.Config.Billing.CancellationGraceDays)

	sub, err := s.modify(ctx, id, func(sub *subscription.Subscription) error {
		return sub.Cancel(now, endDate)
	})
	if err != nil {
		return nil, err
	}

	s.notifyModification(ctx, sub, func(name string) string {
		return fmt.Sprintf("Your subscription to %s has been cancelled and will end on %s.",
			name, endDate.Format(dateLayout))
	})
	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

func (s *subscriptionService) UpdateBillingCycle(ctx context.Context, id string, req dto.UpdateBillingCycleRequest) (*dto.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	sub, err := s.modify(ctx, id, func(sub *subscription.Subscription) error {
		return sub.ChangeBillingCycle(req.BillingCycle, now)
	})
	if err != nil {
		return nil, err
	}

	s.notifyModification(ctx, sub, func(name string) string {
		return fmt.Sprintf("Your subscription to %s has been modified.", name)
	})
	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

// modify loads the subscription, applies fn and saves it in one transaction
func (s *subscriptionService) modify(ctx context.Context, id string, fn func(sub *subscription.Subscription) error) (*subscription.Subscription, error) {
	var sub *subscription.Subscription
	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		sub, err = s.SubRepo.Get(txCtx, id)
		if err != nil {
			return err
		}
		if err := fn(sub); err != nil {
			return err
		}
		sub.Touch(txCtx)
		return s.SubRepo.Update(txCtx, sub)
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *subscriptionService) notifyModification(ctx context.Context, sub *subscription.Subscription, content func(publicationName string) string) {
	c, err := s.CustomerRepo.Get(ctx, sub.CustomerID)
	if err != nil {
		s.Logger.Errorw("failed to load customer for subscription notification",
			"subscription_id", sub.ID,
			"customer_id", sub.CustomerID,
			"error", err,
		)
		return
	}
	pub, err := NewPublicationService(s.ServiceParams).GetPublication(ctx, sub.PublicationID)
	if err != nil {
		s.Logger.Errorw("failed to load publication for subscription notification",
			"subscription_id", sub.ID,
			"publication_id", sub.PublicationID,
			"error", err,
		)
		return
	}
	s.notify(ctx, c, types.NotificationTypeSubscriptionModification, content(pub.Name))
}
