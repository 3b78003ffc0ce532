package service

import (
	"context"
	"sync"

	"github.com/naasdev/naas/internal/api/dto"
	"github.com/naasdev/naas/internal/domain/customer"
	"github.com/naasdev/naas/internal/domain/notification"
	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/types"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"
)

type NotificationService interface {
	// Notify stores a PENDING notification for the customer and announces it
	// to the delivery consumer
	Notify(ctx context.Context, c *customer.Customer, t types.NotificationType, content string) (*notification.Notification, error)
	ListNotifications(ctx context.Context, filter *types.NotificationFilter) (*dto.ListNotificationsResponse, error)
	MarkRead(ctx context.Context, id string) (*dto.NotificationResponse, error)
	DispatchPending(ctx context.Context) (*dto.DispatchNotificationsResponse, error)
}

type notificationService struct {
	ServiceParams
}

func NewNotificationService(params ServiceParams) NotificationService {
	return &notificationService{
		ServiceParams: params,
	}
}

func (s *notificationService) Notify(ctx context.Context, c *customer.Customer, t types.NotificationType, content string) (*notification.Notification, error) {
	n := &notification.Notification{
		ID:         types.GenerateUUID(),
		UserID:     c.UserID,
		CustomerID: c.ID,
		Type:       t,
		Content:    content,
		Channel:    types.NotificationChannelEmail,
		Status:     types.NotificationStatusPending,
		BaseModel:  types.GetDefaultBaseModel(ctx),
	}

	if err := s.NotificationRepo.Create(ctx, n); err != nil {
		return nil, err
	}
	s.Metrics.NotificationsCreated.WithLabelValues(string(t)).Inc()

	// the row stays PENDING for the dispatch sweep when the event is lost
	if err := s.NotificationPublisher.Publish(ctx, n); err != nil {
		s.Logger.Warnw("notification stored but not published",
			"notification_id", n.ID,
			"customer_id", c.ID,
			"error", err,
		)
	}

	return n, nil
}

func (s *notificationService) ListNotifications(ctx context.Context, filter *types.NotificationFilter) (*dto.ListNotificationsResponse, error) {
	if filter == nil {
		filter = types.NewNotificationFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	filter.UserID = types.GetUserID(ctx)

	if err := filter.Validate(); err != nil {
		return nil, err
	}

	items, err := s.NotificationRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.NotificationRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := types.NewListResponse(lo.Map(items, func(n *notification.Notification, _ int) *dto.NotificationResponse {
		return &dto.NotificationResponse{Notification: n}
	}), total, filter)
	return &resp, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id string) (*dto.NotificationResponse, error) {
	n, err := s.NotificationRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if n.UserID != types.GetUserID(ctx) {
		return nil, ierr.NewError("notification belongs to another user").
			WithHint("You can only mark your own notifications as read").
			WithReportableDetails(map[string]any{"notification_id": id}).
			Mark(ierr.ErrPermissionDenied)
	}

	if err := n.MarkRead(); err != nil {
		return nil, err
	}
	n.Touch(ctx)
	if err := s.NotificationRepo.Update(ctx, n); err != nil {
		return nil, err
	}
	return &dto.NotificationResponse{Notification: n}, nil
}

// DispatchPending delivers one batch of PENDING notifications concurrently
func (s *notificationService) DispatchPending(ctx context.Context) (*dto.DispatchNotificationsResponse, error) {
	filter := &types.NotificationFilter{
		QueryFilter: types.NewDefaultQueryFilter(),
		Statuses:    []types.NotificationStatus{types.NotificationStatusPending},
	}
	filter.Limit = lo.ToPtr(s.Config.Notification.DispatchBatchSize)
	filter.Order = lo.ToPtr(types.OrderAsc)

	pending, err := s.NotificationRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := &dto.DispatchNotificationsResponse{Processed: len(pending)}
	if len(pending) == 0 {
		return resp, nil
	}

	var mu sync.Mutex
	p := pool.New().
		WithMaxGoroutines(s.Config.Notification.DispatchConcurrency).
		WithContext(ctx)

	for _, n := range pending {
		id := n.ID
		p.Go(func(ctx context.Context) error {
			status, err := s.Dispatcher.Deliver(ctx, id)
			if err != nil {
				s.Logger.Errorw("failed to dispatch notification",
					"notification_id", id,
					"error", err,
				)
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			switch status {
			case types.NotificationStatusSent:
				resp.Sent++
			case types.NotificationStatusFailed:
				resp.Failed++
			}
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return resp, err
	}

	s.Logger.Infow("dispatched pending notifications",
		"processed", resp.Processed,
		"sent", resp.Sent,
		"failed", resp.Failed,
	)
	return resp, nil
}

// notify creates a notification once the change it reports is committed.
// Failures are logged and reported as false, the change itself stands.
func (p ServiceParams) notify(ctx context.Context, c *customer.Customer, t types.NotificationType, content string) bool {
	if _, err := NewNotificationService(p).Notify(ctx, c, t, content); err != nil {
		p.Logger.Errorw("failed to create notification",
			"customer_id", c.ID,
			"type", t,
			"error", err,
		)
		return false
	}
	return true
}
