package postgres

import (
	"context"

	"github.com/naasdev/naas/internal/domain/notification"
	"github.com/naasdev/naas/internal/logger"
	"github.com/naasdev/naas/internal/postgres"
	"github.com/naasdev/naas/internal/types"
)

type notificationRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewNotificationRepository(db *postgres.DB, logger *logger.Logger) notification.Repository {
	return &notificationRepository{db: db, logger: logger}
}

func (r *notificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	query := `
		INSERT INTO notifications (
			id, user_id, customer_id, type, content, channel, status, sent_at,
			created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :user_id, :customer_id, :type, :content, :channel, :status, :sent_at,
			:created_at, :updated_at, :created_by, :updated_by
		)`

	return execNamed(ctx, r.db.GetQuerier(ctx), query, n, "notification", false)
}

func (r *notificationRepository) Get(ctx context.Context, id string) (*notification.Notification, error) {
	qb := postgres.NewQueryBuilder("SELECT * FROM notifications").
		Where("id = :id", map[string]interface{}{"id": id})
	return selectOne[notification.Notification](ctx, r.db.GetQuerier(ctx), qb, "notification")
}

func (r *notificationRepository) Update(ctx context.Context, n *notification.Notification) error {
	query := `
		UPDATE notifications SET
			status = :status,
			sent_at = :sent_at,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id`

	return execNamed(ctx, r.db.GetQuerier(ctx), query, n, "notification", true)
}

func (r *notificationRepository) List(ctx context.Context, filter *types.NotificationFilter) ([]*notification.Notification, error) {
	qb := r.filtered(filter)
	if filter != nil {
		qb = paginate(qb, filter.QueryFilter, "created_at", "sent_at")
	}
	return selectAll[notification.Notification](ctx, r.db.GetQuerier(ctx), qb, "notification")
}

func (r *notificationRepository) Count(ctx context.Context, filter *types.NotificationFilter) (int, error) {
	return count(ctx, r.db.GetQuerier(ctx), r.filtered(filter).Count("notifications"), "notification")
}

func (r *notificationRepository) filtered(filter *types.NotificationFilter) *postgres.QueryBuilder {
	qb := postgres.NewQueryBuilder("SELECT * FROM notifications")
	if filter == nil {
		return qb
	}
	return qb.
		WhereIf(filter.UserID != "", "user_id = :user_id", map[string]interface{}{"user_id": filter.UserID}).
		WhereIf(filter.CustomerID != "", "customer_id = :customer_id", map[string]interface{}{"customer_id": filter.CustomerID}).
		WhereIf(len(filter.Statuses) > 0, "status IN (:statuses)", map[string]interface{}{"statuses": filter.Statuses}).
		WhereIf(len(filter.Types) > 0, "type IN (:types)", map[string]interface{}{"types": filter.Types})
}
