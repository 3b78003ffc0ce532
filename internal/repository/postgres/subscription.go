package postgres

import (
	"context"
	"time"

	"github.com/naasdev/naas/internal/domain/subscription"
	"github.com/naasdev/naas/internal/logger"
	"github.com/naasdev/naas/internal/postgres"
	"github.com/naasdev/naas/internal/types"
)

type subscriptionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{db: db, logger: logger}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			id, customer_id, publication_id, start_date, end_date, status,
			suspension_start_date, suspension_end_date, modification_date, cancellation_date,
			billing_cycle, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :customer_id, :publication_id, :start_date, :end_date, :status,
			:suspension_start_date, :suspension_end_date, :modification_date, :cancellation_date,
			:billing_cycle, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating subscription",
		"subscription_id", sub.ID,
		"customer_id", sub.CustomerID,
		"publication_id", sub.PublicationID,
	)

	return execNamed(ctx, r.db.GetQuerier(ctx), query, sub, "subscription", false)
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	qb := postgres.NewQueryBuilder("SELECT * FROM subscriptions").
		Where("id = :id", map[string]interface{}{"id": id})
	return selectOne[subscription.Subscription](ctx, r.db.GetQuerier(ctx), qb, "subscription")
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		UPDATE subscriptions SET
			end_date = :end_date,
			status = :status,
			suspension_start_date = :suspension_start_date,
			suspension_end_date = :suspension_end_date,
			modification_date = :modification_date,
			cancellation_date = :cancellation_date,
			billing_cycle = :billing_cycle,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id`

	r.logger.Debugw("updating subscription",
		"subscription_id", sub.ID,
		"status", sub.Status,
	)

	return execNamed(ctx, r.db.GetQuerier(ctx), query, sub, "subscription", true)
}

func (r *subscriptionRepository) List(ctx context.Context, filter *types.SubscriptionFilter) ([]*subscription.Subscription, error) {
	qb := r.filtered(filter)
	if filter != nil {
		qb = paginate(qb, filter.QueryFilter, "created_at", "start_date", "end_date")
	}
	return selectAll[subscription.Subscription](ctx, r.db.GetQuerier(ctx), qb, "subscription")
}

func (r *subscriptionRepository) Count(ctx context.Context, filter *types.SubscriptionFilter) (int, error) {
	return count(ctx, r.db.GetQuerier(ctx), r.filtered(filter).Count("subscriptions"), "subscription")
}

func (r *subscriptionRepository) ListBillableForPeriod(ctx context.Context, period types.BillingPeriod) ([]*subscription.Subscription, error) {
	qb := postgres.NewQueryBuilder("SELECT * FROM subscriptions").
		Where("status IN (:statuses)", map[string]interface{}{"statuses": types.BillableSubscriptionStatuses}).
		Where("start_date <= :period_end", map[string]interface{}{"period_end": period.End}).
		Where("(end_date IS NULL OR end_date >= :period_start)", map[string]interface{}{"period_start": period.Start}).
		OrderBy("customer_id ASC, created_at ASC")
	return selectAll[subscription.Subscription](ctx, r.db.GetQuerier(ctx), qb, "subscription")
}

func (r *subscriptionRepository) ListDeliverableOn(ctx context.Context, day time.Time) ([]*subscription.Subscription, error) {
	day = types.DateOf(day)
	qb := postgres.NewQueryBuilder("SELECT * FROM subscriptions").
		Where("status = :status", map[string]interface{}{"status": types.SubscriptionStatusActive}).
		Where("start_date <= :day", map[string]interface{}{"day": day}).
		Where("(end_date IS NULL OR end_date >= :day)", map[string]interface{}{"day": day}).
		OrderBy("created_at ASC, id ASC")
	return selectAll[subscription.Subscription](ctx, r.db.GetQuerier(ctx), qb, "subscription")
}

func (r *subscriptionRepository) ExistsNonTerminal(ctx context.Context, customerID, publicationID string) (bool, error) {
	qb := postgres.NewQueryBuilder("SELECT EXISTS (SELECT 1 FROM subscriptions").
		Where("customer_id = :customer_id", map[string]interface{}{"customer_id": customerID}).
		Where("publication_id = :publication_id", map[string]interface{}{"publication_id": publicationID}).
		Where("status IN (:statuses)", map[string]interface{}{"statuses": types.BillableSubscriptionStatuses}).
		Suffix(")")

	q := r.db.GetQuerier(ctx)
	query, args, err := qb.Build(q)
	if err != nil {
		return false, postgres.WrapError(err, "subscription")
	}
	var exists bool
	if err := q.GetContext(ctx, &exists, query, args...); err != nil {
		return false, postgres.WrapError(err, "subscription")
	}
	return exists, nil
}

func (r *subscriptionRepository) filtered(filter *types.SubscriptionFilter) *postgres.QueryBuilder {
	qb := postgres.NewQueryBuilder("SELECT * FROM subscriptions")
	if filter == nil {
		return qb
	}
	return qb.
		WhereIf(filter.CustomerID != "", "customer_id = :customer_id", map[string]interface{}{"customer_id": filter.CustomerID}).
		WhereIf(filter.PublicationID != "", "publication_id = :publication_id", map[string]interface{}{"publication_id": filter.PublicationID}).
		WhereIf(len(filter.Statuses) > 0, "status IN (:statuses)", map[string]interface{}{"statuses": filter.Statuses})
}
