package postgres

import (
	"context"
	"time"

	"github.com/naasdev/naas/internal/domain/delivery"
	"github.com/naasdev/naas/internal/logger"
	"github.com/naasdev/naas/internal/postgres"
	"github.com/naasdev/naas/internal/types"
)

type personnelRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPersonnelRepository(db *postgres.DB, logger *logger.Logger) delivery.PersonnelRepository {
	return &personnelRepository{db: db, logger: logger}
}

func (r *personnelRepository) Create(ctx context.Context, p *delivery.Personnel) error {
	query := `
		INSERT INTO delivery_personnel (
			id, name, phone, address, joining_date, is_active, commission_rate,
			created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :name, :phone, :address, :joining_date, :is_active, :commission_rate,
			:created_at, :updated_at, :created_by, :updated_by
		)`

	return execNamed(ctx, r.db.GetQuerier(ctx), query, p, "delivery personnel", false)
}

func (r *personnelRepository) Get(ctx context.Context, id string) (*delivery.Personnel, error) {
	qb := postgres.NewQueryBuilder("SELECT * FROM delivery_personnel").
		Where("id = :id", map[string]interface{}{"id": id})
	return selectOne[delivery.Personnel](ctx, r.db.GetQuerier(ctx), qb, "delivery personnel")
}

func (r *personnelRepository) List(ctx context.Context, filter *types.DeliveryPersonnelFilter) ([]*delivery.Personnel, error) {
	qb := r.filtered(filter)
	if filter != nil {
		qb = paginate(qb, filter.QueryFilter, "created_at", "name", "joining_date")
	}
	return selectAll[delivery.Personnel](ctx, r.db.GetQuerier(ctx), qb, "delivery personnel")
}

func (r *personnelRepository) Count(ctx context.Context, filter *types.DeliveryPersonnelFilter) (int, error) {
	return count(ctx, r.db.GetQuerier(ctx), r.filtered(filter).Count("delivery_personnel"), "delivery personnel")
}

func (r *personnelRepository) Update(ctx context.Context, p *delivery.Personnel) error {
	query := `
		UPDATE delivery_personnel SET
			name = :name,
			phone = :phone,
			address = :address,
			is_active = :is_active,
			commission_rate = :commission_rate,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id`

	return execNamed(ctx, r.db.GetQuerier(ctx), query, p, "delivery personnel", true)
}

func (r *personnelRepository) filtered(filter *types.DeliveryPersonnelFilter) *postgres.QueryBuilder {
	qb := postgres.NewQueryBuilder("SELECT * FROM delivery_personnel")
	if filter == nil {
		return qb
	}
	return qb.WhereIf(filter.ActiveOnly, "is_active = TRUE", nil)
}

type scheduleRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewScheduleRepository(db *postgres.DB, logger *logger.Logger) delivery.ScheduleRepository {
	return &scheduleRepository{db: db, logger: logger}
}

func (r *scheduleRepository) Create(ctx context.Context, s *delivery.Schedule) error {
	query := `
		INSERT INTO delivery_schedules (
			id, date, status, delivery_time, notes, subscription_id, personnel_id,
			created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :date, :status, :delivery_time, :notes, :subscription_id, :personnel_id,
			:created_at, :updated_at, :created_by, :updated_by
		)`

	return execNamed(ctx, r.db.GetQuerier(ctx), query, s, "delivery schedule", false)
}

func (r *scheduleRepository) Get(ctx context.Context, id string) (*delivery.Schedule, error) {
	qb := postgres.NewQueryBuilder("SELECT * FROM delivery_schedules").
		Where("id = :id", map[string]interface{}{"id": id})
	return selectOne[delivery.Schedule](ctx, r.db.GetQuerier(ctx), qb, "delivery schedule")
}

func (r *scheduleRepository) Update(ctx context.Context, s *delivery.Schedule) error {
	query := `
		UPDATE delivery_schedules SET
			status = :status,
			delivery_time = :delivery_time,
			notes = :notes,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id`

	r.logger.Debugw("updating delivery schedule",
		"schedule_id", s.ID,
		"status", s.Status,
	)

	return execNamed(ctx, r.db.GetQuerier(ctx), query, s, "delivery schedule", true)
}

func (r *scheduleRepository) List(ctx context.Context, filter *types.DeliveryScheduleFilter) ([]*delivery.Schedule, error) {
	qb := r.filtered(filter)
	if filter != nil {
		qb = paginate(qb, filter.QueryFilter)
	}
	// keep the page window but always walk the round in date order
	qb = qb.OrderBy("date ASC, created_at ASC")
	return selectAll[delivery.Schedule](ctx, r.db.GetQuerier(ctx), qb, "delivery schedule")
}

func (r *scheduleRepository) Count(ctx context.Context, filter *types.DeliveryScheduleFilter) (int, error) {
	return count(ctx, r.db.GetQuerier(ctx), r.filtered(filter).Count("delivery_schedules"), "delivery schedule")
}

func (r *scheduleRepository) ScheduledSubscriptions(ctx context.Context, day time.Time) ([]string, error) {
	qb := postgres.NewQueryBuilder("SELECT subscription_id FROM delivery_schedules").
		Where("date = :date", map[string]interface{}{"date": types.DateOf(day)})

	q := r.db.GetQuerier(ctx)
	query, args, err := qb.Build(q)
	if err != nil {
		return nil, postgres.WrapError(err, "delivery schedule")
	}
	ids := make([]string, 0)
	if err := q.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, postgres.WrapError(err, "delivery schedule")
	}
	return ids, nil
}

func (r *scheduleRepository) filtered(filter *types.DeliveryScheduleFilter) *postgres.QueryBuilder {
	qb := postgres.NewQueryBuilder("SELECT * FROM delivery_schedules")
	if filter == nil {
		return qb
	}
	return qb.
		WhereIf(filter.PersonnelID != "", "personnel_id = :personnel_id", map[string]interface{}{"personnel_id": filter.PersonnelID}).
		WhereIf(len(filter.SubscriptionIDs) > 0, "subscription_id IN (:subscription_ids)", map[string]interface{}{"subscription_ids": filter.SubscriptionIDs}).
		WhereIf(len(filter.Statuses) > 0, "status IN (:statuses)", map[string]interface{}{"statuses": filter.Statuses}).
		WhereIf(filter.StartTime != nil, "date >= :start_date", map[string]interface{}{"start_date": filter.StartTime}).
		WhereIf(filter.EndTime != nil, "date <= :end_date", map[string]interface{}{"end_date": filter.EndTime})
}
