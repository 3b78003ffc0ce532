package postgres

import (
	"context"

	"github.com/naasdev/naas/internal/domain/customer"
	"github.com/naasdev/naas/internal/logger"
	"github.com/naasdev/naas/internal/postgres"
	"github.com/naasdev/naas/internal/types"
)

type customerRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewCustomerRepository(db *postgres.DB, logger *logger.Logger) customer.Repository {
	return &customerRepository{db: db, logger: logger}
}

func (r *customerRepository) Create(ctx context.Context, c *customer.Customer) error {
	query := `
		INSERT INTO customers (
			id, user_id, name, address, phone, email, outstanding_due, due_since, status,
			created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :user_id, :name, :address, :phone, :email, :outstanding_due, :due_since, :status,
			:created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating customer", "customer_id", c.ID)

	return execNamed(ctx, r.db.GetQuerier(ctx), query, c, "customer", false)
}

func (r *customerRepository) Get(ctx context.Context, id string) (*customer.Customer, error) {
	qb := postgres.NewQueryBuilder("SELECT * FROM customers").
		Where("id = :id", map[string]interface{}{"id": id})
	return selectOne[customer.Customer](ctx, r.db.GetQuerier(ctx), qb, "customer")
}

func (r *customerRepository) GetForUpdate(ctx context.Context, id string) (*customer.Customer, error) {
	qb := postgres.NewQueryBuilder("SELECT * FROM customers").
		Where("id = :id", map[string]interface{}{"id": id}).
		Suffix("FOR UPDATE")
	return selectOne[customer.Customer](ctx, r.db.GetQuerier(ctx), qb, "customer")
}

func (r *customerRepository) List(ctx context.Context, filter *types.CustomerFilter) ([]*customer.Customer, error) {
	qb := r.filtered(filter)
	if filter != nil {
		qb = paginate(qb, filter.QueryFilter, "created_at", "name", "outstanding_due", "due_since")
	}
	return selectAll[customer.Customer](ctx, r.db.GetQuerier(ctx), qb, "customer")
}

func (r *customerRepository) Count(ctx context.Context, filter *types.CustomerFilter) (int, error) {
	return count(ctx, r.db.GetQuerier(ctx), r.filtered(filter).Count("customers"), "customer")
}

func (r *customerRepository) Update(ctx context.Context, c *customer.Customer) error {
	query := `
		UPDATE customers SET
			user_id = :user_id,
			name = :name,
			address = :address,
			phone = :phone,
			email = :email,
			outstanding_due = :outstanding_due,
			due_since = :due_since,
			status = :status,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id`

	r.logger.Debugw("updating customer",
		"customer_id", c.ID,
		"status", c.Status,
		"outstanding_due", c.OutstandingDue,
	)

	return execNamed(ctx, r.db.GetQuerier(ctx), query, c, "customer", true)
}

func (r *customerRepository) filtered(filter *types.CustomerFilter) *postgres.QueryBuilder {
	qb := postgres.NewQueryBuilder("SELECT * FROM customers")
	if filter == nil {
		return qb
	}
	return qb.
		WhereIf(len(filter.Statuses) > 0, "status IN (:statuses)", map[string]interface{}{"statuses": filter.Statuses}).
		WhereIf(len(filter.CustomerIDs) > 0, "id IN (:customer_ids)", map[string]interface{}{"customer_ids": filter.CustomerIDs}).
		WhereIf(filter.UserID != "", "user_id = :user_id", map[string]interface{}{"user_id": filter.UserID})
}
