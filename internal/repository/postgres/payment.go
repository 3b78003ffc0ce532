package postgres

import (
	"context"

	"github.com/naasdev/naas/internal/domain/payment"
	"github.com/naasdev/naas/internal/logger"
	"github.com/naasdev/naas/internal/postgres"
	"github.com/naasdev/naas/internal/types"
)

type paymentRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPaymentRepository(db *postgres.DB, logger *logger.Logger) payment.Repository {
	return &paymentRepository{db: db, logger: logger}
}

func (r *paymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	query := `
		INSERT INTO payments (
			id, invoice_id, customer_id, amount, payment_date, payment_method, status,
			receipt_number, transaction_id, cheque_number,
			created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :invoice_id, :customer_id, :amount, :payment_date, :payment_method, :status,
			:receipt_number, :transaction_id, :cheque_number,
			:created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating payment",
		"payment_id", p.ID,
		"invoice_id", p.InvoiceID,
		"receipt_number", p.ReceiptNumber,
	)

	return execNamed(ctx, r.db.GetQuerier(ctx), query, p, "payment", false)
}

func (r *paymentRepository) Get(ctx context.Context, id string) (*payment.Payment, error) {
	qb := postgres.NewQueryBuilder("SELECT * FROM payments").
		Where("id = :id", map[string]interface{}{"id": id})
	return selectOne[payment.Payment](ctx, r.db.GetQuerier(ctx), qb, "payment")
}

func (r *paymentRepository) List(ctx context.Context, filter *types.PaymentFilter) ([]*payment.Payment, error) {
	qb := r.filtered(postgres.NewQueryBuilder("SELECT * FROM payments"), filter)
	if filter != nil {
		qb = paginate(qb, filter.QueryFilter, "created_at", "payment_date", "amount")
	}
	return selectAll[payment.Payment](ctx, r.db.GetQuerier(ctx), qb, "payment")
}

func (r *paymentRepository) Count(ctx context.Context, filter *types.PaymentFilter) (int, error) {
	qb := r.filtered(postgres.NewQueryBuilder("SELECT COUNT(*) FROM payments"), filter)
	return count(ctx, r.db.GetQuerier(ctx), qb, "payment")
}

func (r *paymentRepository) filtered(qb *postgres.QueryBuilder, filter *types.PaymentFilter) *postgres.QueryBuilder {
	if filter == nil {
		return qb
	}
	return qb.
		WhereIf(len(filter.InvoiceIDs) > 0, "invoice_id IN (:invoice_ids)", map[string]interface{}{"invoice_ids": filter.InvoiceIDs}).
		WhereIf(filter.CustomerID != "", "customer_id = :customer_id", map[string]interface{}{"customer_id": filter.CustomerID}).
		WhereIf(len(filter.Statuses) > 0, "status IN (:statuses)", map[string]interface{}{"statuses": filter.Statuses}).
		WhereIf(filter.StartTime != nil, "payment_date >= :start_time", map[string]interface{}{"start_time": filter.StartTime}).
		WhereIf(filter.EndTime != nil, "payment_date <= :end_time", map[string]interface{}{"end_time": filter.EndTime})
}
