package service

import (
	"context"
	"fmt"

	"github.com/naasdev/naas/internal/api/dto"
	"github.com/naasdev/naas/internal/domain/customer"
	"github.com/naasdev/naas/internal/domain/invoice"
	"github.com/naasdev/naas/internal/domain/payment"
	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/types"
	"github.com/samber/lo"
)

type PaymentService interface {
	// ProcessPayment settles an invoice in full. Partial and over payments
	// are rejected.
	ProcessPayment(ctx context.Context, req dto.ProcessPaymentRequest) (*dto.ProcessPaymentResponse, error)
	GetPayment(ctx context.Context, id string) (*dto.PaymentResponse, error)
	ListPayments(ctx context.Context, filter *types.PaymentFilter) (*dto.ListPaymentsResponse, error)
}

type paymentService struct {
	ServiceParams
}

func NewPaymentService(params ServiceParams) PaymentService {
	return &paymentService{
		ServiceParams: params,
	}
}

func (s *paymentService) ProcessPayment(ctx context.Context, req dto.ProcessPaymentRequest) (*dto.ProcessPaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	var (
		p   *payment.Payment
		inv *invoice.Invoice
		c   *customer.Customer
	)

	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		inv, err = s.InvoiceRepo.GetForUpdate(txCtx, req.InvoiceID)
		if err != nil {
			return err
		}

		if !inv.IsUnpaid() {
			return ierr.NewError("invoice is not payable").
				WithHintf("Invoice %s is already %s", inv.InvoiceNumber, inv.Status).
				WithReportableDetails(map[string]any{
					"invoice_id": inv.ID,
					"status":     inv.Status,
				}).
				Mark(ierr.ErrInvalidOperation)
		}

		if !req.Amount.Equal(inv.Total) {
			return ierr.NewError("payment amount does not match invoice total").
				WithHint("Payment amount must match invoice total").
				WithReportableDetails(map[string]any{
					"expected": inv.Total.StringFixed(2),
					"received": req.Amount.String(),
				}).
				Mark(ierr.ErrValidation)
		}

		p = &payment.Payment{
			ID:            types.GenerateUUID(),
			InvoiceID:     inv.ID,
			CustomerID:    inv.CustomerID,
			Amount:        inv.Total,
			PaymentDate:   now,
			PaymentMethod: req.PaymentMethod,
			Status:        types.PaymentStatusCompleted,
			ReceiptNumber: types.GenerateReceiptNumber(now),
			TransactionID: req.TransactionID,
			ChequeNumber:  req.ChequeNumber,
			BaseModel:     types.GetDefaultBaseModel(txCtx),
		}
		if err := p.Validate(); err != nil {
			return err
		}
		if err := s.PaymentRepo.Create(txCtx, p); err != nil {
			return err
		}

		if err := inv.MarkPaid(); err != nil {
			return err
		}
		inv.Touch(txCtx)
		if err := s.InvoiceRepo.Update(txCtx, inv); err != nil {
			return err
		}

		c, err = s.settleCustomer(txCtx, inv.CustomerID)
		return err
	})
	if err != nil {
		if ierr.IsValidation(err) || ierr.IsInvalidOperation(err) {
			s.Metrics.PaymentsTotal.WithLabelValues(string(req.PaymentMethod), "rejected").Inc()
		}
		return nil, err
	}

	s.Metrics.PaymentsTotal.WithLabelValues(string(p.PaymentMethod), "completed").Inc()
	f, _ := p.Amount.Float64()
	s.Metrics.PaymentAmount.Add(f)

	s.Logger.Infow("processed payment",
		"payment_id", p.ID,
		"invoice_id", inv.ID,
		"customer_id", c.ID,
		"amount", p.Amount.String(),
		"receipt_number", p.ReceiptNumber,
	)

	s.notify(ctx, c, types.NotificationTypePaymentConfirmation,
		fmt.Sprintf("Your payment of %s for invoice %s has been received. Receipt number: %s.",
			p.Amount.StringFixed(2), inv.InvoiceNumber, p.ReceiptNumber))

	return &dto.ProcessPaymentResponse{
		Message:       "Payment processed successfully",
		Payment:       p,
		ReceiptNumber: p.ReceiptNumber,
	}, nil
}

// settleCustomer refreshes the customer's dues after a payment. With no
// unpaid invoice left the dues are cleared and a suspension is lifted.
func (s *paymentService) settleCustomer(ctx context.Context, customerID string) (*customer.Customer, error) {
	c, err := s.CustomerRepo.GetForUpdate(ctx, customerID)
	if err != nil {
		return nil, err
	}

	unpaid, err := s.InvoiceRepo.ListUnpaidByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if len(unpaid) == 0 {
		if c.Settle() {
			s.Logger.Infow("reactivated customer after settlement", "customer_id", c.ID)
		}
	} else {
		c.OutstandingDue = invoice.SumTotals(lo.Filter(unpaid, func(inv *invoice.Invoice, _ int) bool {
			return inv.Status == types.InvoiceStatusOverdue
		}))
	}

	c.Touch(ctx)
	if err := s.CustomerRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *paymentService) GetPayment(ctx context.Context, id string) (*dto.PaymentResponse, error) {
	p, err := s.PaymentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.PaymentResponse{Payment: p}, nil
}

func (s *paymentService) ListPayments(ctx context.Context, filter *types.PaymentFilter) (*dto.ListPaymentsResponse, error) {
	if filter == nil {
		filter = &types.PaymentFilter{}
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	payments, err := s.PaymentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.PaymentRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := types.NewListResponse(lo.Map(payments, func(p *payment.Payment, _ int) *dto.PaymentResponse {
		return &dto.PaymentResponse{Payment: p}
	}), total, filter)
	return &resp, nil
}
