package payment

import (
	"testing"

	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPaymentValidate(t *testing.T) {
	valid := func() *Payment {
		return &Payment{
			InvoiceID:     "inv-1",
			Amount:        decimal.RequireFromString("150.00"),
			PaymentMethod: types.PaymentMethodUPI,
			Status:        types.PaymentStatusCompleted,
		}
	}

	tests := []struct {
		name    string
		mutate  func(p *Payment)
		wantErr bool
	}{
		{name: "valid", mutate: func(p *Payment) {}},
		{name: "missing invoice", mutate: func(p *Payment) { p.InvoiceID = "" }, wantErr: true},
		{name: "zero amount", mutate: func(p *Payment) { p.Amount = decimal.Zero }, wantErr: true},
		{name: "unknown method", mutate: func(p *Payment) { p.PaymentMethod = "BARTER" }, wantErr: true},
		{name: "cheque without number", mutate: func(p *Payment) { p.PaymentMethod = types.PaymentMethodCheque }, wantErr: true},
		{
			name: "cheque with number",
			mutate: func(p *Payment) {
				p.PaymentMethod = types.PaymentMethodCheque
				p.ChequeNumber = lo.ToPtr("000123")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(p)
			err := p.Validate()
			if tt.wantErr {
				assert.True(t, ierr.IsValidation(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}
