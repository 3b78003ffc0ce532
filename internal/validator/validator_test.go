package validator

import (
	"testing"

	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	InvoiceID string          `validate:"required"`
	Amount    decimal.Decimal `validate:"gt=0"`
}

func TestValidateRequest(t *testing.T) {
	NewValidator()

	require.NoError(t, ValidateRequest(sampleRequest{
		InvoiceID: "inv_1",
		Amount:    decimal.RequireFromString("150.00"),
	}))

	err := ValidateRequest(sampleRequest{Amount: decimal.Zero})
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))

	details := ierr.ReportableDetails(err)
	assert.Contains(t, details, "InvoiceID")
	assert.Contains(t, details, "Amount")
}
