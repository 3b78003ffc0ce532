package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusFromErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NewError("invoice not found").Mark(ErrNotFound), http.StatusNotFound},
		{"validation", NewError("amount mismatch").Mark(ErrValidation), http.StatusBadRequest},
		{"invalid operation", NewError("already paid").Mark(ErrInvalidOperation), http.StatusBadRequest},
		{"conflict", NewError("duplicate").Mark(ErrAlreadyExists), http.StatusConflict},
		{"forbidden", NewError("not yours").Mark(ErrPermissionDenied), http.StatusForbidden},
		{"database", WithError(fmt.Errorf("conn reset")).Mark(ErrDatabase), http.StatusInternalServerError},
		{"unmarked", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFromErr(tt.err))
		})
	}
}

func TestMarkSurvivesWrapping(t *testing.T) {
	err := NewError("invoice not found").Mark(ErrNotFound)
	wrapped := WithError(err).WithMessage("processing payment").Error()

	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsValidation(wrapped))
}

func TestNewErrorResponse(t *testing.T) {
	err := NewError("payment amount mismatch").
		WithHint("Payment amount must match invoice total").
		WithReportableDetails(map[string]any{
			"expected": "150.00",
			"received": "149.99",
		}).
		Mark(ErrValidation)

	resp := NewErrorResponse(err)
	assert.False(t, resp.Success)
	assert.Equal(t, "Payment amount must match invoice total", resp.Error.Display)
	assert.Equal(t, "150.00", resp.Error.Details["expected"])
	assert.Equal(t, "149.99", resp.Error.Details["received"])
}

func TestNewErrorResponse_NoHint(t *testing.T) {
	resp := NewErrorResponse(fmt.Errorf("boom"))
	assert.Equal(t, "An unexpected error occurred", resp.Error.Display)
	assert.Nil(t, resp.Error.Details)
}
