package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/naasdev/naas/internal/api/dto"
	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/logger"
	"github.com/naasdev/naas/internal/service"
	"github.com/naasdev/naas/internal/types"
)

type PaymentHandler struct {
	service service.PaymentService
	log     *logger.Logger
}

func NewPaymentHandler(service service.PaymentService, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{service: service, log: log}
}

// @Summary Pay an invoice
// @Description Settle an invoice in full. The amount must equal the invoice total.
// @Tags Billing
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param payment body dto.ProcessPaymentRequest true "Payment"
// @Success 200 {object} dto.ProcessPaymentResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /billing/payments [post]
func (h *PaymentHandler) ProcessPayment(c *gin.Context) {
	var req dto.ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debugw("failed to bind payment request", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ProcessPayment(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get a payment
// @Tags Billing
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Payment ID"
// @Success 200 {object} dto.PaymentResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /billing/payments/{id} [get]
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	resp, err := h.service.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List payments
// @Tags Billing
// @Produce json
// @Security ApiKeyAuth
// @Param filter query types.PaymentFilter false "Filter"
// @Success 200 {object} dto.ListPaymentsResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /billing/payments [get]
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	filter := &types.PaymentFilter{QueryFilter: types.NewDefaultQueryFilter()}
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListPayments(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
