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

type InvoiceHandler struct {
	invoiceService service.InvoiceService
	overdueService service.OverdueService
	logger         *logger.Logger
}

func NewInvoiceHandler(invoiceService service.InvoiceService, overdueService service.OverdueService, logger *logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		overdueService: overdueService,
		logger:         logger,
	}
}

// @Summary Generate monthly invoices
// @Description Bill every active customer for the month. Month and year default to the current month. Customers already billed for the month are skipped.
// @Tags Billing
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.GenerateInvoicesRequest false "Billing month"
// @Success 200 {object} dto.GenerateInvoicesResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /billing/invoices [post]
func (h *InvoiceHandler) GenerateMonthlyInvoices(c *gin.Context) {
	var req dto.GenerateInvoicesRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(ierr.WithError(err).
				WithHint("Invalid request format").
				Mark(ierr.ErrValidation))
			return
		}
	}

	resp, err := h.invoiceService.GenerateMonthlyInvoices(c.Request.Context(), req)
	if err != nil {
		h.logger.Errorw("failed to generate monthly invoices", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List invoices
// @Tags Billing
// @Produce json
// @Security ApiKeyAuth
// @Param filter query types.InvoiceFilter false "Filter"
// @Success 200 {object} dto.ListInvoicesResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /billing/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	filter := types.NewInvoiceFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.invoiceService.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get an invoice
// @Tags Billing
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /billing/invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	resp, err := h.invoiceService.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List a customer's invoices
// @Description Invoices with their payments, newest first
// @Tags Billing
// @Produce json
// @Security ApiKeyAuth
// @Param customer_id path string true "Customer ID"
// @Success 200 {object} dto.CustomerInvoicesResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /billing/invoices/customer/{customer_id} [get]
func (h *InvoiceHandler) GetCustomerInvoices(c *gin.Context) {
	resp, err := h.invoiceService.ListCustomerInvoices(c.Request.Context(), c.Param("customer_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Process overdue invoices
// @Description Mark invoices past their due date as overdue, remind customers and discontinue long standing debtors
// @Tags Billing
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.ProcessOverdueResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /billing/invoices/process-overdue [post]
func (h *InvoiceHandler) ProcessOverdueInvoices(c *gin.Context) {
	resp, err := h.overdueService.ProcessOverdueInvoices(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to process overdue invoices", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
