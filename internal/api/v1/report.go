package v1

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/naasdev/naas/internal/api/dto"
	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/logger"
	"github.com/naasdev/naas/internal/service"
)

type ReportHandler struct {
	service service.ReportService
	log     *logger.Logger
}

func NewReportHandler(service service.ReportService, log *logger.Logger) *ReportHandler {
	return &ReportHandler{service: service, log: log}
}

// @Summary Financial report
// @Description Totals over the invoices issued between start_date and end_date, both inclusive
// @Tags Reports
// @Produce json
// @Security ApiKeyAuth
// @Param start_date query string true "Start date (YYYY-MM-DD)"
// @Param end_date query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} dto.FinancialReportResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /reports/financial [get]
func (h *ReportHandler) GetFinancialReport(c *gin.Context) {
	var req dto.FinancialReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Please provide start_date and end_date as YYYY-MM-DD").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetFinancialReport(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Export invoices as CSV
// @Tags Reports
// @Produce text/csv
// @Security ApiKeyAuth
// @Param start_date query string true "Start date (YYYY-MM-DD)"
// @Param end_date query string true "End date (YYYY-MM-DD)"
// @Success 200 {file} file
// @Failure 400 {object} ierr.ErrorResponse
// @Router /reports/financial/export [get]
func (h *ReportHandler) ExportInvoicesCSV(c *gin.Context) {
	var req dto.FinancialReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Please provide start_date and end_date as YYYY-MM-DD").
			Mark(ierr.ErrValidation))
		return
	}

	data, rows, err := h.service.ExportInvoicesCSV(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	filename := fmt.Sprintf("invoices_%s_%s.csv",
		req.StartDate.Format("20060102"), req.EndDate.Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("X-Row-Count", strconv.Itoa(rows))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// @Summary Delivery summary
// @Description Schedules between the optional dates by status, publication and delivery person
// @Tags Reports
// @Produce json
// @Security ApiKeyAuth
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} dto.DeliverySummaryResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /reports/delivery [get]
func (h *ReportHandler) GetDeliverySummary(c *gin.Context) {
	var req dto.DeliverySummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Please provide start_date and end_date as YYYY-MM-DD").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetDeliverySummary(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Customer report
// @Tags Reports
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.CustomerReportResponse
// @Router /reports/customers [get]
func (h *ReportHandler) GetCustomerReport(c *gin.Context) {
	resp, err := h.service.GetCustomerReport(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
