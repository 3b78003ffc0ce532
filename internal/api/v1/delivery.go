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

type DeliveryHandler struct {
	service service.DeliveryService
	log     *logger.Logger
}

func NewDeliveryHandler(service service.DeliveryService, log *logger.Logger) *DeliveryHandler {
	return &DeliveryHandler{service: service, log: log}
}

// @Summary Add delivery personnel
// @Tags Delivery
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param personnel body dto.CreatePersonnelRequest true "Delivery personnel"
// @Success 201 {object} dto.PersonnelResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /delivery/personnel [post]
func (h *DeliveryHandler) CreatePersonnel(c *gin.Context) {
	var req dto.CreatePersonnelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreatePersonnel(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary List delivery personnel
// @Tags Delivery
// @Produce json
// @Security ApiKeyAuth
// @Param filter query types.DeliveryPersonnelFilter false "Filter"
// @Success 200 {object} dto.ListPersonnelResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /delivery/personnel [get]
func (h *DeliveryHandler) ListPersonnel(c *gin.Context) {
	filter := types.NewDeliveryPersonnelFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListPersonnel(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get delivery personnel
// @Tags Delivery
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Personnel ID"
// @Success 200 {object} dto.PersonnelResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /delivery/personnel/{id} [get]
func (h *DeliveryHandler) GetPersonnel(c *gin.Context) {
	resp, err := h.service.GetPersonnel(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Generate daily delivery schedules
// @Description Assign every subscription due on the date to active personnel in turn. Defaults to today.
// @Tags Delivery
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.GenerateSchedulesRequest false "Date"
// @Success 201 {object} dto.GenerateSchedulesResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /delivery/schedules [post]
func (h *DeliveryHandler) GenerateDailySchedules(c *gin.Context) {
	var req dto.GenerateSchedulesRequest
	// an empty body means today
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(ierr.WithError(err).
				WithHint("Invalid request format").
				Mark(ierr.ErrValidation))
			return
		}
	}

	resp, err := h.service.GenerateDailySchedules(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a delivery round
// @Tags Delivery
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Personnel ID"
// @Param date query string false "Only this date (YYYY-MM-DD)"
// @Success 200 {object} dto.PersonnelScheduleResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /delivery/personnel/{id}/schedules [get]
func (h *DeliveryHandler) GetPersonnelSchedule(c *gin.Context) {
	var req dto.PersonnelScheduleRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Please provide date as YYYY-MM-DD").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetPersonnelSchedule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Update delivery status
// @Tags Delivery
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Schedule ID"
// @Param request body dto.UpdateDeliveryStatusRequest true "New status"
// @Success 200 {object} dto.ScheduleResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /delivery/schedules/{id} [patch]
func (h *DeliveryHandler) UpdateDeliveryStatus(c *gin.Context) {
	var req dto.UpdateDeliveryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdateDeliveryStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Calculate commission
// @Description Commission on the publications delivered between the optional dates
// @Tags Delivery
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Personnel ID"
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} dto.CommissionResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /delivery/personnel/{id}/commission [get]
func (h *DeliveryHandler) CalculateCommission(c *gin.Context) {
	var req dto.CommissionRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Please provide start_date and end_date as YYYY-MM-DD").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CalculateCommission(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
