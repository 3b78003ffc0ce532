package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/logger"
	"github.com/naasdev/naas/internal/service"
	"github.com/naasdev/naas/internal/types"
)

type NotificationHandler struct {
	service service.NotificationService
	log     *logger.Logger
}

func NewNotificationHandler(service service.NotificationService, log *logger.Logger) *NotificationHandler {
	return &NotificationHandler{service: service, log: log}
}

// @Summary List my notifications
// @Description Notifications addressed to the authenticated user
// @Tags Notifications
// @Produce json
// @Security ApiKeyAuth
// @Param filter query types.NotificationFilter false "Filter"
// @Success 200 {object} dto.ListNotificationsResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	filter := types.NewNotificationFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListNotifications(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Mark a notification as read
// @Tags Notifications
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} dto.NotificationResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	resp, err := h.service.MarkRead(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Send pending notifications
// @Tags Notifications
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.DispatchNotificationsResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /notifications/dispatch [post]
func (h *NotificationHandler) DispatchPending(c *gin.Context) {
	resp, err := h.service.DispatchPending(c.Request.Context())
	if err != nil {
		h.log.Errorw("failed to dispatch pending notifications", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
