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

type PublicationHandler struct {
	service service.PublicationService
	log     *logger.Logger
}

func NewPublicationHandler(service service.PublicationService, log *logger.Logger) *PublicationHandler {
	return &PublicationHandler{service: service, log: log}
}

// @Summary Create a publication
// @Tags Publications
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param publication body dto.CreatePublicationRequest true "Publication"
// @Success 201 {object} dto.PublicationResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Router /publications [post]
func (h *PublicationHandler) CreatePublication(c *gin.Context) {
	var req dto.CreatePublicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreatePublication(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a publication
// @Tags Publications
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Publication ID"
// @Success 200 {object} dto.PublicationResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /publications/{id} [get]
func (h *PublicationHandler) GetPublication(c *gin.Context) {
	resp, err := h.service.GetPublication(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List publications
// @Description Active publications unless include_inactive is set
// @Tags Publications
// @Produce json
// @Security ApiKeyAuth
// @Param filter query types.PublicationFilter false "Filter"
// @Success 200 {object} dto.ListPublicationsResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /publications [get]
func (h *PublicationHandler) GetPublications(c *gin.Context) {
	filter := types.NewPublicationFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetPublications(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Update a publication
// @Tags Publications
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Publication ID"
// @Param publication body dto.UpdatePublicationRequest true "Changes"
// @Success 200 {object} dto.PublicationResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /publications/{id} [put]
func (h *PublicationHandler) UpdatePublication(c *gin.Context) {
	var req dto.UpdatePublicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdatePublication(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
