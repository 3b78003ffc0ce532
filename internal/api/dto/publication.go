package dto

import (
	"context"

	"github.com/naasdev/naas/internal/domain/publication"
	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/types"
	"github.com/naasdev/naas/internal/validator"
	"github.com/shopspring/decimal"
)

type CreatePublicationRequest struct {
	Name        string                     `json:"name" validate:"required,max=255"`
	Description string                     `json:"description"`
	Type        types.PublicationType      `json:"type" validate:"required"`
	Frequency   types.PublicationFrequency `json:"frequency" validate:"required"`
	Price       decimal.Decimal            `json:"price" validate:"required,gt=0" swaggertype:"string"`
}

func (r *CreatePublicationRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := r.Type.Validate(); err != nil {
		return err
	}
	return r.Frequency.Validate()
}

func (r *CreatePublicationRequest) ToPublication(ctx context.Context) *publication.Publication {
	return &publication.Publication{
		ID:          types.GenerateUUID(),
		Name:        r.Name,
		Description: r.Description,
		Type:        r.Type,
		Frequency:   r.Frequency,
		Price:       r.Price.Round(2),
		IsActive:    true,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
}

type UpdatePublicationRequest struct {
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty" swaggertype:"string"`
	IsActive    *bool            `json:"is_active,omitempty"`
}

func (r *UpdatePublicationRequest) Validate() error {
	if r.Price != nil && !r.Price.IsPositive() {
		return ierr.NewError("price must be positive").
			WithHint("Publication price must be greater than zero").
			Mark(ierr.ErrValidation)
	}
	return nil
}

type PublicationResponse struct {
	*publication.Publication
}

type ListPublicationsResponse = types.ListResponse[*PublicationResponse]
