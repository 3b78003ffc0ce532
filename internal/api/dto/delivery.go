package dto

import (
	"context"
	"time"

	"github.com/naasdev/naas/internal/domain/delivery"
	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/types"
	"github.com/naasdev/naas/internal/validator"
	"github.com/shopspring/decimal"
)

type CreatePersonnelRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Phone   string `json:"phone" validate:"required,max=32"`
	Address string `json:"address"`
	// JoiningDate defaults to today
	JoiningDate *time.Time `json:"joining_date,omitempty"`
	// CommissionRate is a percentage and defaults to 2.50
	CommissionRate *decimal.Decimal `json:"commission_rate,omitempty" swaggertype:"string"`
}

func (r *CreatePersonnelRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *CreatePersonnelRequest) ToPersonnel(ctx context.Context, now time.Time) *delivery.Personnel {
	joined := now
	if r.JoiningDate != nil {
		joined = *r.JoiningDate
	}
	rate := delivery.DefaultCommissionRate
	if r.CommissionRate != nil {
		rate = r.CommissionRate.Round(2)
	}
	return &delivery.Personnel{
		ID:             types.GenerateUUID(),
		Name:           r.Name,
		Phone:          r.Phone,
		Address:        r.Address,
		JoiningDate:    types.DateOf(joined),
		IsActive:       true,
		CommissionRate: rate,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
}

type PersonnelResponse struct {
	*delivery.Personnel
}

type ListPersonnelResponse = types.ListResponse[*PersonnelResponse]

type GenerateSchedulesRequest struct {
	// Date defaults to today
	Date *time.Time `json:"date,omitempty"`
}

type GenerateSchedulesResponse struct {
	Message          string    `json:"message"`
	Date             time.Time `json:"date"`
	SchedulesCreated int       `json:"schedules_created"`
	SchedulesSkipped int       `json:"schedules_skipped"`
}

type PersonnelScheduleRequest struct {
	Date *time.Time `form:"date" time_format:"2006-01-02"`
}

type PersonnelSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ScheduledPublication struct {
	Name string                `json:"name"`
	Type types.PublicationType `json:"type"`
}

type ScheduledCustomer struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// ScheduleEntry is one stop on a delivery round
type ScheduleEntry struct {
	ScheduleID  string               `json:"schedule_id"`
	Date        time.Time            `json:"date"`
	Status      types.DeliveryStatus `json:"status"`
	Publication ScheduledPublication `json:"publication"`
	Customer    ScheduledCustomer    `json:"customer"`
}

type PersonnelScheduleResponse struct {
	Personnel PersonnelSummary `json:"personnel"`
	Schedules []*ScheduleEntry `json:"schedules"`
}

type UpdateDeliveryStatusRequest struct {
	Status types.DeliveryStatus `json:"status" validate:"required"`
	Notes  *string              `json:"notes,omitempty"`
	// DeliveryTime is kept for DELIVERED and defaults to now
	DeliveryTime *time.Time `json:"delivery_time,omitempty"`
}

func (r *UpdateDeliveryStatusRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.Status.Validate()
}

type ScheduleResponse struct {
	*delivery.Schedule
}

type CommissionRequest struct {
	StartDate *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate   *time.Time `form:"end_date" time_format:"2006-01-02"`
}

func (r *CommissionRequest) Validate() error {
	if r.StartDate != nil && r.EndDate != nil && r.EndDate.Before(*r.StartDate) {
		return ierr.NewError("end_date before start_date").
			WithHint("End date must not be before start date").
			Mark(ierr.ErrValidation)
	}
	return nil
}

type CommissionPeriod struct {
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

type DeliveryDetail struct {
	Date        time.Time       `json:"date"`
	Publication string          `json:"publication"`
	Price       decimal.Decimal `json:"price" swaggertype:"string"`
}

type CommissionResponse struct {
	PersonnelID      string            `json:"personnel_id"`
	PersonnelName    string            `json:"personnel_name"`
	CommissionRate   string            `json:"commission_rate"`
	TotalDeliveries  int               `json:"total_deliveries"`
	TotalValue       decimal.Decimal   `json:"total_value" swaggertype:"string"`
	CommissionAmount decimal.Decimal   `json:"commission_amount" swaggertype:"string"`
	Period           CommissionPeriod  `json:"period"`
	DeliveryDetails  []*DeliveryDetail `json:"delivery_details"`
}
