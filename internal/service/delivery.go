package service

import (
	"context"
	"fmt"

	"github.com/naasdev/naas/internal/api/dto"
	"github.com/naasdev/naas/internal/domain/delivery"
	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type DeliveryService interface {
	CreatePersonnel(ctx context.Context, req dto.CreatePersonnelRequest) (*dto.PersonnelResponse, error)
	GetPersonnel(ctx context.Context, id string) (*dto.PersonnelResponse, error)
	ListPersonnel(ctx context.Context, filter *types.DeliveryPersonnelFilter) (*dto.ListPersonnelResponse, error)

	// GenerateDailySchedules assigns every subscription due on the day to
	// active personnel in turn. Subscriptions already scheduled are skipped.
	GenerateDailySchedules(ctx context.Context, req dto.GenerateSchedulesRequest) (*dto.GenerateSchedulesResponse, error)
	GetPersonnelSchedule(ctx context.Context, personnelID string, req dto.PersonnelScheduleRequest) (*dto.PersonnelScheduleResponse, error)
	UpdateDeliveryStatus(ctx context.Context, scheduleID string, req dto.UpdateDeliveryStatusRequest) (*dto.ScheduleResponse, error)
	CalculateCommission(ctx context.Context, personnelID string, req dto.CommissionRequest) (*dto.CommissionResponse, error)
}

type deliveryService struct {
	ServiceParams
}

func NewDeliveryService(params ServiceParams) DeliveryService {
	return &deliveryService{
		ServiceParams: params,
	}
}

func (s *deliveryService) CreatePersonnel(ctx context.Context, req dto.CreatePersonnelRequest) (*dto.PersonnelResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p := req.ToPersonnel(ctx, s.Clock.Now())
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.PersonnelRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.Logger.Infow("created delivery personnel",
		"personnel_id", p.ID,
		"commission_rate", p.CommissionRate.StringFixed(2),
	)
	return &dto.PersonnelResponse{Personnel: p}, nil
}

func (s *deliveryService) GetPersonnel(ctx context.Context, id string) (*dto.PersonnelResponse, error) {
	p, err := s.PersonnelRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.PersonnelResponse{Personnel: p}, nil
}

func (s *deliveryService) ListPersonnel(ctx context.Context, filter *types.DeliveryPersonnelFilter) (*dto.ListPersonnelResponse, error) {
	if filter == nil {
		filter = types.NewDeliveryPersonnelFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	items, err := s.PersonnelRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.PersonnelRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := types.NewListResponse(lo.Map(items, func(p *delivery.Personnel, _ int) *dto.PersonnelResponse {
		return &dto.PersonnelResponse{Personnel: p}
	}), total, filter)
	return &resp, nil
}

func (s *deliveryService) GenerateDailySchedules(ctx context.Context, req dto.GenerateSchedulesRequest) (*dto.GenerateSchedulesResponse, error) {
	day := types.DateOf(s.Clock.Now())
	if req.Date != nil {
		day = types.DateOf(*req.Date)
	}

	personnel, err := s.PersonnelRepo.List(ctx, &types.DeliveryPersonnelFilter{
		QueryFilter: &types.QueryFilter{
			Sort:  lo.ToPtr("created_at"),
			Order: lo.ToPtr(types.OrderAsc),
		},
		ActiveOnly: true,
	})
	if err != nil {
		return nil, err
	}
	if len(personnel) == 0 {
		return nil, ierr.NewError("no active delivery personnel").
			WithHint("No active delivery personnel available").
			WithReportableDetails(map[string]any{"date": day}).
			Mark(ierr.ErrInvalidOperation)
	}

	subs, err := s.SubRepo.ListDeliverableOn(ctx, day)
	if err != nil {
		return nil, err
	}

	publications := NewPublicationService(s.ServiceParams)
	due := subs[:0]
	for _, sub := range subs {
		pub, err := publications.GetPublication(ctx, sub.PublicationID)
		if err != nil {
			return nil, err
		}
		if pub.Frequency.DeliversOn(sub.StartDate, day) {
			due = append(due, sub)
		}
	}

	existing, err := s.ScheduleRepo.ScheduledSubscriptions(ctx, day)
	if err != nil {
		return nil, err
	}
	scheduled := lo.SliceToMap(existing, func(id string) (string, struct{}) {
		return id, struct{}{}
	})

	resp := &dto.GenerateSchedulesResponse{
		Message: "Delivery schedules generated successfully",
		Date:    day,
	}

	// the round robin index counts every due subscription so reruns keep assignments
	for i, sub := range due {
		if _, ok := scheduled[sub.ID]; ok {
			resp.SchedulesSkipped++
			continue
		}

		sch := &delivery.Schedule{
			ID:             types.GenerateUUID(),
			Date:           day,
			Status:         types.DeliveryStatusScheduled,
			SubscriptionID: sub.ID,
			PersonnelID:    personnel[i%len(personnel)].ID,
			BaseModel:      types.GetDefaultBaseModel(ctx),
		}
		err := s.ScheduleRepo.Create(ctx, sch)
		if ierr.IsAlreadyExists(err) {
			resp.SchedulesSkipped++
			continue
		}
		if err != nil {
			return nil, err
		}
		resp.SchedulesCreated++
	}

	s.Metrics.DeliveriesScheduled.WithLabelValues("created").Add(float64(resp.SchedulesCreated))
	s.Metrics.DeliveriesScheduled.WithLabelValues("skipped").Add(float64(resp.SchedulesSkipped))

	s.Logger.Infow("generated delivery schedules",
		"date", day.Format(dateLayout),
		"due", len(due),
		"created", resp.SchedulesCreated,
		"skipped", resp.SchedulesSkipped,
		"personnel", len(personnel),
	)
	return resp, nil
}

func (s *deliveryService) GetPersonnelSchedule(ctx context.Context, personnelID string, req dto.PersonnelScheduleRequest) (*dto.PersonnelScheduleResponse, error) {
	p, err := s.PersonnelRepo.Get(ctx, personnelID)
	if err != nil {
		return nil, err
	}

	filter := types.NewNoLimitDeliveryScheduleFilter()
	filter.PersonnelID = p.ID
	if req.Date != nil {
		day := types.DateOf(*req.Date)
		filter.StartTime = &day
		filter.EndTime = &day
	}

	schedules, err := s.ScheduleRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := &dto.PersonnelScheduleResponse{
		Personnel: dto.PersonnelSummary{ID: p.ID, Name: p.Name},
		Schedules: make([]*dto.ScheduleEntry, 0, len(schedules)),
	}

	publications := NewPublicationService(s.ServiceParams)
	for _, sch := range schedules {
		sub, err := s.SubRepo.Get(ctx, sch.SubscriptionID)
		if err != nil {
			return nil, err
		}
		pub, err := publications.GetPublication(ctx, sub.PublicationID)
		if err != nil {
			return nil, err
		}
		c, err := s.CustomerRepo.Get(ctx, sub.CustomerID)
		if err != nil {
			return nil, err
		}

		resp.Schedules = append(resp.Schedules, &dto.ScheduleEntry{
			ScheduleID:  sch.ID,
			Date:        sch.Date,
			Status:      sch.Status,
			Publication: dto.ScheduledPublication{Name: pub.Name, Type: pub.Type},
			Customer: dto.ScheduledCustomer{
				Name:    c.Name,
				Address: c.Address,
				Phone:   c.Phone,
			},
		})
	}
	return resp, nil
}

func (s *deliveryService) UpdateDeliveryStatus(ctx context.Context, scheduleID string, req dto.UpdateDeliveryStatusRequest) (*dto.ScheduleResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sch, err := s.ScheduleRepo.Get(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	if err := sch.UpdateStatus(req.Status, req.DeliveryTime, s.Clock.Now()); err != nil {
		return nil, err
	}
	if req.Notes != nil {
		sch.Notes = *req.Notes
	}
	sch.Touch(ctx)

	if err := s.ScheduleRepo.Update(ctx, sch); err != nil {
		return nil, err
	}
	s.Metrics.DeliveryStatus.WithLabelValues(string(sch.Status)).Inc()

	if sch.Status == types.DeliveryStatusMissed {
		s.notifyMissed(ctx, sch)
	}
	return &dto.ScheduleResponse{Schedule: sch}, nil
}

// notifyMissed tells the subscriber a drop was missed. Lookup failures only
// cost the notification.
func (s *deliveryService) notifyMissed(ctx context.Context, sch *delivery.Schedule) {
	sub, err := s.SubRepo.Get(ctx, sch.SubscriptionID)
	if err != nil {
		s.Logger.Errorw("failed to load subscription for delivery update",
			"schedule_id", sch.ID,
			"error", err,
		)
		return
	}
	c, err := s.CustomerRepo.Get(ctx, sub.CustomerID)
	if err != nil {
		s.Logger.Errorw("failed to load customer for delivery update",
			"schedule_id", sch.ID,
			"error", err,
		)
		return
	}
	pub, err := NewPublicationService(s.ServiceParams).GetPublication(ctx, sub.PublicationID)
	if err != nil {
		s.Logger.Errorw("failed to load publication for delivery update",
			"schedule_id", sch.ID,
			"error", err,
		)
		return
	}

	s.notify(ctx, c, types.NotificationTypeDeliveryUpdate,
		fmt.Sprintf("Your %s delivery for %s could not be made.", pub.Name, sch.Date.Format(longDateLayout)))
}

// CalculateCommission totals the publication prices of every delivered drop
// in the range and applies the personnel's commission rate
func (s *deliveryService) CalculateCommission(ctx context.Context, personnelID string, req dto.CommissionRequest) (*dto.CommissionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.PersonnelRepo.Get(ctx, personnelID)
	if err != nil {
		return nil, err
	}

	filter := types.NewNoLimitDeliveryScheduleFilter()
	filter.PersonnelID = p.ID
	filter.Statuses = []types.DeliveryStatus{types.DeliveryStatusDelivered}
	filter.StartTime = req.StartDate
	filter.EndTime = req.EndDate

	delivered, err := s.ScheduleRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := &dto.CommissionResponse{
		PersonnelID:     p.ID,
		PersonnelName:   p.Name,
		CommissionRate:  p.CommissionRate.StringFixed(2) + "%",
		TotalDeliveries: len(delivered),
		TotalValue:      decimal.Zero,
		Period:          dto.CommissionPeriod{StartDate: req.StartDate, EndDate: req.EndDate},
		DeliveryDetails: make([]*dto.DeliveryDetail, 0, len(delivered)),
	}

	publications := NewPublicationService(s.ServiceParams)
	for _, sch := range delivered {
		sub, err := s.SubRepo.Get(ctx, sch.SubscriptionID)
		if err != nil {
			return nil, err
		}
		pub, err := publications.GetPublication(ctx, sub.PublicationID)
		if err != nil {
			return nil, err
		}

		resp.TotalValue = resp.TotalValue.Add(pub.Price)
		resp.DeliveryDetails = append(resp.DeliveryDetails, &dto.DeliveryDetail{
			Date:        sch.Date,
			Publication: pub.Name,
			Price:       pub.Price,
		})
	}
	resp.CommissionAmount = p.Commission(resp.TotalValue)

	return resp, nil
}
