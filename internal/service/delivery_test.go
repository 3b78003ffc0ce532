package service

import (
	"testing"
	"time"

	"github.com/naasdev/naas/internal/api/dto"
	"github.com/naasdev/naas/internal/domain/publication"
	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/testutil"
	"github.com/naasdev/naas/internal/types"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type DeliveryServiceSuite struct {
	testutil.BaseServiceTestSuite
	service DeliveryService
}

func TestDeliveryService(t *testing.T) {
	suite.Run(t, new(DeliveryServiceSuite))
}

func (s *DeliveryServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewDeliveryService(newTestServiceParams(&s.BaseServiceTestSuite))
}

func (s *DeliveryServiceSuite) publication(name string, freq types.PublicationFrequency, price string) *publication.Publication {
	p := createTestPublication(&s.BaseServiceTestSuite, name, price)
	p.Frequency = freq
	s.NoError(s.GetStores().PublicationRepo.Update(s.GetContext(), p))
	return p
}

func (s *DeliveryServiceSuite) schedulesFor(personnelID string) int {
	n, err := s.GetStores().ScheduleRepo.Count(s.GetContext(), &types.DeliveryScheduleFilter{PersonnelID: personnelID})
	s.NoError(err)
	return n
}

func (s *DeliveryServiceSuite) TestCreatePersonnel_Defaults() {
	resp, err := s.service.CreatePersonnel(s.GetContext(), dto.CreatePersonnelRequest{
		Name:  "Suresh",
		Phone: "9811111111",
	})
	s.NoError(err)
	s.True(resp.IsActive)
	s.True(decimal.RequireFromString("2.50").Equal(resp.CommissionRate))
	s.Equal(date(2025, time.January, 20), resp.JoiningDate)

	_, err = s.service.CreatePersonnel(s.GetContext(), dto.CreatePersonnelRequest{
		Name:           "Anil",
		Phone:          "9822222222",
		CommissionRate: lo.ToPtr(decimal.NewFromInt(120)),
	})
	s.True(ierr.IsValidation(err))

	_, err = s.service.CreatePersonnel(s.GetContext(), dto.CreatePersonnelRequest{Name: "No Phone"})
	s.True(ierr.IsValidation(err))
}

func (s *DeliveryServiceSuite) TestListPersonnel_ActiveOnly() {
	createTestPersonnel(&s.BaseServiceTestSuite, "Suresh", "2.50")
	retired := createTestPersonnel(&s.BaseServiceTestSuite, "Anil", "2.50")
	retired.IsActive = false
	s.NoError(s.GetStores().PersonnelRepo.Update(s.GetContext(), retired))

	all, err := s.service.ListPersonnel(s.GetContext(), nil)
	s.NoError(err)
	s.Len(all.Items, 2)

	filter := types.NewDeliveryPersonnelFilter()
	filter.ActiveOnly = true
	active, err := s.service.ListPersonnel(s.GetContext(), filter)
	s.NoError(err)
	s.Require().Len(active.Items, 1)
	s.Equal("Suresh", active.Items[0].Name)
}

func (s *DeliveryServiceSuite) TestGenerateDailySchedules_RoundRobin() {
	first := createTestPersonnel(&s.BaseServiceTestSuite, "Suresh", "2.50")
	second := createTestPersonnel(&s.BaseServiceTestSuite, "Anil", "2.50")

	pub := s.publication("Morning Herald", types.PublicationFrequencyDaily, "310")
	for _, name := range []string{"Asha", "Ravi", "Meera"} {
		c := createTestCustomer(&s.BaseServiceTestSuite, name, types.CustomerStatusActive)
		createTestSubscription(&s.BaseServiceTestSuite, c, pub, date(2024, time.December, 1))
	}

	resp, err := s.service.GenerateDailySchedules(s.GetContext(), dto.GenerateSchedulesRequest{})
	s.NoError(err)
	s.Equal("Delivery schedules generated successfully", resp.Message)
	s.Equal(date(2025, time.January, 20), resp.Date)
	s.Equal(3, resp.SchedulesCreated)
	s.Zero(resp.SchedulesSkipped)

	s.Equal(2, s.schedulesFor(first.ID))
	s.Equal(1, s.schedulesFor(second.ID))
	s.Equal(3.0, promtestutil.ToFloat64(s.GetMetrics().DeliveriesScheduled.WithLabelValues("created")))
}

func (s *DeliveryServiceSuite) TestGenerateDailySchedules_IsIdempotent() {
	createTestPersonnel(&s.BaseServiceTestSuite, "Suresh", "2.50")
	pub := s.publication("Morning Herald", types.PublicationFrequencyDaily, "310")
	c := createTestCustomer(&s.BaseServiceTestSuite, "Asha", types.CustomerStatusActive)
	createTestSubscription(&s.BaseServiceTestSuite, c, pub, date(2024, time.December, 1))

	_, err := s.service.GenerateDailySchedules(s.GetContext(), dto.GenerateSchedulesRequest{})
	s.NoError(err)

	again, err := s.service.GenerateDailySchedules(s.GetContext(), dto.GenerateSchedulesRequest{})
	s.NoError(err)
	s.Zero(again.SchedulesCreated)
	s.Equal(1, again.SchedulesSkipped)

	n, err := s.GetStores().ScheduleRepo.Count(s.GetContext(), nil)
	s.NoError(err)
	s.Equal(1, n)
}

func (s *DeliveryServiceSuite) TestGenerateDailySchedules_FiltersByFrequency() {
	createTestPersonnel(&s.BaseServiceTestSuite, "Suresh", "2.50")
	c := createTestCustomer(&s.BaseServiceTestSuite, "Asha", types.CustomerStatusActive)
	start := date(2025, time.January, 1)

	createTestSubscription(&s.BaseServiceTestSuite, c, s.publication("Daily Courier", types.PublicationFrequencyDaily, "150"), start)
	createTestSubscription(&s.BaseServiceTestSuite, c, s.publication("Weekend Review", types.PublicationFrequencyWeekly, "60"), start)
	createTestSubscription(&s.BaseServiceTestSuite, c, s.publication("Market Fortnightly", types.PublicationFrequencyBiweekly, "90"), start)
	createTestSubscription(&s.BaseServiceTestSuite, c, s.publication("Science Monthly", types.PublicationFrequencyMonthly, "150"), start)

	tests := []struct {
		day  time.Time
		want int
	}{
		{date(2025, time.January, 19), 3}, // Sunday, on the biweekly cycle
		{date(2025, time.January, 12), 2}, // Sunday, off the biweekly cycle
		{date(2025, time.January, 14), 1},
		{date(2025, time.February, 1), 2},
	}
	for _, tt := range tests {
		resp, err := s.service.GenerateDailySchedules(s.GetContext(), dto.GenerateSchedulesRequest{Date: lo.ToPtr(tt.day)})
		s.NoError(err)
		s.Equal(tt.want, resp.SchedulesCreated, "on %s", tt.day.Format(dateLayout))
	}
}

func (s *DeliveryServiceSuite) TestGenerateDailySchedules_SkipsInactiveSubscriptions() {
	createTestPersonnel(&s.BaseServiceTestSuite, "Suresh", "2.50")
	pub := s.publication("Morning Herald", types.PublicationFrequencyDaily, "310")
	c := createTestCustomer(&s.BaseServiceTestSuite, "Asha", types.CustomerStatusActive)

	createTestSubscription(&s.BaseServiceTestSuite, c, pub, date(2025, time.February, 1))

	ended := createTestSubscription(&s.BaseServiceTestSuite, c, s.publication("Evening Post", types.PublicationFrequencyDaily, "120"), date(2024, time.June, 1))
	ended.Status = types.SubscriptionStatusCancelled
	ended.EndDate = lo.ToPtr(date(2025, time.January, 10))
	s.NoError(s.GetStores().SubscriptionRepo.Update(s.GetContext(), ended))

	paused := createTestSubscription(&s.BaseServiceTestSuite, c, s.publication("Daily Courier", types.PublicationFrequencyDaily, "150"), date(2024, time.June, 1))
	paused.Status = types.SubscriptionStatusSuspended
	s.NoError(s.GetStores().SubscriptionRepo.Update(s.GetContext(), paused))

	resp, err := s.service.GenerateDailySchedules(s.GetContext(), dto.GenerateSchedulesRequest{})
	s.NoError(err)
	s.Zero(resp.SchedulesCreated)
}

func (s *DeliveryServiceSuite) TestGenerateDailySchedules_NoPersonnel() {
	retired := createTestPersonnel(&s.BaseServiceTestSuite, "Anil", "2.50")
	retired.IsActive = false
	s.NoError(s.GetStores().PersonnelRepo.Update(s.GetContext(), retired))

	_, err := s.service.GenerateDailySchedules(s.GetContext(), dto.GenerateSchedulesRequest{})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *DeliveryServiceSuite) TestGetPersonnelSchedule() {
	p := createTestPersonnel(&s.BaseServiceTestSuite, "Suresh", "2.50")
	pub := s.publication("Morning Herald", types.PublicationFrequencyDaily, "310")
	c := createTestCustomer(&s.BaseServiceTestSuite, "Asha", types.CustomerStatusActive)
	sub := createTestSubscription(&s.BaseServiceTestSuite, c, pub, date(2024, time.December, 1))

	later := createTestSchedule(&s.BaseServiceTestSuite, sub, p, date(2025, time.January, 21), types.DeliveryStatusScheduled)
	earlier := createTestSchedule(&s.BaseServiceTestSuite, sub, p, date(2025, time.January, 20), types.DeliveryStatusDelivered)

	resp, err := s.service.GetPersonnelSchedule(s.GetContext(), p.ID, dto.PersonnelScheduleRequest{})
	s.NoError(err)
	s.Equal(dto.PersonnelSummary{ID: p.ID, Name: "Suresh"}, resp.Personnel)
	s.Require().Len(resp.Schedules, 2)
	s.Equal(earlier.ID, resp.Schedules[0].ScheduleID)
	s.Equal(later.ID, resp.Schedules[1].ScheduleID)

	entry := resp.Schedules[0]
	s.Equal(types.DeliveryStatusDelivered, entry.Status)
	s.Equal("Morning Herald", entry.Publication.Name)
	s.Equal(types.PublicationTypeNewspaper, entry.Publication.Type)
	s.Equal(dto.ScheduledCustomer{Name: "Asha", Address: "12 Park Street", Phone: "9800000000"}, entry.Customer)

	oneDay, err := s.service.GetPersonnelSchedule(s.GetContext(), p.ID, dto.PersonnelScheduleRequest{
		Date: lo.ToPtr(time.Date(2025, time.January, 21, 9, 0, 0, 0, time.UTC)),
	})
	s.NoError(err)
	s.Require().Len(oneDay.Schedules, 1)
	s.Equal(later.ID, oneDay.Schedules[0].ScheduleID)

	_, err = s.service.GetPersonnelSchedule(s.GetContext(), "missing", dto.PersonnelScheduleRequest{})
	s.True(ierr.IsNotFound(err))
}

func (s *DeliveryServiceSuite) TestUpdateDeliveryStatus_Delivered() {
	p := createTestPersonnel(&s.BaseServiceTestSuite, "Suresh", "2.50")
	c := createTestCustomer(&s.BaseServiceTestSuite, "Asha", types.CustomerStatusActive)
	sub := createTestSubscription(&s.BaseServiceTestSuite, c, s.publication("Morning Herald", types.PublicationFrequencyDaily, "310"), date(2024, time.December, 1))
	sch := createTestSchedule(&s.BaseServiceTestSuite, sub, p, date(2025, time.January, 20), types.DeliveryStatusScheduled)

	resp, err := s.service.UpdateDeliveryStatus(s.GetContext(), sch.ID, dto.UpdateDeliveryStatusRequest{
		Status: types.DeliveryStatusDelivered,
		Notes:  lo.ToPtr("left at the gate"),
	})
	s.NoError(err)
	s.Equal(types.DeliveryStatusDelivered, resp.Status)
	s.Require().NotNil(resp.DeliveryTime)
	s.Equal(testutil.DefaultNow, *resp.DeliveryTime)

	stored, err := s.GetStores().ScheduleRepo.Get(s.GetContext(), sch.ID)
	s.NoError(err)
	s.Equal("left at the gate", stored.Notes)
	s.Equal(types.DeliveryStatusDelivered, stored.Status)

	_, err = s.service.UpdateDeliveryStatus(s.GetContext(), sch.ID, dto.UpdateDeliveryStatusRequest{
		Status: types.DeliveryStatusMissed,
	})
	s.True(ierr.IsInvalidOperation(err))
	s.Empty(listNotifications(&s.BaseServiceTestSuite, c.ID))
}

func (s *DeliveryServiceSuite) TestUpdateDeliveryStatus_MissedNotifiesCustomer() {
	p := createTestPersonnel(&s.BaseServiceTestSuite, "Suresh", "2.50")
	c := createTestCustomer(&s.BaseServiceTestSuite, "Asha", types.CustomerStatusActive)
	sub := createTestSubscription(&s.BaseServiceTestSuite, c, s.publication("Morning Herald", types.PublicationFrequencyDaily, "310"), date(2024, time.December, 1))
	sch := createTestSchedule(&s.BaseServiceTestSuite, sub, p, date(2025, time.January, 20), types.DeliveryStatusScheduled)

	resp, err := s.service.UpdateDeliveryStatus(s.GetContext(), sch.ID, dto.UpdateDeliveryStatusRequest{
		Status: types.DeliveryStatusMissed,
	})
	s.NoError(err)
	s.Nil(resp.DeliveryTime)

	notes := listNotifications(&s.BaseServiceTestSuite, c.ID)
	s.Require().Len(notes, 1)
	s.Contains(notes[0], "Morning Herald")
	s.Equal(1.0, promtestutil.ToFloat64(s.GetMetrics().DeliveryStatus.WithLabelValues("MISSED")))
}

func (s *DeliveryServiceSuite) TestUpdateDeliveryStatus_Errors() {
	_, err := s.service.UpdateDeliveryStatus(s.GetContext(), "missing", dto.UpdateDeliveryStatusRequest{
		Status: types.DeliveryStatusDelivered,
	})
	s.True(ierr.IsNotFound(err))

	_, err = s.service.UpdateDeliveryStatus(s.GetContext(), "missing", dto.UpdateDeliveryStatusRequest{
		Status: "LOST",
	})
	s.True(ierr.IsValidation(err))
}

func (s *DeliveryServiceSuite) TestCalculateCommission() {
	p := createTestPersonnel(&s.BaseServiceTestSuite, "Suresh", "2.50")
	other := createTestPersonnel(&s.BaseServiceTestSuite, "Anil", "2.50")
	c := createTestCustomer(&s.BaseServiceTestSuite, "Asha", types.CustomerStatusActive)
	herald := createTestSubscription(&s.BaseServiceTestSuite, c, s.publication("Morning Herald", types.PublicationFrequencyDaily, "310"), date(2024, time.December, 1))
	review := createTestSubscription(&s.BaseServiceTestSuite, c, s.publication("Weekend Review", types.PublicationFrequencyWeekly, "60"), date(2024, time.December, 1))

	createTestSchedule(&s.BaseServiceTestSuite, herald, p, date(2025, time.January, 18), types.DeliveryStatusDelivered)
	createTestSchedule(&s.BaseServiceTestSuite, review, p, date(2025, time.January, 19), types.DeliveryStatusDelivered)
	createTestSchedule(&s.BaseServiceTestSuite, herald, p, date(2025, time.January, 19), types.DeliveryStatusMissed)
	createTestSchedule(&s.BaseServiceTestSuite, herald, other, date(2025, time.January, 20), types.DeliveryStatusDelivered)

	resp, err := s.service.CalculateCommission(s.GetContext(), p.ID, dto.CommissionRequest{})
	s.NoError(err)
	s.Equal("Suresh", resp.PersonnelName)
	s.Equal("2.50%", resp.CommissionRate)
	s.Equal(2, resp.TotalDeliveries)
	s.True(decimal.NewFromInt(370).Equal(resp.TotalValue), "value %s", resp.TotalValue)
	s.True(decimal.RequireFromString("9.25").Equal(resp.CommissionAmount), "commission %s", resp.CommissionAmount)
	s.Require().Len(resp.DeliveryDetails, 2)
	s.Equal("Morning Herald", resp.DeliveryDetails[0].Publication)

	ranged, err := s.service.CalculateCommission(s.GetContext(), p.ID, dto.CommissionRequest{
		StartDate: lo.ToPtr(date(2025, time.January, 19)),
		EndDate:   lo.ToPtr(date(2025, time.January, 31)),
	})
	s.NoError(err)
	s.Equal(1, ranged.TotalDeliveries)
	s.True(decimal.RequireFromString("1.50").Equal(ranged.CommissionAmount))
	s.Equal(date(2025, time.January, 19), *ranged.Period.StartDate)

	_, err = s.service.CalculateCommission(s.GetContext(), p.ID, dto.CommissionRequest{
		StartDate: lo.ToPtr(date(2025, time.January, 31)),
		EndDate:   lo.ToPtr(date(2025, time.January, 1)),
	})
	s.True(ierr.IsValidation(err))

	_, err = s.service.CalculateCommission(s.GetContext(), "missing", dto.CommissionRequest{})
	s.True(ierr.IsNotFound(err))
}
