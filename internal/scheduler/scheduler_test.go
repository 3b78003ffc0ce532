package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/naasdev/naas/internal/api/dto"
	"github.com/naasdev/naas/internal/config"
	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/logger"
	"github.com/naasdev/naas/internal/metrics"
	"github.com/naasdev/naas/internal/sentry"
	"github.com/naasdev/naas/internal/service"
	"github.com/naasdev/naas/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
)

type stubInvoiceService struct {
	service.InvoiceService
	calls int
	req   dto.GenerateInvoicesRequest
	ctx   context.Context
}

func (s *stubInvoiceService) GenerateMonthlyInvoices(ctx context.Context, req dto.GenerateInvoicesRequest) (*dto.GenerateInvoicesResponse, error) {
	s.calls++
	s.req = req
	s.ctx = ctx
	return &dto.GenerateInvoicesResponse{Period: "1/2025"}, nil
}

type stubOverdueService struct {
	err error
}

func (s *stubOverdueService) ProcessOverdueInvoices(context.Context) (*dto.ProcessOverdueResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ProcessOverdueResponse{}, nil
}

type stubNotificationService struct {
	service.NotificationService
	dispatched int
}

func (s *stubNotificationService) DispatchPending(context.Context) (*dto.DispatchNotificationsResponse, error) {
	s.dispatched++
	return &dto.DispatchNotificationsResponse{}, nil
}

type stubDeliveryService struct {
	service.DeliveryService
	req dto.GenerateSchedulesRequest
	ran int
}

func (s *stubDeliveryService) GenerateDailySchedules(_ context.Context, req dto.GenerateSchedulesRequest) (*dto.GenerateSchedulesResponse, error) {
	s.ran++
	s.req = req
	return &dto.GenerateSchedulesResponse{Date: time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC), SchedulesCreated: 2}, nil
}

type SchedulerSuite struct {
	suite.Suite
	cfg           *config.Configuration
	metrics       *metrics.Collector
	invoices      *stubInvoiceService
	overdue       *stubOverdueService
	notifications *stubNotificationService
	deliveries    *stubDeliveryService
}

func TestScheduler(t *testing.T) {
	suite.Run(t, new(SchedulerSuite))
}

func (s *SchedulerSuite) SetupTest() {
	s.cfg = config.GetDefaultConfig()
	s.metrics = metrics.NewWithRegistry(prometheus.NewRegistry())
	s.invoices = &stubInvoiceService{}
	s.overdue = &stubOverdueService{}
	s.notifications = &stubNotificationService{}
	s.deliveries = &stubDeliveryService{}
}

func (s *SchedulerSuite) newScheduler() *Scheduler {
	log := logger.NewNopLogger()
	return New(s.cfg, s.invoices, s.overdue, s.notifications, s.deliveries, sentry.NewSentryService(s.cfg, log), s.metrics, log)
}

func (s *SchedulerSuite) TestRegister() {
	sch := s.newScheduler()
	s.NoError(sch.Register())

	for _, name := range []string{JobMonthlyInvoices, JobOverdueSweep, JobNotificationDispatch, JobDeliverySchedules} {
		_, ok := sch.Next(name)
		s.True(ok, name)
	}
}

func (s *SchedulerSuite) TestRegister_SkipsEmptySchedule() {
	s.cfg.Scheduler.DispatchCron = ""

	sch := s.newScheduler()
	s.NoError(sch.Register())

	_, ok := sch.Next(JobNotificationDispatch)
	s.False(ok)
	_, ok = sch.Next(JobOverdueSweep)
	s.True(ok)
}

func (s *SchedulerSuite) TestRegister_RejectsBadExpression() {
	s.cfg.Scheduler.OverdueCron = "every day at two"

	err := s.newScheduler().Register()
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *SchedulerSuite) TestRunJob_MonthlyInvoices() {
	sch := s.newScheduler()

	s.NoError(sch.RunJob(context.Background(), JobMonthlyInvoices))
	s.Equal(1, s.invoices.calls)
	s.Nil(s.invoices.req.Month)
	s.Nil(s.invoices.req.Year)
	s.Equal(types.DefaultUserID, types.GetUserID(s.invoices.ctx))
	s.NotEmpty(types.GetRequestID(s.invoices.ctx))

	s.Equal(1.0, promtestutil.ToFloat64(s.metrics.JobRuns.WithLabelValues(JobMonthlyInvoices, "success")))
}

func (s *SchedulerSuite) TestRunJob_RecordsFailure() {
	s.overdue.err = ierr.NewError("database unavailable").Mark(ierr.ErrDatabase)
	sch := s.newScheduler()

	err := sch.RunJob(context.Background(), JobOverdueSweep)
	s.Error(err)
	s.True(ierr.IsDatabase(err))
	s.Equal(1.0, promtestutil.ToFloat64(s.metrics.JobRuns.WithLabelValues(JobOverdueSweep, "error")))
}

func (s *SchedulerSuite) TestRunJob_Dispatch() {
	sch := s.newScheduler()

	s.NoError(sch.RunJob(context.Background(), JobNotificationDispatch))
	s.Equal(1, s.notifications.dispatched)
}

func (s *SchedulerSuite) TestRunJob_DeliverySchedules() {
	sch := s.newScheduler()

	s.NoError(sch.RunJob(context.Background(), JobDeliverySchedules))
	s.Equal(1, s.deliveries.ran)
	// the service picks the day
	s.Nil(s.deliveries.req.Date)
	s.Equal(1.0, promtestutil.ToFloat64(s.metrics.JobRuns.WithLabelValues(JobDeliverySchedules, "success")))
}

func (s *SchedulerSuite) TestRunJob_Unknown() {
	err := s.newScheduler().RunJob(context.Background(), "reticulate_splines")
	s.True(ierr.IsNotFound(err))
}

func (s *SchedulerSuite) TestStartStop() {
	sch := s.newScheduler()
	s.NoError(sch.Register())
	sch.Start()

	sch.Stop(context.Background())
	// a second stop is a no-op
	sch.Stop(context.Background())
}
