package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/naasdev/naas/internal/api/dto"
	"github.com/naasdev/naas/internal/config"
	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/logger"
	"github.com/naasdev/naas/internal/metrics"
	"github.com/naasdev/naas/internal/sentry"
	"github.com/naasdev/naas/internal/service"
	"github.com/naasdev/naas/internal/types"
	"github.com/robfig/cron/v3"
)

const (
	JobMonthlyInvoices      = "monthly_invoices"
	JobOverdueSweep         = "overdue_sweep"
	JobNotificationDispatch = "notification_dispatch"
	JobDeliverySchedules    = "delivery_schedules"
)

// jobTimeout bounds a single run so a stuck job cannot hold its slot forever
const jobTimeout = 30 * time.Minute

type job struct {
	name     string
	schedule string
	run      func(ctx context.Context) error
}

// Scheduler runs the periodic billing jobs on cron schedules. A job still
// running when its next tick fires is skipped.
type Scheduler struct {
	cron     *cron.Cron
	jobs     []job
	entryIDs map[string]cron.EntryID
	sentry   *sentry.Service
	metrics  *metrics.Collector
	logger   *logger.Logger
	stopOnce sync.Once
}

func New(
	cfg *config.Configuration,
	invoiceService service.InvoiceService,
	overdueService service.OverdueService,
	notificationService service.NotificationService,
	deliveryService service.DeliveryService,
	sentrySvc *sentry.Service,
	m *metrics.Collector,
	log *logger.Logger,
) *Scheduler {
	s := &Scheduler{
		entryIDs: make(map[string]cron.EntryID),
		sentry:   sentrySvc,
		metrics:  m,
		logger:   log,
	}
	s.cron = newCron(log)

	s.jobs = []job{
		{
			name:     JobMonthlyInvoices,
			schedule: cfg.Scheduler.InvoiceCron,
			run: func(ctx context.Context) error {
				// defaults to the month the run falls in
				resp, err := invoiceService.GenerateMonthlyInvoices(ctx, dto.GenerateInvoicesRequest{})
				if err != nil {
					return err
				}
				log.Infow("monthly invoice job finished",
					"period", resp.Period,
					"generated", resp.InvoicesGenerated,
					"skipped", resp.InvoicesSkipped,
				)
				return nil
			},
		},
		{
			name:     JobOverdueSweep,
			schedule: cfg.Scheduler.OverdueCron,
			run: func(ctx context.Context) error {
				resp, err := overdueService.ProcessOverdueInvoices(ctx)
				if err != nil {
					return err
				}
				log.Infow("overdue sweep job finished",
					"updated", resp.UpdatedCount,
					"discontinued", resp.DiscontinuedCustomers,
				)
				return nil
			},
		},
		{
			name:     JobNotificationDispatch,
			schedule: cfg.Scheduler.DispatchCron,
			run: func(ctx context.Context) error {
				_, err := notificationService.DispatchPending(ctx)
				return err
			},
		},
		{
			name:     JobDeliverySchedules,
			schedule: cfg.Scheduler.DeliveryCron,
			run: func(ctx context.Context) error {
				resp, err := deliveryService.GenerateDailySchedules(ctx, dto.GenerateSchedulesRequest{})
				if err != nil {
					return err
				}
				log.Infow("delivery schedule job finished",
					"date", resp.Date.Format("2006-01-02"),
					"created", resp.SchedulesCreated,
					"skipped", resp.SchedulesSkipped,
				)
				return nil
			},
		},
	}
	return s
}

func newCron(log *logger.Logger) *cron.Cron {
	cl := cronLogger{log: log}
	return cron.New(
		cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow)),
		cron.WithLocation(time.UTC),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
}

// Register adds every job with a schedule to the cron table. Jobs with an
// empty schedule are disabled.
func (s *Scheduler) Register() error {
	for _, j := range s.jobs {
		if j.schedule == "" {
			s.logger.Infow("scheduled job disabled", "job", j.name)
			continue
		}

		j := j
		id, err := s.cron.AddFunc(j.schedule, func() {
			_ = s.RunJob(context.Background(), j.name)
		})
		if err != nil {
			return ierr.WithError(err).
				WithHintf("Invalid cron expression %q for job %s", j.schedule, j.name).
				Mark(ierr.ErrValidation)
		}
		s.entryIDs[j.name] = id
		s.logger.Infow("registered scheduled job", "job", j.name, "schedule", j.schedule)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.logger.Infow("starting scheduler", "jobs", len(s.entryIDs))
	s.cron.Start()
}

// Stop stops the cron and waits for running jobs until ctx is done.
// Safe to call more than once.
func (s *Scheduler) Stop(ctx context.Context) {
	s.stopOnce.Do(func() {
		s.logger.Info("stopping scheduler")
		done := s.cron.Stop()
		select {
		case <-done.Done():
		case <-ctx.Done():
			s.logger.Warnw("scheduler stopped before running jobs finished", "error", ctx.Err())
		}
	})
}

// Next returns the next run time of a registered job
func (s *Scheduler) Next(name string) (time.Time, bool) {
	id, ok := s.entryIDs[name]
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Next, true
}

// RunJob runs the named job once under a system context and records it
func (s *Scheduler) RunJob(ctx context.Context, name string) error {
	var target *job
	for i := range s.jobs {
		if s.jobs[i].name == name {
			target = &s.jobs[i]
			break
		}
	}
	if target == nil {
		return ierr.NewErrorf("unknown job %s", name).
			WithHintf("No scheduled job named %s", name).
			Mark(ierr.ErrNotFound)
	}

	ctx, cancel := context.WithTimeout(types.NewSystemContext(ctx), jobTimeout)
	defer cancel()

	span, ctx := s.sentry.StartJobSpan(ctx, name)
	if span != nil {
		defer span.Finish()
	}

	start := time.Now()
	err := target.run(ctx)
	elapsed := time.Since(start)
	s.metrics.ObserveJob(name, err, elapsed)

	if err != nil {
		s.logger.Errorw("scheduled job failed",
			"job", name,
			"duration_ms", elapsed.Milliseconds(),
			"error", err,
		)
		s.sentry.CaptureException(err)
		return err
	}
	s.sentry.AddBreadcrumb("job", name+" finished", map[string]interface{}{
		"duration_ms": elapsed.Milliseconds(),
	})
	s.logger.Debugw("scheduled job finished", "job", name, "duration_ms", elapsed.Milliseconds())
	return nil
}

// cronLogger routes cron's own logging through the application logger
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
