package cron

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/naasdev/naas/internal/logger"
	"github.com/naasdev/naas/internal/scheduler"
)

// JobRunner runs scheduled jobs on demand
type JobRunner interface {
	RunJob(ctx context.Context, name string) error
	Next(name string) (time.Time, bool)
}

// JobHandler lets an external trigger, such as a cloud scheduler calling
// the lambda deployment, run the billing jobs
type JobHandler struct {
	runner JobRunner
	logger *logger.Logger
}

func NewJobHandler(runner JobRunner, logger *logger.Logger) *JobHandler {
	return &JobHandler{runner: runner, logger: logger}
}

// JobRunResponse reports a finished on-demand run
type JobRunResponse struct {
	Job        string     `json:"job"`
	Status     string     `json:"status"`
	DurationMS int64      `json:"duration_ms"`
	NextRun    *time.Time `json:"next_run,omitempty"`
}

func (h *JobHandler) GenerateMonthlyInvoices(c *gin.Context) {
	h.run(c, scheduler.JobMonthlyInvoices)
}

func (h *JobHandler) ProcessOverdueInvoices(c *gin.Context) {
	h.run(c, scheduler.JobOverdueSweep)
}

func (h *JobHandler) DispatchNotifications(c *gin.Context) {
	h.run(c, scheduler.JobNotificationDispatch)
}

func (h *JobHandler) GenerateDeliverySchedules(c *gin.Context) {
	h.run(c, scheduler.JobDeliverySchedules)
}

func (h *JobHandler) run(c *gin.Context, job string) {
	h.logger.Infow("starting cron job", "job", job, "time", time.Now().UTC().Format(time.RFC3339))

	start := time.Now()
	if err := h.runner.RunJob(c.Request.Context(), job); err != nil {
		c.Error(err)
		return
	}

	resp := JobRunResponse{
		Job:        job,
		Status:     "completed",
		DurationMS: time.Since(start).Milliseconds(),
	}
	if next, ok := h.runner.Next(job); ok && !next.IsZero() {
		resp.NextRun = &next
	}
	c.JSON(http.StatusOK, resp)
}
