// Package metrics exposes Prometheus metrics for the billing engine.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "naas"

// Collector holds all Prometheus metrics for the service
type Collector struct {
	registry *prometheus.Registry

	// HTTP
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Billing
	InvoicesGenerated     prometheus.Counter
	InvoicesSkipped       prometheus.Counter
	InvoiceErrors         prometheus.Counter
	InvoicedAmount        prometheus.Counter
	PaymentsTotal         *prometheus.CounterVec
	PaymentAmount         prometheus.Counter
	InvoicesMarkedOverdue prometheus.Counter
	CustomersDiscontinued prometheus.Counter
	RemindersSent         prometheus.Counter

	// Delivery
	DeliveriesScheduled *prometheus.CounterVec
	DeliveryStatus      *prometheus.CounterVec

	// Notifications
	NotificationsCreated   *prometheus.CounterVec
	NotificationsDelivered *prometheus.CounterVec

	// Scheduled jobs
	JobRuns     *prometheus.CounterVec
	JobDuration *prometheus.HistogramVec
}

// New creates a collector on its own registry, with Go runtime and process
// collectors attached.
func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg)
}

// NewWithRegistry registers every metric on reg
func NewWithRegistry(reg *prometheus.Registry) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		InvoicesGenerated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_generated_total",
			Help:      "Invoices created by monthly generation",
		}),
		InvoicesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_skipped_total",
			Help:      "Customers skipped because the period was already invoiced",
		}),
		InvoiceErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_generation_errors_total",
			Help:      "Customers whose invoice could not be generated",
		}),
		InvoicedAmount: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoiced_amount_total",
			Help:      "Sum of generated invoice totals",
		}),
		PaymentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payments_total",
				Help:      "Payment attempts by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		PaymentAmount: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_amount_total",
			Help:      "Sum of completed payment amounts",
		}),
		InvoicesMarkedOverdue: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_marked_overdue_total",
			Help:      "Invoices moved to OVERDUE by the sweep",
		}),
		CustomersDiscontinued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "customers_discontinued_total",
			Help:      "Customers discontinued for long outstanding dues",
		}),
		RemindersSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_reminders_total",
			Help:      "Payment reminders created by the sweep",
		}),

		DeliveriesScheduled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deliveries_scheduled_total",
				Help:      "Daily schedule rows by outcome",
			},
			[]string{"outcome"},
		),
		DeliveryStatus: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "delivery_status_updates_total",
				Help:      "Delivery status changes by new status",
			},
			[]string{"status"},
		),

		NotificationsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_created_total",
				Help:      "Notifications recorded by type",
			},
			[]string{"type"},
		),
		NotificationsDelivered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_delivered_total",
				Help:      "Notification delivery attempts by type and status",
			},
			[]string{"type", "status"},
		),

		JobRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "job_runs_total",
				Help:      "Scheduled job runs by job and outcome",
			},
			[]string{"job", "outcome"},
		),
		JobDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "job_duration_seconds",
				Help:      "Scheduled job duration in seconds",
				Buckets:   []float64{.1, .5, 1, 5, 15, 30, 60, 300, 900},
			},
			[]string{"job"},
		),
	}
}

// Registry returns the registry the metrics live on
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveRequest records one HTTP request
func (c *Collector) ObserveRequest(method, path string, status int, d time.Duration) {
	c.RequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	c.RequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// ObserveJob records one scheduled job run
func (c *Collector) ObserveJob(job string, err error, d time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.JobRuns.WithLabelValues(job, outcome).Inc()
	c.JobDuration.WithLabelValues(job).Observe(d.Seconds())
}
