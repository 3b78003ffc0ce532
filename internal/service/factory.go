package service

import (
	"github.com/naasdev/naas/internal/cache"
	"github.com/naasdev/naas/internal/clock"
	"github.com/naasdev/naas/internal/config"
	"github.com/naasdev/naas/internal/domain/customer"
	"github.com/naasdev/naas/internal/domain/delivery"
	"github.com/naasdev/naas/internal/domain/invoice"
	domainNotification "github.com/naasdev/naas/internal/domain/notification"
	"github.com/naasdev/naas/internal/domain/payment"
	"github.com/naasdev/naas/internal/domain/proration"
	"github.com/naasdev/naas/internal/domain/publication"
	"github.com/naasdev/naas/internal/domain/subscription"
	"github.com/naasdev/naas/internal/logger"
	"github.com/naasdev/naas/internal/metrics"
	"github.com/naasdev/naas/internal/notification"
	"github.com/naasdev/naas/internal/postgres"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger  *logger.Logger
	Config  *config.Configuration
	DB      postgres.IClient
	Clock   clock.Clock
	Cache   cache.Cache
	Metrics *metrics.Collector

	// Repositories
	CustomerRepo     customer.Repository
	PublicationRepo  publication.Repository
	SubRepo          subscription.Repository
	InvoiceRepo      invoice.Repository
	PaymentRepo      payment.Repository
	NotificationRepo domainNotification.Repository
	PersonnelRepo    delivery.PersonnelRepository
	ScheduleRepo     delivery.ScheduleRepository

	// Billing
	Calculator proration.Calculator

	// Notifications
	NotificationPublisher notification.Publisher
	Dispatcher            *notification.Dispatcher
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	clk clock.Clock,
	cache cache.Cache,
	metrics *metrics.Collector,
	customerRepo customer.Repository,
	publicationRepo publication.Repository,
	subRepo subscription.Repository,
	invoiceRepo invoice.Repository,
	paymentRepo payment.Repository,
	notificationRepo domainNotification.Repository,
	personnelRepo delivery.PersonnelRepository,
	scheduleRepo delivery.ScheduleRepository,
	calculator proration.Calculator,
	notificationPublisher notification.Publisher,
	dispatcher *notification.Dispatcher,
) ServiceParams {
	return ServiceParams{
		Logger:                logger,
		Config:                config,
		DB:                    db,
		Clock:                 clk,
		Cache:                 cache,
		Metrics:               metrics,
		CustomerRepo:          customerRepo,
		PublicationRepo:       publicationRepo,
		SubRepo:               subRepo,
		InvoiceRepo:           invoiceRepo,
		PaymentRepo:           paymentRepo,
		NotificationRepo:      notificationRepo,
		PersonnelRepo:         personnelRepo,
		ScheduleRepo:          scheduleRepo,
		Calculator:            calculator,
		NotificationPublisher: notificationPublisher,
		Dispatcher:            dispatcher,
	}
}
