package testutil

import (
	"context"
	"time"

	"github.com/naasdev/naas/internal/cache"
	"github.com/naasdev/naas/internal/clock"
	"github.com/naasdev/naas/internal/config"
	"github.com/naasdev/naas/internal/domain/customer"
	"github.com/naasdev/naas/internal/domain/delivery"
	"github.com/naasdev/naas/internal/domain/invoice"
	"github.com/naasdev/naas/internal/domain/notification"
	"github.com/naasdev/naas/internal/domain/payment"
	"github.com/naasdev/naas/internal/domain/publication"
	"github.com/naasdev/naas/internal/domain/subscription"
	"github.com/naasdev/naas/internal/logger"
	"github.com/naasdev/naas/internal/metrics"
	"github.com/naasdev/naas/internal/types"
	"github.com/naasdev/naas/internal/validator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	CustomerRepo     customer.Repository
	PublicationRepo  publication.Repository
	SubscriptionRepo subscription.Repository
	InvoiceRepo      invoice.Repository
	PaymentRepo      payment.Repository
	NotificationRepo notification.Repository
	PersonnelRepo    delivery.PersonnelRepository
	ScheduleRepo     delivery.ScheduleRepository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	stores  Stores
	pubSub  *InMemoryPubSub
	db      *MockPostgresClient
	logger  *logger.Logger
	config  *config.Configuration
	clock   *clock.Fake
	cache   cache.Cache
	metrics *metrics.Collector
}

// DefaultNow is where the fake clock starts for every test
var DefaultNow = time.Date(2025, time.January, 20, 10, 0, 0, 0, time.UTC)

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	s.config = config.GetDefaultConfig()
	s.logger = logger.NewNopLogger()
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.setupStores()
	s.clock = clock.NewFake(DefaultNow)
	s.cache = cache.NewInMemoryCache(s.config, s.logger)
	s.metrics = metrics.NewWithRegistry(prometheus.NewRegistry())
	s.pubSub = NewInMemoryPubSub()
	s.db = NewMockPostgresClient(s.logger)
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
	s.pubSub.ClearMessages()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		CustomerRepo:     NewInMemoryCustomerStore(),
		PublicationRepo:  NewInMemoryPublicationStore(),
		SubscriptionRepo: NewInMemorySubscriptionStore(),
		InvoiceRepo:      NewInMemoryInvoiceStore(),
		PaymentRepo:      NewInMemoryPaymentStore(),
		NotificationRepo: NewInMemoryNotificationStore(),
		PersonnelRepo:    NewInMemoryPersonnelStore(),
		ScheduleRepo:     NewInMemoryScheduleStore(),
	}
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.CustomerRepo.(*InMemoryCustomerStore).Clear()
	s.stores.PublicationRepo.(*InMemoryPublicationStore).Clear()
	s.stores.SubscriptionRepo.(*InMemorySubscriptionStore).Clear()
	s.stores.InvoiceRepo.(*InMemoryInvoiceStore).Clear()
	s.stores.PaymentRepo.(*InMemoryPaymentStore).Clear()
	s.stores.NotificationRepo.(*InMemoryNotificationStore).Clear()
	s.stores.PersonnelRepo.(*InMemoryPersonnelStore).Clear()
	s.stores.ScheduleRepo.(*InMemoryScheduleStore).Clear()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetPubSub returns the in-memory transport notifications are published on
func (s *BaseServiceTestSuite) GetPubSub() *InMemoryPubSub {
	return s.pubSub
}

// GetDB returns the test database client
func (s *BaseServiceTestSuite) GetDB() *MockPostgresClient {
	return s.db
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetClock returns the fake clock shared by the services under test
func (s *BaseServiceTestSuite) GetClock() *clock.Fake {
	return s.clock
}

// GetCache returns the test cache
func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

// GetMetrics returns a collector on a throwaway registry
func (s *BaseServiceTestSuite) GetMetrics() *metrics.Collector {
	return s.metrics
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.clock.Now()
}

// GetUUID returns a new UUID string
func (s *BaseServiceTestSuite) GetUUID() string {
	return types.GenerateUUID()
}
