package api

import (
	"github.com/gin-gonic/gin"
	"github.com/naasdev/naas/internal/api/cron"
	v1 "github.com/naasdev/naas/internal/api/v1"
	"github.com/naasdev/naas/internal/auth"
	"github.com/naasdev/naas/internal/config"
	"github.com/naasdev/naas/internal/logger"
	"github.com/naasdev/naas/internal/metrics"
	"github.com/naasdev/naas/internal/rest/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Handlers struct {
	Health       *v1.HealthHandler
	Customer     *v1.CustomerHandler
	Publication  *v1.PublicationHandler
	Subscription *v1.SubscriptionHandler
	Invoice      *v1.InvoiceHandler
	Payment      *v1.PaymentHandler
	Notification *v1.NotificationHandler
	Report       *v1.ReportHandler
	Delivery     *v1.DeliveryHandler
	CronJob      *cron.JobHandler
}

func NewRouter(
	handlers Handlers,
	cfg *config.Configuration,
	logger *logger.Logger,
	tokens *auth.TokenService,
	m *metrics.Collector,
) *gin.Engine {
	router := gin.New()

	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware(cfg),
		middleware.SentryMiddleware(cfg),
		middleware.RequestLogMiddleware(m, logger),
		middleware.ErrorHandler(logger),
	)

	// Public routes
	router.GET("/health", handlers.Health.Health)
	router.GET("/metrics", gin.WrapH(m.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	private := router.Group("/v1",
		middleware.AuthenticateMiddleware(cfg, tokens, logger),
		middleware.SentryScopeMiddleware,
	)
	registerV1Routes(private, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	customers := router.Group("/customers")
	{
		customers.POST("", handlers.Customer.CreateCustomer)
		customers.GET("", handlers.Customer.GetCustomers)
		customers.GET("/:id", handlers.Customer.GetCustomer)
		customers.POST("/:id/suspend", handlers.Customer.SuspendCustomer)
		customers.POST("/:id/reactivate", handlers.Customer.ReactivateCustomer)
	}

	publications := router.Group("/publications")
	{
		publications.POST("", handlers.Publication.CreatePublication)
		publications.GET("", handlers.Publication.GetPublications)
		publications.GET("/:id", handlers.Publication.GetPublication)
		publications.PUT("/:id", handlers.Publication.UpdatePublication)
	}

	subscriptions := router.Group("/subscriptions")
	{
		subscriptions.POST("", handlers.Subscription.CreateSubscription)
		subscriptions.GET("", handlers.Subscription.ListSubscriptions)
		subscriptions.GET("/:id", handlers.Subscription.GetSubscription)
		subscriptions.POST("/:id/suspend", handlers.Subscription.SuspendSubscription)
		subscriptions.POST("/:id/resume", handlers.Subscription.ResumeSubscription)
		subscriptions.POST("/:id/cancel", handlers.Subscription.CancelSubscription)
		subscriptions.PUT("/:id/billing-cycle", handlers.Subscription.UpdateBillingCycle)
	}

	billing := router.Group("/billing")
	{
		invoices := billing.Group("/invoices")
		{
			invoices.POST("", handlers.Invoice.GenerateMonthlyInvoices)
			invoices.GET("", handlers.Invoice.ListInvoices)
			invoices.POST("/process-overdue", handlers.Invoice.ProcessOverdueInvoices)
			invoices.GET("/customer/:customer_id", handlers.Invoice.GetCustomerInvoices)
			invoices.GET("/:id", handlers.Invoice.GetInvoice)
		}

		payments := billing.Group("/payments")
		{
			payments.POST("", handlers.Payment.ProcessPayment)
			payments.GET("", handlers.Payment.ListPayments)
			payments.GET("/:id", handlers.Payment.GetPayment)
		}
	}

	notifications := router.Group("/notifications")
	{
		notifications.GET("", handlers.Notification.ListNotifications)
		notifications.POST("/dispatch", handlers.Notification.DispatchPending)
		notifications.POST("/:id/read", handlers.Notification.MarkRead)
	}

	delivery := router.Group("/delivery")
	{
		delivery.POST("/personnel", handlers.Delivery.CreatePersonnel)
		delivery.GET("/personnel", handlers.Delivery.ListPersonnel)
		delivery.GET("/personnel/:id", handlers.Delivery.GetPersonnel)
		delivery.GET("/personnel/:id/schedules", handlers.Delivery.GetPersonnelSchedule)
		delivery.GET("/personnel/:id/commission", handlers.Delivery.CalculateCommission)
		delivery.POST("/schedules", handlers.Delivery.GenerateDailySchedules)
		delivery.PATCH("/schedules/:id", handlers.Delivery.UpdateDeliveryStatus)
	}

	reports := router.Group("/reports")
	{
		reports.GET("/financial", handlers.Report.GetFinancialReport)
		reports.GET("/financial/export", handlers.Report.ExportInvoicesCSV)
		reports.GET("/delivery", handlers.Report.GetDeliverySummary)
		reports.GET("/customers", handlers.Report.GetCustomerReport)
	}

	// Cron routes
	// TODO: restrict to system API keys once keys carry a role
	cronGroup := router.Group("/cron")
	{
		cronGroup.POST("/invoices/generate", handlers.CronJob.GenerateMonthlyInvoices)
		cronGroup.POST("/invoices/process-overdue", handlers.CronJob.ProcessOverdueInvoices)
		cronGroup.POST("/notifications/dispatch", handlers.CronJob.DispatchNotifications)
		cronGroup.POST("/delivery/schedules", handlers.CronJob.GenerateDeliverySchedules)
	}
}
