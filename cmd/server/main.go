package main

import (
	"context"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/naasdev/naas/docs/swagger"
	"github.com/naasdev/naas/internal/api"
	"github.com/naasdev/naas/internal/api/cron"
	v1 "github.com/naasdev/naas/internal/api/v1"
	"github.com/naasdev/naas/internal/auth"
	"github.com/naasdev/naas/internal/cache"
	"github.com/naasdev/naas/internal/clock"
	"github.com/naasdev/naas/internal/config"
	"github.com/naasdev/naas/internal/domain/proration"
	"github.com/naasdev/naas/internal/email"
	"github.com/naasdev/naas/internal/logger"
	"github.com/naasdev/naas/internal/metrics"
	"github.com/naasdev/naas/internal/notification"
	"github.com/naasdev/naas/internal/postgres"
	"github.com/naasdev/naas/internal/pubsub"
	"github.com/naasdev/naas/internal/pubsub/kafka"
	"github.com/naasdev/naas/internal/pubsub/memory"
	pubsubRouter "github.com/naasdev/naas/internal/pubsub/router"
	"github.com/naasdev/naas/internal/repository"
	"github.com/naasdev/naas/internal/scheduler"
	"github.com/naasdev/naas/internal/sentry"
	"github.com/naasdev/naas/internal/service"
	"github.com/naasdev/naas/internal/types"
	"github.com/naasdev/naas/internal/validator"
	"go.uber.org/fx"
)

// @title NAAS Billing API
// @version 1.0
// @description Newspaper subscription billing service
// @BasePath /v1
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description Enter your API key in the format *x-api-key &lt;api-key&gt;**

func init() {
	// Billing dates are computed in UTC everywhere
	time.Local = time.UTC
}

func main() {
	// a missing .env is fine outside local development
	_ = godotenv.Load()

	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.NewInMemoryCache,

			// Time and metrics
			clock.NewClock,
			metrics.New,

			// Postgres
			postgres.NewDB,
			provideDBClient,
			provideDBPinger,

			// PubSub
			providePubSub,
			pubsubRouter.NewRouter,

			// Repositories
			repository.NewCustomerRepository,
			repository.NewPublicationRepository,
			repository.NewSubscriptionRepository,
			repository.NewInvoiceRepository,
			repository.NewPaymentRepository,
			repository.NewNotificationRepository,
			repository.NewPersonnelRepository,
			repository.NewScheduleRepository,

			// Notifications
			email.NewEmail,
			notification.NewSenders,
			notification.NewDispatcher,
			notification.NewPublisher,
			notification.NewHandler,

			// Billing
			proration.NewCalculator,
			auth.NewTokenService,
		),
		// Monitoring
		sentry.Module(),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewCustomerService,
			service.NewPublicationService,
			service.NewSubscriptionService,
			service.NewInvoiceService,
			service.NewOverdueService,
			service.NewPaymentService,
			service.NewNotificationService,
			service.NewReportService,
			service.NewDeliveryService,

			scheduler.New,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(
			registerDatabase,
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideDBClient(db *postgres.DB) postgres.IClient {
	return db
}

func provideDBPinger(db *postgres.DB) v1.Pinger {
	return db
}

func providePubSub(cfg *config.Configuration, log *logger.Logger) (pubsub.PubSub, error) {
	if cfg.Notification.PubSub == types.KafkaPubSub {
		return kafka.NewPubSub(cfg, log)
	}
	return memory.NewPubSub(log), nil
}

func provideHandlers(
	logger *logger.Logger,
	db v1.Pinger,
	customerService service.CustomerService,
	publicationService service.PublicationService,
	subscriptionService service.SubscriptionService,
	invoiceService service.InvoiceService,
	overdueService service.OverdueService,
	paymentService service.PaymentService,
	notificationService service.NotificationService,
	reportService service.ReportService,
	deliveryService service.DeliveryService,
	jobs *scheduler.Scheduler,
) api.Handlers {
	return api.Handlers{
		Health:       v1.NewHealthHandler(db, logger),
		Customer:     v1.NewCustomerHandler(customerService, logger),
		Publication:  v1.NewPublicationHandler(publicationService, logger),
		Subscription: v1.NewSubscriptionHandler(subscriptionService, logger),
		Invoice:      v1.NewInvoiceHandler(invoiceService, overdueService, logger),
		Payment:      v1.NewPaymentHandler(paymentService, logger),
		Notification: v1.NewNotificationHandler(notificationService, logger),
		Report:       v1.NewReportHandler(reportService, logger),
		Delivery:     v1.NewDeliveryHandler(deliveryService, logger),
		CronJob:      cron.NewJobHandler(jobs, logger),
	}
}

func provideRouter(
	handlers api.Handlers,
	cfg *config.Configuration,
	logger *logger.Logger,
	tokens *auth.TokenService,
	m *metrics.Collector,
) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger, tokens, m)
}

// registerDatabase applies pending migrations when configured and closes
// the pool on shutdown
func registerDatabase(lc fx.Lifecycle, cfg *config.Configuration, db *postgres.DB, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !cfg.Postgres.AutoMigrate {
				return nil
			}
			applied, err := db.Migrate(ctx, false)
			if err != nil {
				return err
			}
			log.Infow("database migrations applied", "count", len(applied), "versions", applied)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return db.Close()
		},
	})
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	router *pubsubRouter.Router,
	notificationHandler notification.Handler,
	jobs *scheduler.Scheduler,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal:
		startAPIServer(lc, r, cfg, log)
		startMessageRouter(lc, router, notificationHandler, log)
		startScheduler(lc, cfg, jobs, log)
	case types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
		startMessageRouter(lc, router, notificationHandler, log)
	case types.ModeScheduler:
		startScheduler(lc, cfg, jobs, log)
	case types.ModeConsumer:
		if cfg.Notification.PubSub != types.KafkaPubSub {
			log.Fatal("Kafka pubsub required for consumer mode")
		}
		startMessageRouter(lc, router, notificationHandler, log)
	case types.ModeAWSLambdaAPI:
		startAWSLambdaAPI(r)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	log.Info("Registering API server start hook")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting API server...")
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}

func startScheduler(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	jobs *scheduler.Scheduler,
	log *logger.Logger,
) {
	if !cfg.Scheduler.Enabled {
		log.Info("scheduler disabled, billing jobs run only through the cron endpoints")
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := jobs.Register(); err != nil {
				return err
			}
			jobs.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			jobs.Stop(ctx)
			return nil
		},
	})
}

func startAWSLambdaAPI(r *gin.Engine) {
	ginLambda := ginadapter.New(r)
	lambda.Start(ginLambda.ProxyWithContext)
}

func startMessageRouter(
	lc fx.Lifecycle,
	router *pubsubRouter.Router,
	notificationHandler notification.Handler,
	logger *logger.Logger,
) {
	// Register handlers before starting the router
	notificationHandler.RegisterHandler(router)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("starting message router")
			go func() {
				if err := router.Run(context.Background()); err != nil {
					logger.Errorw("message router failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping message router")
			return router.Close()
		},
	})
}
