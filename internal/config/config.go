package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/naasdev/naas/internal/types"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment   DeploymentConfig   `validate:"required"`
	Server       ServerConfig       `validate:"required"`
	Logging      LoggingConfig      `validate:"required"`
	Postgres     PostgresConfig     `validate:"required"`
	Auth         AuthConfig         `validate:"required"`
	Billing      BillingConfig      `validate:"required"`
	Scheduler    SchedulerConfig    `mapstructure:"scheduler"`
	Notification NotificationConfig `validate:"required"`
	Kafka        KafkaConfig        `mapstructure:"kafka"`
	Email        EmailConfig        `mapstructure:"email"`
	Sentry       SentryConfig       `mapstructure:"sentry"`
	Cache        CacheConfig        `mapstructure:"cache"`
}

type DeploymentConfig struct {
	Mode types.RunMode `mapstructure:"mode" validate:"required"`
}

type ServerConfig struct {
	Address string `mapstructure:"address" validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `mapstructure:"level" validate:"required"`
}

type PostgresConfig struct {
	Host         string `mapstructure:"host" validate:"required"`
	Port         int    `mapstructure:"port" validate:"required"`
	User         string `mapstructure:"user" validate:"required"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"dbname" validate:"required"`
	SSLMode      string `mapstructure:"sslmode" validate:"required"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

type AuthConfig struct {
	Secret string       `mapstructure:"secret" validate:"required"`
	APIKey APIKeyConfig `mapstructure:"api_key"`
}

type APIKeyConfig struct {
	Header string `mapstructure:"header" validate:"required"`
	// Keys maps the sha256 hash of an API key to its details
	Keys map[string]APIKeyDetails `mapstructure:"keys"`
}

type APIKeyDetails struct {
	UserID   string `mapstructure:"user_id" json:"user_id"`
	Name     string `mapstructure:"name" json:"name"`
	IsActive bool   `mapstructure:"is_active" json:"is_active"`
}

// BillingConfig holds the rules of the billing core
type BillingConfig struct {
	// InvoiceDueDay is the day of the following month an invoice falls due
	InvoiceDueDay int `mapstructure:"invoice_due_day" validate:"required,min=1,max=28"`
	// DiscontinueAfterMonths is how many calendar months of dues discontinue a customer
	DiscontinueAfterMonths int `mapstructure:"discontinue_after_months" validate:"required,min=1"`
	// SuspensionNoticeDays is the minimum lead time for a subscription suspension
	SuspensionNoticeDays int `mapstructure:"suspension_notice_days" validate:"min=0"`
	// CancellationGraceDays is how long a cancelled subscription keeps delivering
	CancellationGraceDays int    `mapstructure:"cancellation_grace_days" validate:"min=0"`
	Currency              string `mapstructure:"currency" validate:"required,len=3"`
}

type SchedulerConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	InvoiceCron  string `mapstructure:"invoice_cron"`
	OverdueCron  string `mapstructure:"overdue_cron"`
	DispatchCron string `mapstructure:"dispatch_cron"`
	DeliveryCron string `mapstructure:"delivery_cron"`
}

type NotificationConfig struct {
	PubSub              types.PubSubType `mapstructure:"pubsub" validate:"required,oneof=memory kafka"`
	Topic               string           `mapstructure:"topic" validate:"required"`
	DispatchBatchSize   int              `mapstructure:"dispatch_batch_size" validate:"min=1"`
	DispatchConcurrency int              `mapstructure:"dispatch_concurrency" validate:"min=1"`
	// MaxRetries applies to delivery attempts in the consumer only
	MaxRetries int `mapstructure:"max_retries"`
}

type KafkaConfig struct {
	Brokers       []string `mapstructure:"brokers"`
	ConsumerGroup string   `mapstructure:"consumer_group"`
	ClientID      string   `mapstructure:"client_id"`
	TLS           bool     `mapstructure:"tls"`
	UseSASL       bool     `mapstructure:"use_sasl"`
	SASLMechanism string   `mapstructure:"sasl_mechanism"`
	SASLUser      string   `mapstructure:"sasl_user"`
	SASLPassword  string   `mapstructure:"sasl_password"`
}

type EmailConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	APIKey      string `mapstructure:"api_key"`
	FromAddress string `mapstructure:"from_address"`
	ReplyTo     string `mapstructure:"reply_to"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/naas")

	v.SetEnvPrefix("NAAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults registers every default so env overrides work without a config file
func setDefaults(v *viper.Viper) {
	d := GetDefaultConfig()
	v.SetDefault("deployment.mode", d.Deployment.Mode)
	v.SetDefault("server.address", d.Server.Address)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("postgres.host", d.Postgres.Host)
	v.SetDefault("postgres.port", d.Postgres.Port)
	v.SetDefault("postgres.user", d.Postgres.User)
	v.SetDefault("postgres.password", d.Postgres.Password)
	v.SetDefault("postgres.dbname", d.Postgres.DBName)
	v.SetDefault("postgres.sslmode", d.Postgres.SSLMode)
	v.SetDefault("postgres.max_open_conns", d.Postgres.MaxOpenConns)
	v.SetDefault("postgres.max_idle_conns", d.Postgres.MaxIdleConns)
	v.SetDefault("auth.secret", d.Auth.Secret)
	v.SetDefault("auth.api_key.header", d.Auth.APIKey.Header)
	v.SetDefault("billing.invoice_due_day", d.Billing.InvoiceDueDay)
	v.SetDefault("billing.discontinue_after_months", d.Billing.DiscontinueAfterMonths)
	v.SetDefault("billing.suspension_notice_days", d.Billing.SuspensionNoticeDays)
	v.SetDefault("billing.cancellation_grace_days", d.Billing.CancellationGraceDays)
	v.SetDefault("billing.currency", d.Billing.Currency)
	v.SetDefault("scheduler.invoice_cron", d.Scheduler.InvoiceCron)
	v.SetDefault("scheduler.overdue_cron", d.Scheduler.OverdueCron)
	v.SetDefault("scheduler.dispatch_cron", d.Scheduler.DispatchCron)
	v.SetDefault("scheduler.delivery_cron", d.Scheduler.DeliveryCron)
	v.SetDefault("notification.pubsub", d.Notification.PubSub)
	v.SetDefault("notification.topic", d.Notification.Topic)
	v.SetDefault("notification.dispatch_batch_size", d.Notification.DispatchBatchSize)
	v.SetDefault("notification.dispatch_concurrency", d.Notification.DispatchConcurrency)
	v.SetDefault("notification.max_retries", d.Notification.MaxRetries)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.ttl", d.Cache.TTL)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// and for tests that do not read a config file
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Postgres: PostgresConfig{
			Host:         "localhost",
			Port:         5432,
			User:         "naas",
			Password:     "naas",
			DBName:       "naas",
			SSLMode:      "disable",
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
		Auth: AuthConfig{
			Secret: "local-development-secret",
			APIKey: APIKeyConfig{Header: "x-api-key"},
		},
		Billing: BillingConfig{
			InvoiceDueDay:          15,
			DiscontinueAfterMonths: 2,
			SuspensionNoticeDays:   7,
			CancellationGraceDays:  7,
			Currency:               "INR",
		},
		Scheduler: SchedulerConfig{
			InvoiceCron:  "0 1 1 * *",
			OverdueCron:  "0 2 * * *",
			DispatchCron: "*/5 * * * *",
			DeliveryCron: "0 4 * * *",
		},
		Notification: NotificationConfig{
			PubSub:              types.MemoryPubSub,
			Topic:               "notifications",
			DispatchBatchSize:   100,
			DispatchConcurrency: 4,
			MaxRetries:          3,
		},
		Cache: CacheConfig{Enabled: true, TTL: 5 * time.Minute},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}
