package config

import (
	"testing"

	"github.com/naasdev/naas/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 15, cfg.Billing.InvoiceDueDay)
	assert.Equal(t, 2, cfg.Billing.DiscontinueAfterMonths)
	assert.Equal(t, types.MemoryPubSub, cfg.Notification.PubSub)
}

func TestValidateRejectsBadBilling(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Billing.InvoiceDueDay = 31
	assert.Error(t, cfg.Validate())

	cfg = GetDefaultConfig()
	cfg.Notification.PubSub = "redis"
	assert.Error(t, cfg.Validate())
}

func TestNewConfig_EnvOverride(t *testing.T) {
	t.Setenv("NAAS_BILLING_INVOICE_DUE_DAY", "10")
	t.Setenv("NAAS_SERVER_ADDRESS", ":9090")

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Billing.InvoiceDueDay)
	assert.Equal(t, ":9090", cfg.Server.Address)
}

func TestPostgresDSN(t *testing.T) {
	cfg := GetDefaultConfig()
	assert.Equal(t,
		"user=naas password=naas dbname=naas host=localhost port=5432 sslmode=disable",
		cfg.Postgres.GetDSN(),
	)
}
