package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, env.Parse(cfg))

	assert.Equal(t, "stripe", cfg.Processor)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 100, cfg.Sync.PageSize)
	assert.Equal(t, 10, cfg.Sync.Concurrency)
	assert.Equal(t, 5*time.Minute, cfg.Sync.LockTTL)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), cfg.Sync.DefaultCheckpoint.UTC())
	assert.Empty(t, cfg.Sync.BypassEmails)
	assert.Equal(t, "8080", cfg.HTTP.Port)
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("PAYMENT_PROCESSOR", "braintree")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_URL", "ledger.db")
	t.Setenv("SYNC_CUTOFF_BYPASS_EMAILS", "a@example.org,b@example.org")
	t.Setenv("SYNC_DEFAULT_CHECKPOINT", "2024-06-01T00:00:00Z")
	t.Setenv("BRAINTREE_MERCHANT_ID", "merchant")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg := &Config{}
	require.NoError(t, env.Parse(cfg))

	assert.Equal(t, "braintree", cfg.Processor)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "ledger.db", cfg.Database.URL)
	assert.Equal(t, []string{"a@example.org", "b@example.org"}, cfg.Sync.BypassEmails)
	assert.Equal(t, 2024, cfg.Sync.DefaultCheckpoint.Year())
	assert.Equal(t, "merchant", cfg.BrainTree.MerchantID)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}
