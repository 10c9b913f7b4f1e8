package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, 0.21, cfg.Sync.ExchangeRate)
	assert.Equal(t, 1.05, cfg.Sync.MarkupRate)
	assert.Equal(t, int64(100656), cfg.Sync.CategoryID)
	assert.Equal(t, []int64{70022}, cfg.Sync.LogisticIDs)
	assert.Equal(t, 0, cfg.Sync.Limit)
	assert.Equal(t, 2, cfg.Sync.DaysToShip)
	assert.Equal(t, time.Second, cfg.Sync.InterCollectionDelay)
	assert.False(t, cfg.Postgres.Enabled)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoadSyncSettingsFromEnv(t *testing.T) {
	t.Setenv("SYNC_LOGISTIC_IDS", "70022,70023")
	t.Setenv("SYNC_EXCHANGE_RATE", "0.25")
	t.Setenv("SYNC_LIMIT", "100")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, []int64{70022, 70023}, cfg.Sync.LogisticIDs)
	assert.Equal(t, 0.25, cfg.Sync.ExchangeRate)
	assert.Equal(t, 100, cfg.Sync.Limit)
}

func TestValidateRequiresCredentials(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	// Без учетных данных обеих платформ конфигурация неполна
	assert.Error(t, cfg.Validate())

	cfg.Shopify.Store = "my-store.myshopify.com"
	cfg.Shopify.AccessToken = "shpat_test"
	cfg.Shopee.PartnerID = 2005001
	cfg.Shopee.PartnerKey = "partner-secret"
	assert.NoError(t, cfg.Validate())
}
