package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, BotModePolling, cfg.Telegram.Mode)
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Equal(t, int64(1000), cfg.Rewards.MinWithdrawal)
	assert.Equal(t, int64(0), cfg.Rewards.DailyCap)
	assert.Equal(t, time.Minute, cfg.Rewards.KeywordRefresh)
	assert.Contains(t, cfg.Rewards.WalletDomains, "ln.tips")
	assert.Equal(t, 64, cfg.Bot.MaxConcurrency)
}

func TestLoadRequiresBotToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("MIN_WITHDRAWAL", "5000")
	t.Setenv("ADMIN_IDS", "1,42")
	t.Setenv("WALLET_ALLOWED_DOMAINS", " .Example.COM , ,ln.tips")
	t.Setenv("STORAGE", "Memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(5000), cfg.Rewards.MinWithdrawal)
	assert.Equal(t, []string{"example.com", "ln.tips"}, cfg.Rewards.WalletDomains)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.True(t, cfg.IsAdmin(42))
	assert.False(t, cfg.IsAdmin(7))
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		c := &Config{Storage: StoragePostgres}
		c.Telegram.Mode = BotModePolling
		c.Rewards.MinWithdrawal = 1000
		c.Rewards.WalletDomains = []string{"ln.tips"}
		c.Rewards.MaxKeywordMultiplier = 10
		c.Bot.MaxConcurrency = 1
		return c
	}

	require.NoError(t, base().Validate())

	c := base()
	c.Telegram.Mode = BotModeWebhook
	assert.Error(t, c.Validate(), "webhook mode without secret")

	c = base()
	c.Telegram.Mode = "carrier-pigeon"
	assert.Error(t, c.Validate())

	c = base()
	c.Rewards.MinWithdrawal = 0
	assert.Error(t, c.Validate())

	c = base()
	c.Rewards.WalletDomains = nil
	assert.Error(t, c.Validate())

	c = base()
	c.Storage = "sqlite"
	assert.Error(t, c.Validate())
}
