package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_RequiresToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")

	cfg, err := LoadConfig()

	assert.ErrorIs(t, err, ErrDiscordTokenNotSet)
	assert.Nil(t, cfg)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "token", cfg.DiscordToken)
	assert.Equal(t, 100, cfg.HistoryLimit)
	assert.Equal(t, 32, cfg.DefaultScanWindow)
	assert.Equal(t, 10, cfg.DefaultRemoveWindow)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 720*time.Hour, cfg.ActivityRetention)
	assert.Equal(t, "0 */5 * * * *", cfg.PresenceSchedule)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("DISCORD_GUILD_ID", "123")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("HISTORY_LIMIT", "250")
	t.Setenv("DEFAULT_SCAN_WINDOW", "50")
	t.Setenv("DEFAULT_REMOVE_WINDOW", "not-a-number")
	t.Setenv("DATABASE_PATH", "/tmp/reactor.db")
	t.Setenv("ACTIVITY_RETENTION", "48h")
	t.Setenv("METRICS_ADDR", ":9090")
	t.Setenv("CLEANUP_SCHEDULE", "0 30 * * * *")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "123", cfg.GuildID)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 250, cfg.HistoryLimit)
	assert.Equal(t, 50, cfg.DefaultScanWindow)
	assert.Equal(t, 10, cfg.DefaultRemoveWindow, "invalid values keep the default")
	assert.Equal(t, "/tmp/reactor.db", cfg.DatabasePath)
	assert.Equal(t, 48*time.Hour, cfg.ActivityRetention)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, "0 30 * * * *", cfg.CleanupSchedule)
}
