package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken string
	// GuildID registers slash commands to one guild instead of globally
	GuildID string

	LogLevel  string
	LogFormat string

	HistoryLimit        int
	DefaultScanWindow   int
	DefaultRemoveWindow int

	DatabasePath      string
	ActivityRetention time.Duration

	MetricsAddr string

	PresenceSchedule string
	CleanupSchedule  string
}

var ErrDiscordTokenNotSet = errors.New("DISCORD_TOKEN is not set")

// DefaultConfig returns the configuration used when no overrides are set
func DefaultConfig() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		HistoryLimit:        100,
		DefaultScanWindow:   32,
		DefaultRemoveWindow: 10,
		ActivityRetention:   30 * 24 * time.Hour,
		PresenceSchedule:    "0 */5 * * * *",
		CleanupSchedule:     "0 0 * * * *",
	}
}

// LoadConfig reads .env (if present) and the environment
func LoadConfig() (*Config, error) {
	// A missing .env is fine; the environment may already be populated
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg := DefaultConfig()
	cfg.LoadFromEnvironment()

	if cfg.DiscordToken == "" {
		return nil, ErrDiscordTokenNotSet
	}
	return cfg, nil
}

// LoadFromEnvironment overrides fields from environment variables
func (c *Config) LoadFromEnvironment() {
	c.DiscordToken = os.Getenv("DISCORD_TOKEN")
	c.GuildID = os.Getenv("DISCORD_GUILD_ID")

	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.LogFormat = val
	}

	if val := os.Getenv("HISTORY_LIMIT"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.HistoryLimit = n
		}
	}
	if val := os.Getenv("DEFAULT_SCAN_WINDOW"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.DefaultScanWindow = n
		}
	}
	if val := os.Getenv("DEFAULT_REMOVE_WINDOW"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.DefaultRemoveWindow = n
		}
	}

	if val, ok := os.LookupEnv("DATABASE_PATH"); ok {
		c.DatabasePath = val
	}
	if val := os.Getenv("ACTIVITY_RETENTION"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.ActivityRetention = d
		}
	}

	if val, ok := os.LookupEnv("METRICS_ADDR"); ok {
		c.MetricsAddr = val
	}

	if val := os.Getenv("PRESENCE_SCHEDULE"); val != "" {
		c.PresenceSchedule = val
	}
	if val := os.Getenv("CLEANUP_SCHEDULE"); val != "" {
		c.CleanupSchedule = val
	}
}
