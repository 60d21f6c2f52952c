package configs

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// Refresh modes
const (
	ModeAuto   = "auto"
	ModeLocal  = "local"
	ModeRemote = "remote"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Provider ProviderConfig
	Refresh  RefreshConfig
	Session  SessionConfig
	Auth     AuthConfig
	Telegram TelegramConfig
	Log      LogConfig
	Timezone string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// ProviderConfig holds the signal provider configuration. URL is what the
// dashboard polls, Port is where cmd/provider listens. FeedInterval paces the
// simulated signal feed of cmd/provider, zero disables it.
type ProviderConfig struct {
	URL          string
	UserID       int64
	Port         string
	FeedInterval time.Duration
}

// RefreshConfig holds the synchronization loop configuration
type RefreshConfig struct {
	Mode         string
	PollInterval time.Duration
	SimInterval  time.Duration
}

// SessionConfig holds the operator session defaults
type SessionConfig struct {
	InitialBalance float64
	TradeStake     float64
	BestSignals    int
}

// AuthConfig holds operator authentication. An empty password hash leaves
// operator routes open.
type AuthConfig struct {
	JWTSecret            string
	OperatorUsername     string
	OperatorPasswordHash string
}

// TelegramConfig holds notification configuration
type TelegramConfig struct {
	BotToken string
	ChatID   string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
	File  string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("GO_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Provider: ProviderConfig{
			URL:          getEnv("PROVIDER_URL", ""),
			UserID:       int64(getEnvInt("PROVIDER_USER_ID", 1)),
			Port:         getEnv("PROVIDER_PORT", "8000"),
			FeedInterval: getEnvDuration("PROVIDER_FEED_INTERVAL", 10*time.Second),
		},
		Refresh: RefreshConfig{
			Mode:         getEnv("REFRESH_MODE", ModeAuto),
			PollInterval: getEnvDuration("POLL_INTERVAL", 5*time.Second),
			SimInterval:  getEnvDuration("SIM_INTERVAL", 2*time.Second),
		},
		Session: SessionConfig{
			InitialBalance: getEnvFloat("INITIAL_BALANCE", 1000),
			TradeStake:     getEnvFloat("TRADE_STAKE", 10),
			BestSignals:    getEnvInt("BEST_SIGNALS", 4),
		},
		Auth: AuthConfig{
			JWTSecret:            getEnv("JWT_SECRET", "default-secret-change-in-production"),
			OperatorUsername:     getEnv("OPERATOR_USERNAME", "operator"),
			OperatorPasswordHash: getEnv("OPERATOR_PASSWORD_HASH", ""),
		},
		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
		Timezone: getEnv("TZ", ""),
	}
}

// RefreshMode resolves auto to remote when a provider URL is set
func (c *Config) RefreshMode() string {
	if c.Refresh.Mode == ModeAuto {
		if c.Provider.URL != "" {
			return ModeRemote
		}
		return ModeLocal
	}
	return c.Refresh.Mode
}

// RefreshPeriod is the cadence of the active refresh mode
func (c *Config) RefreshPeriod() time.Duration {
	if c.RefreshMode() == ModeRemote {
		return c.Refresh.PollInterval
	}
	return c.Refresh.SimInterval
}

// Validate reports configuration the dashboard cannot start with
func (c *Config) Validate() error {
	switch c.Refresh.Mode {
	case ModeAuto, ModeLocal, ModeRemote:
	default:
		return fmt.Errorf("invalid REFRESH_MODE %q (must be auto, local or remote)", c.Refresh.Mode)
	}
	if c.RefreshMode() == ModeRemote && c.Provider.URL == "" {
		return fmt.Errorf("PROVIDER_URL is required in remote mode")
	}
	if c.RefreshPeriod() <= 0 {
		return fmt.Errorf("refresh period must be positive, got %s", c.RefreshPeriod())
	}
	if c.Session.TradeStake <= 0 {
		return fmt.Errorf("TRADE_STAKE must be positive, got %v", c.Session.TradeStake)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		logrus.WithField("module", "config").Warnf("[WARN] invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logrus.WithField("module", "config").Warnf("[WARN] invalid %s=%q, using %v", key, value, defaultValue)
		return defaultValue
	}
	return f
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		logrus.WithField("module", "config").Warnf("[WARN] invalid %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
