package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"4000"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
	RedisURL  string `env:"REDIS_URL"`
	UploadDir string `env:"UPLOAD_DIR" default:"uploads"`

	MaxConnections int64 `env:"MAX_CONNECTIONS" default:"10000"`

	SweepInterval time.Duration `env:"HEARTBEAT_SWEEP_INTERVAL" default:"30s"`
	SessionTTL    time.Duration `env:"SESSION_TTL" default:"90s"`

	// Inbound events per connection per second, with burst headroom.
	ChatRateLimit float64 `env:"CHAT_RATE_LIMIT" default:"20"`
	ChatRateBurst int     `env:"CHAT_RATE_BURST" default:"40"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	if cfg.SweepInterval <= 0 {
		return fmt.Errorf("HEARTBEAT_SWEEP_INTERVAL must be positive")
	}
	if cfg.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if cfg.SessionTTL < cfg.SweepInterval {
		return fmt.Errorf("SESSION_TTL must be at least HEARTBEAT_SWEEP_INTERVAL")
	}
	if cfg.MaxConnections <= 0 {
		return fmt.Errorf("MAX_CONNECTIONS must be positive")
	}
	if cfg.ChatRateLimit <= 0 || cfg.ChatRateBurst <= 0 {
		return fmt.Errorf("CHAT_RATE_LIMIT and CHAT_RATE_BURST must be positive")
	}
	return nil
}
