package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"8080" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	JWTSecret      string `env:"JWT_SECRET,required" validate:"required,min=32"`
	AccessTTLMin   int    `env:"ACCESS_TTL_MIN"   envDefault:"60" validate:"min=1,max=1440"`
	RefreshTTLDays int    `env:"REFRESH_TTL_DAYS" envDefault:"7"  validate:"min=1,max=90"`
	PurposeTTLMin  int    `env:"PURPOSE_TTL_MIN"  envDefault:"60" validate:"min=1,max=1440"`
	BcryptCost     int    `env:"BCRYPT_COST"      envDefault:"10" validate:"min=4,max=31"`

	// AppURL is the base for verification/reset links embedded in emails.
	AppURL string `env:"APP_URL" envDefault:"http://localhost:8080"`

	// MailerSchedule is a robfig/cron spec driving the email drain loop.
	MailerSchedule string `env:"MAILER_SCHEDULE" envDefault:"@every 30s" validate:"required"`

	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"    validate:"required_if=Env production,required_if=Env staging"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL" envDefault:"http://localhost:3000/api/auth/callback"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) AccessTTL() time.Duration  { return time.Duration(c.AccessTTLMin) * time.Minute }
func (c *Config) RefreshTTL() time.Duration { return time.Duration(c.RefreshTTLDays) * 24 * time.Hour }
func (c *Config) PurposeTTL() time.Duration { return time.Duration(c.PurposeTTLMin) * time.Minute }
