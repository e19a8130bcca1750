package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	AppPort     string `env:"APP_PORT" envDefault:"8080"`
	Environment string `env:"APP_ENV" envDefault:"development"`

	// Identity provider (GoTrue-compatible auth API).
	AuthBaseURL      string `env:"AUTH_BASE_URL"`
	AuthIssuer       string `env:"AUTH_ISSUER"`
	AuthClientID     string `env:"AUTH_CLIENT_ID"`
	AuthClientSecret string `env:"AUTH_CLIENT_SECRET"`
	AuthRedirectURL  string `env:"AUTH_REDIRECT_URL"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	DatabaseDSN string `env:"DATABASE_DSN"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Environment != EnvDevelopment && c.Environment != EnvProduction {
		return fmt.Errorf("unknown APP_ENV %q", c.Environment)
	}
	if c.AuthBaseURL == "" {
		return errors.New("AUTH_BASE_URL is required")
	}
	if c.AuthClientID == "" || c.AuthRedirectURL == "" {
		return errors.New("AUTH_CLIENT_ID and AUTH_REDIRECT_URL are required")
	}
	if c.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN is required")
	}
	return nil
}

// Production reports whether redirect targets should honor the
// X-Forwarded-Host header instead of the request origin.
func (c Config) Production() bool {
	return c.Environment == EnvProduction
}
