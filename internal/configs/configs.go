/*
Package configs is responsible for loading and parsing the application's configuration settings.

Server parameters are read from operating system environment variables: the running environment,
listen port, allowed origins, static asset root, profanity filtering and per-connection rate limits.
*/
package configs

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// EnvDevelopment is the environment name that enables console logging and relaxed origin checks.
const EnvDevelopment = "development"

// AppConfig contains all configuration parameters required for the application to run.
// All configuration values are loaded from environment variables.
type AppConfig struct {
	// General Server Settings
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Port        int    `env:"PORT" envDefault:"3000"`
	PublicDir   string `env:"PUBLIC_DIR" envDefault:"./public"`

	// Security Settings
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	// Chat Settings
	ProfanityFilter bool    `env:"PROFANITY_FILTER" envDefault:"true"`
	MessageRate     float64 `env:"MESSAGE_RATE" envDefault:"5"`
	MessageBurst    int     `env:"MESSAGE_BURST" envDefault:"10"`
}

// IsDevelopment reports whether the server runs in the development environment.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// LoadConfig reads and parses the application configuration from environment variables.
// Defaults come from the struct tags; the values are then normalized and validated.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.Environment = strings.TrimSpace(cfg.Environment)
	if cfg.Environment == "" {
		cfg.Environment = EnvDevelopment
	}

	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", cfg.Port, 1024, 65535)
	}

	origins := make([]string, 0, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	cfg.AllowedOrigins = origins

	if cfg.MessageRate <= 0 {
		return nil, fmt.Errorf("MESSAGE_RATE must be positive, got %v", cfg.MessageRate)
	}
	if cfg.MessageBurst < 1 {
		return nil, fmt.Errorf("MESSAGE_BURST must be at least 1, got %d", cfg.MessageBurst)
	}

	return cfg, nil
}
