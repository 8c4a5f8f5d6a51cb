// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration values for the API server.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string `envconfig:"PORT" default:"8080"`

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// LogLevel controls the minimum log level: debug, info, warn, or error.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// CORSOrigins is the comma-separated list of allowed cross-origin request origins.
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`

	// MaxBodyBytes caps request body size.
	MaxBodyBytes int64 `envconfig:"MAX_BODY_BYTES" default:"1048576"`

	// AutoMigrate applies pending goose migrations before serving.
	AutoMigrate bool `envconfig:"AUTO_MIGRATE" default:"true"`

	// AMQPURL enables booking event publishing to RabbitMQ when set.
	// Events are only logged otherwise.
	AMQPURL string `envconfig:"AMQP_URL"`

	// AMQPExchange is the topic exchange booking events are published to.
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"device-lending"`
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error naming any required variable that is not set or any value
// that cannot be parsed.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}

	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return Config{}, fmt.Errorf("config.Load: required environment variable not set: DATABASE_URL")
	}
	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)
	if cfg.MaxBodyBytes <= 0 {
		return Config{}, fmt.Errorf("config.Load: MAX_BODY_BYTES must be positive, got %d", cfg.MaxBodyBytes)
	}
	return cfg, nil
}

// trimAll trims whitespace around each entry and drops empty ones, so
// "a, b," becomes ["a", "b"].
func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
