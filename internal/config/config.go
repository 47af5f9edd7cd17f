// Package config loads and validates application configuration from an
// optional YAML file and environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration values for the API server and the CLI.
// Values are populated by Load; env vars always override the YAML file.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string `yaml:"port" env:"PORT"`

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL"`

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS" env-separator:","`

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64 `yaml:"max_body_bytes" env:"MAX_BODY_BYTES"`

	Redis   Redis   `yaml:"redis"`
	Kafka   Kafka   `yaml:"kafka"`
	Flights Flights `yaml:"flights"`
	GenAI   GenAI   `yaml:"genai"`

	// ExchangeRates maps currency codes to their value in a common base
	// currency, e.g. "USD:1,EUR:0.92,KRW:1380".
	ExchangeRates map[string]string `yaml:"exchange_rates" env:"EXCHANGE_RATES"`

	// MetricsDisabled hides /metrics.
	MetricsDisabled bool `yaml:"metrics_disabled" env:"METRICS_DISABLED"`
}

// Redis configures the trip cache. The cache is disabled when Addr is empty.
type Redis struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB"`
	TTL      time.Duration `yaml:"ttl" env:"REDIS_TTL"`
}

// Kafka configures trip-change events. Publishing is disabled when Brokers is empty.
type Kafka struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	Topic   string   `yaml:"topic" env:"KAFKA_TOPIC"`
}

// Flights configures the flight schedule lookup service.
type Flights struct {
	URL    string `yaml:"url" env:"FLIGHT_API_URL"`
	APIKey string `yaml:"api_key" env:"FLIGHT_API_KEY"`
}

// GenAI configures the generative-AI service used for travel-time estimates
// and the trip assistant.
type GenAI struct {
	URL             string        `yaml:"url" env:"GENAI_API_URL"`
	APIKey          string        `yaml:"api_key" env:"GENAI_API_KEY"`
	Model           string        `yaml:"model" env:"GENAI_MODEL"`
	EstimateTimeout time.Duration `yaml:"estimate_timeout" env:"ESTIMATE_TIMEOUT"`
}

// Load reads configuration and returns a Config.
// When CONFIG_FILE names a YAML file it is read first; environment variables
// then override it. Returns an error listing any required variables that are
// not set.
func Load() (Config, error) {
	var cfg Config

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: read env: %w", err)
	}

	cfg.applyDefaults()

	var missing []string
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// applyDefaults fills every optional value left empty by the file and the
// environment. An env var that is set but empty counts as unset.
func (c *Config) applyDefaults() {
	setDefault(&c.Port, "8080")
	setDefault(&c.LogLevel, "info")
	setDefault(&c.Kafka.Topic, "trip-events")
	setDefault(&c.GenAI.URL, "https://api.openai.com/v1/responses")
	setDefault(&c.GenAI.Model, "gpt-4o-mini")

	c.CORSOrigins = trimAll(c.CORSOrigins)
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"http://localhost:5173"}
	}
	c.Kafka.Brokers = trimAll(c.Kafka.Brokers)

	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 1 << 20
	}
	if c.Redis.TTL <= 0 {
		c.Redis.TTL = 5 * time.Minute
	}
	if c.GenAI.EstimateTimeout <= 0 {
		c.GenAI.EstimateTimeout = 15 * time.Second
	}
	if len(c.ExchangeRates) == 0 {
		c.ExchangeRates = map[string]string{"USD": "1"}
	}
}

func setDefault(v *string, fallback string) {
	if strings.TrimSpace(*v) == "" {
		*v = fallback
	}
}

// trimAll trims every entry and drops the empty ones.
func trimAll(in []string) []string {
	var out []string
	for _, part := range in {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
