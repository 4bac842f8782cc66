// Package config loads the service configuration from a YAML file plus the
// process environment. Secrets never live in the YAML file; they come from
// the environment, optionally seeded from a .env file.
package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/trade-journal/pkg/errors"
)

// Duration wraps time.Duration so YAML files can use "1h30m" notation.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid duration %q", raw)
	}

	*d = Duration(parsed)

	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Environment variables overriding or supplementing the YAML file.
const (
	EnvJWTSecret      = "JOURNAL_JWT_SECRET"
	EnvQuoteAPIKey    = "JOURNAL_QUOTE_API_KEY"
	EnvQuoteAPISecret = "JOURNAL_QUOTE_API_SECRET"
)

// QuoteConfig selects and configures the optional market-price provider.
// An empty Provider disables quotes; unrealized P/L is then reported
// unavailable rather than guessed.
type QuoteConfig struct {
	Provider  string `yaml:"provider" json:"provider" validate:"omitempty,oneof=binance polygon"`
	APIKey    string `yaml:"-" json:"-"`
	APISecret string `yaml:"-" json:"-"`
}

// Config is the full service configuration.
type Config struct {
	// Addr is the listen address of the HTTP server.
	Addr string `yaml:"addr" json:"addr" validate:"required"`
	// DatabasePath is the DuckDB file path. ":memory:" keeps everything
	// ephemeral.
	DatabasePath string `yaml:"database_path" json:"database_path" validate:"required"`
	// JWTSecret signs session tokens. Environment only.
	JWTSecret string `yaml:"-" json:"-" validate:"required"`
	// TokenTTL bounds session lifetime.
	TokenTTL Duration `yaml:"token_ttl" json:"token_ttl"`
	// Quote is the optional market-price provider.
	Quote QuoteConfig `yaml:"quote" json:"quote"`
}

// Default returns the configuration used when no YAML file is given.
func Default() Config {
	return Config{
		Addr:         ":8080",
		DatabasePath: "journal.duckdb",
		TokenTTL:     Duration(24 * time.Hour),
	}
}

// Load reads the configuration from path and the environment. An empty path
// skips the YAML file and uses defaults. A missing .env file is not an error.
func Load(path string) (Config, error) {
	// Seed the environment from .env when present.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config file %s", path)
		}
	}

	cfg.JWTSecret = os.Getenv(EnvJWTSecret)
	cfg.Quote.APIKey = os.Getenv(EnvQuoteAPIKey)
	cfg.Quote.APISecret = os.Getenv(EnvQuoteAPISecret)

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = Duration(24 * time.Hour)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration for completeness.
func (c *Config) Validate() error {
	validate := validator.New()

	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	return nil
}
