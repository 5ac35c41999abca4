package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	PlacesAPI   PlacesAPIConfig `toml:"places_api"`
	Cache       CacheConfig     `toml:"cache"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
}

// PlacesAPIConfig contains Google Places/Geocoding API configuration
type PlacesAPIConfig struct {
	APIKey         string        `toml:"api_key" validate:"required"` // Google Places API key
	RequestTimeout time.Duration `toml:"request_timeout"`             // HTTP request timeout
	RateLimit      int           `toml:"rate_limit"`                  // Max requests per second
	Language       string        `toml:"language"`                    // Default language code (e.g. "en")
	Region         string        `toml:"region"`                      // Default region bias (ccTLD, e.g. "us")
}

// CacheConfig controls response caching behavior
type CacheConfig struct {
	Enabled           bool `toml:"enabled"`
	ExpirationSeconds int  `toml:"expiration_seconds" validate:"gte=0"` // Entry lifetime in seconds
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		PlacesAPI: PlacesAPIConfig{
			APIKey:         "", // User must provide API key in config file
			RequestTimeout: 15 * time.Second,
			RateLimit:      10, // Respects Google API quotas
			Language:       "",
			Region:         "",
		},
		Cache: CacheConfig{
			Enabled:           true,
			ExpirationSeconds: 86400, // 24 hours
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files.
// Later files override earlier files; environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// Validate checks configuration invariants. Violations are reported as
// InvalidConfigurationError values.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return &InvalidConfigurationError{
				Field:  errs[0].Namespace(),
				Reason: fmt.Sprintf("failed %q validation", errs[0].Tag()),
			}
		}
		return err
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("LOCUS_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if key := os.Getenv("LOCUS_API_KEY"); key != "" {
		config.PlacesAPI.APIKey = key
	}
	if timeout := os.Getenv("LOCUS_REQUEST_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.PlacesAPI.RequestTimeout = d
		}
	}
	if rateLimit := os.Getenv("LOCUS_RATE_LIMIT"); rateLimit != "" {
		if rl, err := strconv.Atoi(rateLimit); err == nil {
			config.PlacesAPI.RateLimit = rl
		}
	}

	if enabled := os.Getenv("LOCUS_CACHE_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			config.Cache.Enabled = b
		}
	}
	if expiration := os.Getenv("LOCUS_CACHE_EXPIRATION"); expiration != "" {
		if secs, err := strconv.Atoi(expiration); err == nil {
			config.Cache.ExpirationSeconds = secs
		}
	}

	if badgerPath := os.Getenv("LOCUS_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	if level := os.Getenv("LOCUS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// InvalidConfigurationError reports a configuration value that violates an
// invariant (missing API key, negative cache expiration).
type InvalidConfigurationError struct {
	Field  string
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}
