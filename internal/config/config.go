package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"fairlens/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Source    SourceConfig
	Pipeline  PipelineConfig
	Models    ModelConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Profiling ProfilingConfig
}

// SourceConfig holds dataset resolution settings
type SourceConfig struct {
	// URL is the canonical remote table location.
	URL string
	// FallbackPath is the conventional local copy read when the remote
	// fetch fails. Delimited text or .xlsx by extension.
	FallbackPath string
	FetchTimeout time.Duration
}

// PipelineConfig holds cleaning and splitting settings
type PipelineConfig struct {
	Seed         int64
	TestFraction float64
	// MinRows is the minimum viable dataset size after cleaning.
	MinRows int
	// TrimOutliers enables the IQR fence on the schema's fenced columns.
	TrimOutliers bool
}

// ModelConfig holds the recognized model hyperparameters
type ModelConfig struct {
	// EnsembleTreeCount is the forest size.
	EnsembleTreeCount int
	// EnsembleMaxDepth limits tree depth; 0 means unlimited.
	EnsembleMaxDepth int
	// LinearRegularizationStrength is the inverse-regularization
	// coefficient C of the logistic model.
	LinearRegularizationStrength float64
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DatabaseConfig holds optional persistence settings. An empty URL means runs
// stay in memory.
type DatabaseConfig struct {
	URL string
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

const (
	// DefaultDataURL is the canonical UCI Adult training table.
	DefaultDataURL      = "https://archive.ics.uci.edu/ml/machine-learning-databases/adult/adult.data"
	DefaultFallbackPath = "data/adult.data"

	DefaultSeed         = int64(42)
	DefaultTestFraction = 0.2
	DefaultMinRows      = 10
	DefaultTreeCount    = 100
	DefaultMaxDepth     = 0
	DefaultLinearC      = 1.0
)

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Source: SourceConfig{
			URL:          getEnvOrDefault("DATA_URL", DefaultDataURL),
			FallbackPath: getEnvOrDefault("DATA_FALLBACK_PATH", DefaultFallbackPath),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
		Profiling: ProfilingConfig{
			Port: getEnvOrDefault("PPROF_PORT", "6060"),
		},
	}

	// Typed values parse strictly: a malformed setting is a configuration
	// error, not a silent fallback to the default.
	var err error
	if config.Source.FetchTimeout, err = getEnvDuration("FETCH_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if config.Pipeline.Seed, err = getEnvInt64("RANDOM_SEED", DefaultSeed); err != nil {
		return nil, err
	}
	if config.Pipeline.TestFraction, err = getEnvFloat("TEST_FRACTION", DefaultTestFraction); err != nil {
		return nil, err
	}
	if config.Pipeline.MinRows, err = getEnvInt("MIN_ROWS", DefaultMinRows); err != nil {
		return nil, err
	}
	if config.Pipeline.TrimOutliers, err = getEnvBool("TRIM_OUTLIERS", true); err != nil {
		return nil, err
	}
	if config.Models.EnsembleTreeCount, err = getEnvInt("ENSEMBLE_TREE_COUNT", DefaultTreeCount); err != nil {
		return nil, err
	}
	if config.Models.EnsembleMaxDepth, err = getEnvInt("ENSEMBLE_MAX_DEPTH", DefaultMaxDepth); err != nil {
		return nil, err
	}
	if config.Models.LinearRegularizationStrength, err = getEnvFloat("LINEAR_REG_STRENGTH", DefaultLinearC); err != nil {
		return nil, err
	}
	if config.Profiling.Enabled, err = getEnvBool("PPROF_ENABLED", true); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects out-of-range settings outright; nothing is clamped.
func (c *Config) Validate() error {
	if c.Source.URL == "" && c.Source.FallbackPath == "" {
		return errors.ConfigInvalid("at least one of DATA_URL and DATA_FALLBACK_PATH is required")
	}
	if c.Source.FetchTimeout <= 0 {
		return errors.ConfigInvalid("FETCH_TIMEOUT must be positive")
	}
	if c.Pipeline.TestFraction <= 0 || c.Pipeline.TestFraction >= 1 {
		return errors.ConfigInvalid(fmt.Sprintf("TEST_FRACTION must be in (0,1), got %v", c.Pipeline.TestFraction))
	}
	if c.Pipeline.MinRows < 2 {
		return errors.ConfigInvalid("MIN_ROWS must be at least 2")
	}
	if c.Models.EnsembleTreeCount < 1 {
		return errors.ConfigInvalid(fmt.Sprintf("ENSEMBLE_TREE_COUNT must be at least 1, got %d", c.Models.EnsembleTreeCount))
	}
	if c.Models.EnsembleMaxDepth < 0 {
		return errors.ConfigInvalid(fmt.Sprintf("ENSEMBLE_MAX_DEPTH cannot be negative, got %d", c.Models.EnsembleMaxDepth))
	}
	if c.Models.LinearRegularizationStrength <= 0 {
		return errors.ConfigInvalid(fmt.Sprintf("LINEAR_REG_STRENGTH must be positive, got %v", c.Models.LinearRegularizationStrength))
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s must be an integer, got %q", key, value))
	}
	return parsed, nil
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s must be an integer, got %q", key, value))
	}
	return parsed, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s must be a number, got %q", key, value))
	}
	return parsed, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, errors.ConfigInvalid(fmt.Sprintf("%s must be a boolean, got %q", key, value))
	}
	return parsed, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s must be a duration like 30s, got %q", key, value))
	}
	return parsed, nil
}
