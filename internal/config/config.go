package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/atlas-packer/internal/storage"
)

const (
	defaultPort             = "8080"
	defaultRateLimitRPS     = 25.0
	defaultRateLimitBurst   = 50
	defaultMaxItems         = 10_000
	defaultBatchMaxJobs     = 32
	defaultBatchConcurrency = 4
	defaultLogLevel         = "info"
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port                 string
	Packing              storage.Settings
	MaxItems             int
	LogLevel             string
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
	BatchMaxJobs         int
	BatchConcurrency     int
}

// yamlConfig represents the YAML configuration file structure. Pointer fields
// distinguish "absent" from an explicit zero.
type yamlConfig struct {
	Port                 string        `yaml:"port"`
	PageSize             *int          `yaml:"page_size"`
	Padding              *int          `yaml:"padding"`
	MaxItems             *int          `yaml:"max_items"`
	LogLevel             string        `yaml:"log_level"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging *bool         `yaml:"enable_request_logging"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
	Batch                yamlBatch     `yaml:"batch"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// yamlBatch represents the batch packing section in YAML.
type yamlBatch struct {
	MaxJobs     *int `yaml:"max_jobs"`
	Concurrency *int `yaml:"concurrency"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	Port           *string
	PageSize       *int
	Padding        *int
	MaxItems       *int
	LogLevel       *string
	RateLimitRPS   *float64
	RateLimitBurst *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	if err := applyEnvConfig(&cfg); err != nil {
		return Config{}, err
	}

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		Packing:              storage.DefaultSettings(),
		MaxItems:             defaultMaxItems,
		LogLevel:             defaultLogLevel,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
		BatchMaxJobs:         defaultBatchMaxJobs,
		BatchConcurrency:     defaultBatchConcurrency,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}
	if yamlCfg.PageSize != nil {
		cfg.Packing.PageSize = *yamlCfg.PageSize
	}
	if yamlCfg.Padding != nil {
		cfg.Packing.Padding = *yamlCfg.Padding
	}
	if yamlCfg.MaxItems != nil {
		cfg.MaxItems = *yamlCfg.MaxItems
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}

	durations := []struct {
		raw  string
		key  string
		dest *time.Duration
	}{
		{yamlCfg.ShutdownGracePeriod, "shutdown_grace_period", &cfg.ShutdownGracePeriod},
		{yamlCfg.ReadHeaderTimeout, "read_header_timeout", &cfg.ReadHeaderTimeout},
		{yamlCfg.WriteTimeout, "write_timeout", &cfg.WriteTimeout},
		{yamlCfg.IdleTimeout, "idle_timeout", &cfg.IdleTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		value, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dest = value
	}

	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}
	if yamlCfg.RateLimit.RPS != nil {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}
	if yamlCfg.RateLimit.Burst != nil {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}
	if yamlCfg.Batch.MaxJobs != nil {
		cfg.BatchMaxJobs = *yamlCfg.Batch.MaxJobs
	}
	if yamlCfg.Batch.Concurrency != nil {
		cfg.BatchConcurrency = *yamlCfg.Batch.Concurrency
	}

	return nil
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) error {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Port = port
	}
	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	ints := []struct {
		name string
		dest *int
	}{
		{"PAGE_SIZE", &cfg.Packing.PageSize},
		{"PADDING", &cfg.Packing.Padding},
		{"MAX_ITEMS", &cfg.MaxItems},
		{"RATE_LIMIT_BURST", &cfg.RateLimitBurst},
		{"BATCH_MAX_JOBS", &cfg.BatchMaxJobs},
		{"BATCH_CONCURRENCY", &cfg.BatchConcurrency},
	}
	for _, env := range ints {
		raw := strings.TrimSpace(os.Getenv(env.name))
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", env.name, raw)
		}
		*env.dest = value
	}

	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		value, err := strconv.ParseFloat(rps, 64)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_RPS: invalid number %q", rps)
		}
		cfg.RateLimitRPS = value
	}

	return nil
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}
	if overrides.PageSize != nil {
		cfg.Packing.PageSize = *overrides.PageSize
	}
	if overrides.Padding != nil {
		cfg.Packing.Padding = *overrides.Padding
	}
	if overrides.MaxItems != nil {
		cfg.MaxItems = *overrides.MaxItems
	}
	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = *overrides.LogLevel
	}
	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}
	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if err := cfg.Packing.Validate(); err != nil {
		return fmt.Errorf("packing settings: %w", err)
	}
	if cfg.MaxItems <= 0 {
		return fmt.Errorf("MAX_ITEMS must be > 0")
	}
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	if cfg.BatchMaxJobs <= 0 {
		return fmt.Errorf("BATCH_MAX_JOBS must be > 0")
	}
	if cfg.BatchConcurrency <= 0 {
		return fmt.Errorf("BATCH_CONCURRENCY must be > 0")
	}
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return nil
}
