package config

import (
	"time"
)

// Config represents the complete application configuration. Values are
// merged from defaults, an optional YAML config file, and environment
// variables (OPTIONSMAILER_* plus the legacy deployment names).
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	LoadBoard LoadBoardConfig `mapstructure:"loadboard"`
	AWS       AWSConfig       `mapstructure:"aws"`
	Email     EmailConfig     `mapstructure:"email"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Cooldown  CooldownConfig  `mapstructure:"cooldown"`
	DataDir   string          `mapstructure:"data_dir"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Health    HealthConfig    `mapstructure:"health"`
	Debug     DebugConfig     `mapstructure:"debug"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoadBoardConfig points at the load board REST endpoint (PostgREST style).
type LoadBoardConfig struct {
	URL    string `mapstructure:"url"`
	APIKey string `mapstructure:"api_key"`
	OrgID  string `mapstructure:"org_id"`
}

// AWSConfig contains the region and the reporting function name.
type AWSConfig struct {
	Region         string `mapstructure:"region"`
	LambdaFunction string `mapstructure:"lambda_function"`
}

// EmailConfig contains sender and recipient addresses. Recipients accepts a
// comma-separated list in the environment variable form.
type EmailConfig struct {
	Sender     string   `mapstructure:"sender"`
	Recipients []string `mapstructure:"recipients"`
}

// SchedulerConfig controls the periodic dispatch loop.
type SchedulerConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

// CooldownConfig controls the minimum spacing between sent reports.
type CooldownConfig struct {
	Window time.Duration `mapstructure:"window"`
}

// LoggingConfig contains logging configuration.
// Profile selects the logging complexity level:
// - SIMPLE: Console output only, minimal configuration (CLI commands)
// - STRUCTURED: Structured sinks, correlation IDs (server mode)
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level"`

	// Profile selects the logging complexity level
	// Valid values: SIMPLE, STRUCTURED
	Profile string `mapstructure:"profile"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	// Enabled controls whether metrics are exposed
	Enabled bool `mapstructure:"enabled"`

	// Port is the dedicated metrics endpoint port (Prometheus format)
	// Metrics are also available at the main HTTP port in JSON format
	Port int `mapstructure:"port"`
}

// HealthConfig contains health check configuration
type HealthConfig struct {
	// Enabled controls whether health endpoints are exposed
	Enabled bool `mapstructure:"enabled"`
}

// DebugConfig contains debug and profiling configuration
type DebugConfig struct {
	// Enabled controls whether debug mode is active
	Enabled bool `mapstructure:"enabled"`

	// PprofEnabled controls whether pprof endpoints are exposed
	// WARNING: Only enable in development/staging environments
	PprofEnabled bool `mapstructure:"pprof_enabled"`
}
