// Package config provides centralized configuration management for the
// options mailer. Values merge in three layers: built-in defaults, an
// optional YAML config file, and environment variables. Besides the
// OPTIONSMAILER_* names, the loader honors the bare variable names the
// original deployment used (SUPABASE_URL, EMAIL_TO, ...), so an existing
// environment keeps working unchanged.
package config

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix is the canonical environment variable prefix.
const EnvPrefix = "OPTIONSMAILER"

// envAliases maps config keys to the environment variable names accepted in
// addition to the automatic OPTIONSMAILER_* form. The bare names come from
// the original deployment and keep precedence order: prefixed first.
var envAliases = map[string][]string{
	"loadboard.url":     {"OPTIONSMAILER_LOADBOARD_URL", "SUPABASE_URL"},
	"loadboard.api_key": {"OPTIONSMAILER_LOADBOARD_API_KEY", "SUPABASE_KEY"},
	"loadboard.org_id":  {"OPTIONSMAILER_ORG_ID", "ORG_ID"},

	"aws.region":          {"OPTIONSMAILER_AWS_REGION", "AWS_REGION"},
	"aws.lambda_function": {"OPTIONSMAILER_LAMBDA_FUNCTION", "LAMBDA_FUNCTION_NAME"},

	"email.sender":     {"OPTIONSMAILER_EMAIL_SENDER", "SENDER_EMAIL"},
	"email.recipients": {"OPTIONSMAILER_EMAIL_RECIPIENTS", "EMAIL_TO"},

	"scheduler.enabled":  {"OPTIONSMAILER_SCHEDULER_ENABLED", "ENABLE_EMAIL_SCHEDULER"},
	"scheduler.interval": {"OPTIONSMAILER_SCHEDULER_INTERVAL", "EMAIL_SCHEDULE_INTERVAL_MINUTES"},
	"cooldown.window":    {"OPTIONSMAILER_COOLDOWN_WINDOW", "EMAIL_COOLDOWN_MINUTES"},
	"data_dir":           {"OPTIONSMAILER_DATA_DIR", "DATA_DIR"},

	"server.host":             {"OPTIONSMAILER_HOST"},
	"server.port":             {"OPTIONSMAILER_PORT", "PORT"},
	"server.read_timeout":     {"OPTIONSMAILER_READ_TIMEOUT"},
	"server.write_timeout":    {"OPTIONSMAILER_WRITE_TIMEOUT"},
	"server.idle_timeout":     {"OPTIONSMAILER_IDLE_TIMEOUT"},
	"server.shutdown_timeout": {"OPTIONSMAILER_SHUTDOWN_TIMEOUT"},

	"logging.level":       {"OPTIONSMAILER_LOG_LEVEL"},
	"logging.profile":     {"OPTIONSMAILER_LOG_PROFILE"},
	"metrics.enabled":     {"OPTIONSMAILER_METRICS_ENABLED"},
	"metrics.port":        {"OPTIONSMAILER_METRICS_PORT"},
	"health.enabled":      {"OPTIONSMAILER_HEALTH_ENABLED"},
	"debug.enabled":       {"OPTIONSMAILER_DEBUG_ENABLED"},
	"debug.pprof_enabled": {"OPTIONSMAILER_DEBUG_PPROF_ENABLED"},
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.profile", "structured")

	// Load board defaults
	v.SetDefault("loadboard.url", "")
	v.SetDefault("loadboard.api_key", "")
	v.SetDefault("loadboard.org_id", "")

	// AWS defaults
	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.lambda_function", "")

	// Email defaults
	v.SetDefault("email.sender", "")
	v.SetDefault("email.recipients", []string{})

	// Scheduler defaults: off unless explicitly enabled, hourly attempts.
	// Deployments that never set ENABLE_EMAIL_SCHEDULER must not start
	// sending on a timer.
	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.interval", "60m")

	// Cooldown defaults: one report per hour
	v.SetDefault("cooldown.window", "60m")

	// Cooldown marker location
	v.SetDefault("data_dir", "./data")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)

	// Health check defaults
	v.SetDefault("health.enabled", true)

	// Debug defaults
	v.SetDefault("debug.enabled", false)
	v.SetDefault("debug.pprof_enabled", false)
}

// BindEnv wires environment variables onto v, including the legacy alias
// names. Call after SetDefaults.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range envAliases {
		args := append([]string{key}, names...)
		_ = v.BindEnv(args...)
	}
}

// Load decodes v into a typed Config. Duration fields accept Go duration
// strings ("90m") and bare integers, which are read as minutes to match the
// original *_MINUTES environment variables.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			minutesToDurationHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cleanRecipients(cfg)

	return cfg, nil
}

// Validate checks the fields a dispatch cannot run without.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.LoadBoard.URL) == "" {
		missing = append(missing, "loadboard.url (SUPABASE_URL)")
	}
	if strings.TrimSpace(c.LoadBoard.APIKey) == "" {
		missing = append(missing, "loadboard.api_key (SUPABASE_KEY)")
	}
	if strings.TrimSpace(c.AWS.LambdaFunction) == "" {
		missing = append(missing, "aws.lambda_function (LAMBDA_FUNCTION_NAME)")
	}
	if strings.TrimSpace(c.Email.Sender) == "" {
		missing = append(missing, "email.sender (SENDER_EMAIL)")
	}
	if len(c.Email.Recipients) == 0 {
		missing = append(missing, "email.recipients (EMAIL_TO)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if c.Cooldown.Window <= 0 {
		return fmt.Errorf("cooldown.window must be positive, got %s", c.Cooldown.Window)
	}
	if c.Scheduler.Enabled && c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be positive, got %s", c.Scheduler.Interval)
	}
	return nil
}

// minutesToDurationHookFunc converts bare numbers into minute durations,
// preserving the contract of EMAIL_COOLDOWN_MINUTES and
// EMAIL_SCHEDULE_INTERVAL_MINUTES. Strings with duration suffixes fall
// through to the standard duration hook.
func minutesToDurationHookFunc() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))

	return func(from, to reflect.Type, data any) (any, error) {
		if to != durationType {
			return data, nil
		}
		switch v := data.(type) {
		case int:
			return time.Duration(v) * time.Minute, nil
		case int64:
			return time.Duration(v) * time.Minute, nil
		case float64:
			return time.Duration(v * float64(time.Minute)), nil
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				return data, nil
			}
			if isBareNumber(s) {
				mins, err := time.ParseDuration(s + "m")
				if err != nil {
					return data, nil
				}
				return mins, nil
			}
		}
		return data, nil
	}
}

func isBareNumber(s string) bool {
	for i, r := range s {
		if r >= '0' && r <= '9' {
			continue
		}
		if r == '.' || (i == 0 && (r == '-' || r == '+')) {
			continue
		}
		return false
	}
	return true
}

// cleanRecipients trims whitespace around comma-separated addresses and
// drops empties.
func cleanRecipients(cfg *Config) {
	out := cfg.Email.Recipients[:0]
	for _, r := range cfg.Email.Recipients {
		r = strings.TrimSpace(r)
		if r != "" {
			out = append(out, r)
		}
	}
	cfg.Email.Recipients = out
}
