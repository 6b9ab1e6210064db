package metrics

import (
	"time"

	"github.com/optionsmailer/optionsmailer/internal/observability"
)

// Application-level metrics following Prometheus conventions
var (
	// Dispatch metrics
	DispatchTotal    = "app_dispatch_total"
	DispatchDuration = "app_dispatch_duration_ms"

	// Cooldown gate metrics
	CooldownRemaining = "app_cooldown_remaining_seconds"

	// Scheduler metrics
	SchedulerRunning = "app_scheduler_running"

	// Health check metrics
	HealthCheckTotal    = "app_health_check_total"
	HealthCheckDuration = "app_health_check_duration_ms"

	// Server lifecycle metrics
	ServerStartTime = "app_server_start_time_seconds"
	ServerUptime    = "app_server_uptime_seconds"
)

// RecordDispatch records one dispatch attempt. trigger is the entry point
// (http, scheduler, cli) and outcome is sent, blocked, or failed.
func RecordDispatch(trigger string, outcome string, duration time.Duration) {
	if observability.TelemetrySystem != nil {
		labels := map[string]string{
			"trigger": trigger,
			"outcome": outcome,
		}

		_ = observability.TelemetrySystem.Counter(DispatchTotal, 1, labels)
		_ = observability.TelemetrySystem.Histogram(DispatchDuration, duration, labels)
	}
}

// SetCooldownRemaining publishes how long until the next send is allowed.
// Zero means the gate is open.
func SetCooldownRemaining(remaining time.Duration) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			CooldownRemaining,
			remaining.Seconds(),
			nil,
		)
	}
}

// SetSchedulerRunning publishes whether the dispatch loop is active.
func SetSchedulerRunning(running bool) {
	value := 0.0
	if running {
		value = 1.0
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			SchedulerRunning,
			value,
			nil,
		)
	}
}

// RecordHealthCheck records a health check execution
func RecordHealthCheck(checkName string, healthy bool, duration time.Duration) {
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			HealthCheckTotal,
			1,
			map[string]string{
				"check":  checkName,
				"status": status,
			},
		)

		_ = observability.TelemetrySystem.Histogram(
			HealthCheckDuration,
			duration,
			map[string]string{
				"check": checkName,
			},
		)
	}
}

// SetServerStartTime records the server start time (Unix timestamp)
func SetServerStartTime(timestamp int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			ServerStartTime,
			float64(timestamp),
			nil,
		)
	}
}

// SetServerUptime records the server uptime in seconds
func SetServerUptime(seconds int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			ServerUptime,
			float64(seconds),
			nil,
		)
	}
}
