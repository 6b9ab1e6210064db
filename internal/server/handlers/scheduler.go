package handlers

import (
	"net/http"
	"time"

	"github.com/optionsmailer/optionsmailer/internal/metrics"
	"github.com/optionsmailer/optionsmailer/internal/scheduler"
)

// SchedulerControl is the slice of the scheduler the HTTP surface needs.
type SchedulerControl interface {
	Start() bool
	Stop() bool
	Status() scheduler.Status
}

var schedulerControl SchedulerControl

// SetScheduler injects the dispatch loop. A nil control means the scheduler
// is disabled by configuration; the endpoints stay mounted and report that.
func SetScheduler(s SchedulerControl) {
	schedulerControl = s
}

var cooldownProbe func() (bool, time.Duration)

// SetCooldownProbe injects the cooldown gate check used by the status
// endpoint, so operators see whether the next tick would actually send.
func SetCooldownProbe(probe func() (canSend bool, remaining time.Duration)) {
	cooldownProbe = probe
}

// CooldownStatus reports the gate state alongside the loop state.
type CooldownStatus struct {
	CanSend          bool  `json:"can_send"`
	RemainingSeconds int64 `json:"remaining_seconds"`
}

// SchedulerStatusResponse describes the dispatch loop state.
type SchedulerStatusResponse struct {
	Enabled         bool            `json:"enabled"`
	Running         bool            `json:"running"`
	IntervalMinutes float64         `json:"interval_minutes,omitempty"`
	LastRun         *time.Time      `json:"last_run,omitempty"`
	LastOutcome     string          `json:"last_outcome,omitempty"`
	NextRun         *time.Time      `json:"next_run,omitempty"`
	Cooldown        *CooldownStatus `json:"cooldown,omitempty"`
}

// SchedulerActionResponse is returned by start/stop.
type SchedulerActionResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// SchedulerStatusHandler handles GET /scheduler/status.
func SchedulerStatusHandler(w http.ResponseWriter, r *http.Request) {
	var resp SchedulerStatusResponse

	if schedulerControl != nil {
		st := schedulerControl.Status()
		resp = SchedulerStatusResponse{
			Enabled:         true,
			Running:         st.Running,
			IntervalMinutes: st.Interval.Minutes(),
			LastOutcome:     string(st.LastOutcome),
		}
		if !st.LastRun.IsZero() {
			last := st.LastRun
			resp.LastRun = &last
		}
		if !st.NextRun.IsZero() {
			next := st.NextRun
			resp.NextRun = &next
		}
	}

	if cooldownProbe != nil {
		canSend, remaining := cooldownProbe()
		resp.Cooldown = &CooldownStatus{
			CanSend:          canSend,
			RemainingSeconds: int64(remaining.Seconds()),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// SchedulerStartHandler handles POST /scheduler/start.
func SchedulerStartHandler(w http.ResponseWriter, r *http.Request) {
	if schedulerControl == nil {
		writeJSON(w, http.StatusOK, SchedulerActionResponse{
			Status:  "disabled",
			Message: "Scheduler is disabled by configuration",
		})
		return
	}

	if schedulerControl.Start() {
		metrics.SetSchedulerRunning(true)
		writeJSON(w, http.StatusOK, SchedulerActionResponse{
			Status:  "started",
			Message: "Scheduler started",
		})
		return
	}

	writeJSON(w, http.StatusOK, SchedulerActionResponse{
		Status:  "already_running",
		Message: "Scheduler is already running",
	})
}

// SchedulerStopHandler handles POST /scheduler/stop.
func SchedulerStopHandler(w http.ResponseWriter, r *http.Request) {
	if schedulerControl == nil {
		writeJSON(w, http.StatusOK, SchedulerActionResponse{
			Status:  "disabled",
			Message: "Scheduler is disabled by configuration",
		})
		return
	}

	if schedulerControl.Stop() {
		metrics.SetSchedulerRunning(false)
		writeJSON(w, http.StatusOK, SchedulerActionResponse{
			Status:  "stopped",
			Message: "Scheduler stopped",
		})
		return
	}

	writeJSON(w, http.StatusOK, SchedulerActionResponse{
		Status:  "not_running",
		Message: "Scheduler is not running",
	})
}
