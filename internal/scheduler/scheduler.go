// Package scheduler runs dispatch attempts on a fixed interval. It owns no
// cooldown logic: every tick goes through the same controller gate as an
// HTTP-triggered send, so the interval controls how often we try, while the
// cooldown controls how often we succeed.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/optionsmailer/optionsmailer/internal/dispatch"
)

// Dispatcher is the controller entry point the scheduler drives. The
// scheduler always dispatches for the configured default org.
type Dispatcher interface {
	RequestSend(ctx context.Context, orgID string) dispatch.Result
}

// Status is a point-in-time snapshot of the loop.
type Status struct {
	Running     bool             `json:"running"`
	Interval    time.Duration    `json:"-"`
	LastRun     time.Time        `json:"last_run,omitempty"`
	LastOutcome dispatch.Outcome `json:"last_outcome,omitempty"`
	NextRun     time.Time        `json:"next_run,omitempty"`
}

// Scheduler drives periodic dispatches. The first attempt fires one full
// interval after Start; there is no immediate tick on startup, matching the
// cooldown assumption that a restart is not a send trigger.
type Scheduler struct {
	dispatcher Dispatcher
	interval   time.Duration
	logger     *logging.Logger

	mu          sync.Mutex
	running     bool
	cancel      context.CancelFunc
	done        chan struct{}
	startedAt   time.Time
	lastRun     time.Time
	lastOutcome dispatch.Outcome
}

// New builds a stopped scheduler. logger may be nil (tests).
func New(dispatcher Dispatcher, interval time.Duration, logger *logging.Logger) *Scheduler {
	return &Scheduler{
		dispatcher: dispatcher,
		interval:   interval,
		logger:     logger,
	}
}

// Start launches the tick loop. It reports false if the loop was already
// running; starting twice never spawns a second loop.
func (s *Scheduler) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true
	s.startedAt = time.Now().UTC()
	s.lastRun = time.Time{}
	s.lastOutcome = ""

	go s.run(ctx, s.done)

	s.logInfo("Scheduler started", zap.Duration("interval", s.interval))
	return true
}

// Stop cancels the loop and waits for the in-flight tick, if any, to finish.
// It reports false if the loop was not running.
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return false
	}
	cancel, done := s.cancel, s.done
	s.running = false
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	cancel()
	<-done

	s.logInfo("Scheduler stopped")
	return true
}

// Status returns a snapshot of the loop state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Running:     s.running,
		Interval:    s.interval,
		LastRun:     s.lastRun,
		LastOutcome: s.lastOutcome,
	}
	if s.running {
		anchor := s.startedAt
		if !s.lastRun.IsZero() {
			anchor = s.lastRun
		}
		st.NextRun = anchor.Add(s.interval)
	}
	return st
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs one attempt and records the outcome. A failed attempt is logged
// and forgotten; the loop itself never stops on dispatch errors.
func (s *Scheduler) tick(ctx context.Context) {
	res := s.dispatcher.RequestSend(ctx, "")

	s.mu.Lock()
	s.lastRun = res.At
	s.lastOutcome = res.Outcome
	s.mu.Unlock()

	switch res.Outcome {
	case dispatch.OutcomeSent:
		fields := []zap.Field{zap.String("subject", subjectOf(res))}
		if res.StorageErr != nil {
			fields = append(fields, zap.NamedError("storage_error", res.StorageErr))
		}
		s.logInfo("Scheduled report sent", fields...)
	case dispatch.OutcomeBlocked:
		s.logInfo("Scheduled send blocked by cooldown",
			zap.Duration("remaining", res.Remaining))
	case dispatch.OutcomeFailed:
		s.logError("Scheduled send failed", zap.Error(res.Err))
	}
}

func subjectOf(res dispatch.Result) string {
	if res.Receipt != nil {
		return res.Receipt.Subject
	}
	return ""
}

func (s *Scheduler) logInfo(msg string, fields ...zap.Field) {
	if s.logger != nil {
		s.logger.Info(msg, fields...)
	}
}

func (s *Scheduler) logError(msg string, fields ...zap.Field) {
	if s.logger != nil {
		s.logger.Error(msg, fields...)
	}
}
