// Package dispatch serializes send attempts through the cooldown gate. Every
// trigger (HTTP, scheduler, CLI) funnels into Controller.RequestSend, so the
// check-invoke-record sequence runs under one lock and two concurrent
// attempts can never both clear the same window.
package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/optionsmailer/optionsmailer/internal/cooldown"
	"github.com/optionsmailer/optionsmailer/internal/notify"
)

// Outcome classifies a dispatch attempt.
type Outcome string

const (
	// OutcomeSent means the report function ran and the email went out.
	OutcomeSent Outcome = "sent"
	// OutcomeBlocked means the cooldown window has not elapsed.
	OutcomeBlocked Outcome = "blocked"
	// OutcomeFailed means the attempt errored. Failed attempts never consume
	// the window; the next trigger retries.
	OutcomeFailed Outcome = "failed"
)

// Result describes one attempt. Err is set only for OutcomeFailed. StorageErr
// is set on OutcomeSent when the email went out but the cooldown marker could
// not be persisted; the send itself still counts.
type Result struct {
	Outcome    Outcome
	At         time.Time
	Remaining  time.Duration
	Receipt    *notify.Receipt
	Err        error
	StorageErr error
}

// Sender runs the lookup-invoke-email sequence for one dispatch.
type Sender interface {
	InvokeAndNotify(ctx context.Context, orgID string) (*notify.Receipt, error)
}

// Controller owns the cooldown gate. All fields must be set before first use.
// OrgID is the default organization; callers may override it per request.
type Controller struct {
	Store    *cooldown.Store
	Sender   Sender
	OrgID    string
	Cooldown time.Duration
	Clock    func() time.Time

	mu sync.Mutex
}

// RequestSend attempts one dispatch for orgID (empty means the configured
// default). The lock spans the cooldown check, the send, and the marker
// write: a second caller blocks until the first attempt finishes and then
// sees its recorded marker.
func (c *Controller) RequestSend(ctx context.Context, orgID string) Result {
	if orgID == "" {
		orgID = c.OrgID
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	allowed, remaining := c.Store.IsAllowed(now, c.Cooldown)
	if !allowed {
		return Result{Outcome: OutcomeBlocked, At: now, Remaining: remaining}
	}

	receipt, err := c.Sender.InvokeAndNotify(ctx, orgID)
	if err != nil {
		return Result{Outcome: OutcomeFailed, At: now, Err: err}
	}

	res := Result{Outcome: OutcomeSent, At: now, Receipt: receipt}
	if err := c.Store.RecordSent(now); err != nil {
		// The email is already out. Surface the storage failure alongside
		// the success instead of reclassifying a delivered send as failed.
		res.StorageErr = err
	}
	return res
}

func (c *Controller) now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now().UTC()
}
