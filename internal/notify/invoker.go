// Package notify performs the outbound half of a dispatch: render the
// options report, invoke the reporting function, then email the report.
// Compute invocation and email delivery are one logical unit of work with no
// compensation: if the email fails after the function ran, the caller gets a
// partial-failure error and the compute side effect stands.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/optionsmailer/optionsmailer/internal/loadboard"
)

// LookupError means the load board query failed before any side effect.
type LookupError struct{ Err error }

func (e *LookupError) Error() string { return fmt.Sprintf("load board lookup failed: %v", e.Err) }
func (e *LookupError) Unwrap() error { return e.Err }

// InvocationError means the reporting function call failed. No email is sent
// on invocation failure; the next trigger simply retries.
type InvocationError struct{ Err error }

func (e *InvocationError) Error() string { return fmt.Sprintf("report invocation failed: %v", e.Err) }
func (e *InvocationError) Unwrap() error { return e.Err }

// NotificationError means the email send failed after the reporting function
// already ran. The compute side effect is not undone.
type NotificationError struct{ Err error }

func (e *NotificationError) Error() string {
	return fmt.Sprintf("email send failed after successful invocation: %v", e.Err)
}
func (e *NotificationError) Unwrap() error { return e.Err }

// OptionSource looks up the options the report is built from.
type OptionSource interface {
	OptionsWithAvailableLoads(ctx context.Context, orgID string) ([]loadboard.Option, error)
}

// ComputeFunction invokes the remote reporting function.
type ComputeFunction interface {
	Invoke(ctx context.Context, payload ReportPayload) error
}

// Mailer delivers the rendered report.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

// Receipt summarizes a completed dispatch.
type Receipt struct {
	Subject     string
	OptionCount int
	Recipients  []string
}

// Invoker coordinates one dispatch. It performs no retries; each collaborator
// call either succeeds or surfaces its classified error.
type Invoker struct {
	Source     OptionSource
	Compute    ComputeFunction
	Mailer     Mailer
	Sender     string
	Recipients []string
	Clock      func() time.Time
}

// InvokeAndNotify looks up options, invokes the reporting function, and then
// emails the report. The email is only attempted after a successful
// invocation.
func (i *Invoker) InvokeAndNotify(ctx context.Context, orgID string) (*Receipt, error) {
	if i == nil || i.Source == nil || i.Compute == nil || i.Mailer == nil {
		return nil, fmt.Errorf("invoker is not configured")
	}
	if len(i.Recipients) == 0 {
		return nil, fmt.Errorf("no recipients configured")
	}

	options, err := i.Source.OptionsWithAvailableLoads(ctx, orgID)
	if err != nil {
		return nil, &LookupError{Err: err}
	}

	report := BuildReport(options, i.now())

	payload := ReportPayload{
		OrgID:   orgID,
		To:      i.Recipients,
		From:    i.Sender,
		Subject: report.Subject,
		Body:    report.Body,
	}
	if err := i.Compute.Invoke(ctx, payload); err != nil {
		return nil, &InvocationError{Err: err}
	}

	if err := i.Mailer.Send(ctx, i.Recipients, report.Subject, report.Body); err != nil {
		return nil, &NotificationError{Err: err}
	}

	return &Receipt{
		Subject:     report.Subject,
		OptionCount: report.OptionCount,
		Recipients:  i.Recipients,
	}, nil
}

func (i *Invoker) now() time.Time {
	if i != nil && i.Clock != nil {
		return i.Clock()
	}
	return time.Now().UTC()
}
