package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/optionsmailer/optionsmailer/internal/loadboard"
)

type fakeSource struct {
	options []loadboard.Option
	err     error
	calls   int
}

func (f *fakeSource) OptionsWithAvailableLoads(ctx context.Context, orgID string) ([]loadboard.Option, error) {
	f.calls++
	return f.options, f.err
}

type fakeCompute struct {
	err     error
	calls   int
	payload ReportPayload
}

func (f *fakeCompute) Invoke(ctx context.Context, payload ReportPayload) error {
	f.calls++
	f.payload = payload
	return f.err
}

type fakeMailer struct {
	err   error
	calls int
	to    []string
}

func (f *fakeMailer) Send(ctx context.Context, to []string, subject, body string) error {
	f.calls++
	f.to = to
	return f.err
}

func newInvoker(source *fakeSource, compute *fakeCompute, mailer *fakeMailer) *Invoker {
	return &Invoker{
		Source:     source,
		Compute:    compute,
		Mailer:     mailer,
		Sender:     "reports@example.com",
		Recipients: []string{"ops@example.com", "desk@example.com"},
		Clock:      func() time.Time { return time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC) },
	}
}

func TestInvokeAndNotifySuccess(t *testing.T) {
	source := &fakeSource{options: []loadboard.Option{{ID: "opt-1"}}}
	compute := &fakeCompute{}
	mailer := &fakeMailer{}

	receipt, err := newInvoker(source, compute, mailer).InvokeAndNotify(context.Background(), "org-1")
	require.NoError(t, err)
	require.Equal(t, 1, receipt.OptionCount)
	require.Equal(t, []string{"ops@example.com", "desk@example.com"}, receipt.Recipients)
	require.Equal(t, "Options Report - 1 Option Available", receipt.Subject)

	require.Equal(t, 1, compute.calls)
	require.Equal(t, 1, mailer.calls)
	require.Equal(t, "org-1", compute.payload.OrgID)
	require.Equal(t, "reports@example.com", compute.payload.From)
}

func TestInvokeAndNotifyLookupFailure(t *testing.T) {
	source := &fakeSource{err: errors.New("permission denied")}
	compute := &fakeCompute{}
	mailer := &fakeMailer{}

	_, err := newInvoker(source, compute, mailer).InvokeAndNotify(context.Background(), "org-1")

	var lookupErr *LookupError
	require.ErrorAs(t, err, &lookupErr)
	require.Zero(t, compute.calls, "lookup failure must not invoke the function")
	require.Zero(t, mailer.calls)
}

func TestInvokeAndNotifyInvocationFailureSkipsEmail(t *testing.T) {
	source := &fakeSource{}
	compute := &fakeCompute{err: errors.New("function timed out")}
	mailer := &fakeMailer{}

	_, err := newInvoker(source, compute, mailer).InvokeAndNotify(context.Background(), "org-1")

	var invErr *InvocationError
	require.ErrorAs(t, err, &invErr)
	// Documented policy: no failure email on invocation errors.
	require.Zero(t, mailer.calls)
}

func TestInvokeAndNotifyEmailFailureIsPartial(t *testing.T) {
	source := &fakeSource{}
	compute := &fakeCompute{}
	mailer := &fakeMailer{err: errors.New("mailbox full")}

	_, err := newInvoker(source, compute, mailer).InvokeAndNotify(context.Background(), "org-1")

	var notifErr *NotificationError
	require.ErrorAs(t, err, &notifErr)
	require.Equal(t, 1, compute.calls, "compute ran before the email failed")
}

func TestInvokeAndNotifyRequiresRecipients(t *testing.T) {
	inv := newInvoker(&fakeSource{}, &fakeCompute{}, &fakeMailer{})
	inv.Recipients = nil

	_, err := inv.InvokeAndNotify(context.Background(), "org-1")
	require.Error(t, err)
}
