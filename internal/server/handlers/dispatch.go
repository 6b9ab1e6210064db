package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/optionsmailer/optionsmailer/internal/dispatch"
	apperrors "github.com/optionsmailer/optionsmailer/internal/errors"
	"github.com/optionsmailer/optionsmailer/internal/metrics"
	"github.com/optionsmailer/optionsmailer/internal/notify"
)

// Dispatcher is the controller entry point the HTTP surface drives.
type Dispatcher interface {
	RequestSend(ctx context.Context, orgID string) dispatch.Result
}

var dispatcher Dispatcher

// SetDispatcher injects the dispatch controller. Called once at server wiring.
func SetDispatcher(d Dispatcher) {
	dispatcher = d
}

// SendResponse is the body returned for sent and cooldown-blocked attempts.
// Blocked attempts are a normal outcome, not an error, so both return 200.
type SendResponse struct {
	Status           string   `json:"status"`
	Message          string   `json:"message"`
	Subject          string   `json:"subject,omitempty"`
	OptionCount      *int     `json:"options_count,omitempty"`
	Recipients       []string `json:"recipients,omitempty"`
	RemainingSeconds int64    `json:"remaining_seconds,omitempty"`
	RetryAt          string   `json:"retry_at,omitempty"`
	StorageWarning   string   `json:"storage_warning,omitempty"`
}

// sendEmailRequest is the optional request body; an empty or absent org_id
// dispatches for the configured default org.
type sendEmailRequest struct {
	OrgID string `json:"org_id"`
}

// SendEmailHandler triggers one dispatch attempt through the cooldown gate.
// POST /send-email, also mounted at /webhook and / for legacy callers.
func SendEmailHandler(w http.ResponseWriter, r *http.Request) {
	if dispatcher == nil {
		respondWithError(w, r, apperrors.NewInternalError("dispatch controller not initialized"))
		return
	}

	// Body is optional; malformed JSON is ignored rather than rejected so
	// bare webhook pings keep working.
	var body sendEmailRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	start := time.Now()
	res := dispatcher.RequestSend(r.Context(), body.OrgID)
	metrics.RecordDispatch("http", string(res.Outcome), time.Since(start))

	switch res.Outcome {
	case dispatch.OutcomeSent:
		metrics.SetCooldownRemaining(0)

		resp := SendResponse{
			Status:  "success",
			Message: "Options report sent successfully",
		}
		if res.Receipt != nil {
			resp.Subject = res.Receipt.Subject
			count := res.Receipt.OptionCount
			resp.OptionCount = &count
			resp.Recipients = res.Receipt.Recipients
		}
		if res.StorageErr != nil {
			// Email went out but the cooldown marker did not persist. The
			// caller should know the next attempt may not be blocked.
			resp.StorageWarning = res.StorageErr.Error()
		}
		writeJSON(w, http.StatusOK, resp)

	case dispatch.OutcomeBlocked:
		metrics.SetCooldownRemaining(res.Remaining)

		writeJSON(w, http.StatusOK, SendResponse{
			Status:           "skipped",
			Message:          "Email cooldown active, report not sent",
			RemainingSeconds: int64(res.Remaining.Seconds()),
			RetryAt:          res.At.Add(res.Remaining).UTC().Format(time.RFC3339),
		})

	default:
		respondWithError(w, r, classifyDispatchError(r.Context(), res.Err))
	}
}

// classifyDispatchError maps dispatch failures onto envelope codes so the
// HTTP status tells callers which stage broke.
func classifyDispatchError(ctx context.Context, err error) error {
	var lookupErr *notify.LookupError
	var invErr *notify.InvocationError
	var notifErr *notify.NotificationError

	switch {
	case errors.As(err, &lookupErr):
		return apperrors.WrapLookup(ctx, err, "load board lookup failed")
	case errors.As(err, &invErr):
		return apperrors.WrapInvocation(ctx, err, "report function invocation failed")
	case errors.As(err, &notifErr):
		return apperrors.WrapNotification(ctx, err, "email delivery failed after invocation")
	default:
		return apperrors.WrapInternal(ctx, err, "dispatch failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
