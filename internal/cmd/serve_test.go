package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/fulmenhq/gofulmen/telemetry"
	telemetrytesting "github.com/fulmenhq/gofulmen/telemetry/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optionsmailer/optionsmailer/internal/dispatch"
	"github.com/optionsmailer/optionsmailer/internal/metrics"
	"github.com/optionsmailer/optionsmailer/internal/observability"
)

func setupTelemetry(t *testing.T) *telemetrytesting.FakeCollector {
	t.Helper()

	collector := telemetrytesting.NewFakeCollector()
	config := &telemetry.Config{
		Enabled: true,
		Emitter: collector,
	}

	sys, err := telemetry.NewSystem(config)
	require.NoError(t, err)

	originalTelemetry := observability.TelemetrySystem
	observability.TelemetrySystem = sys

	t.Cleanup(func() {
		observability.TelemetrySystem = originalTelemetry
	})

	return collector
}

type staticDispatcher struct {
	result dispatch.Result
}

func (s staticDispatcher) RequestSend(ctx context.Context, orgID string) dispatch.Result {
	return s.result
}

func TestMeteredDispatcherRecordsTrigger(t *testing.T) {
	collector := setupTelemetry(t)

	d := meteredDispatcher{
		inner: staticDispatcher{result: dispatch.Result{
			Outcome: dispatch.OutcomeSent,
			At:      time.Now().UTC(),
		}},
		trigger: "cli",
	}

	res := d.RequestSend(context.Background(), "")
	require.Equal(t, dispatch.OutcomeSent, res.Outcome)

	assert.Greater(t, collector.CountMetricsByName(metrics.DispatchTotal), 0,
		"expected dispatch counter to be emitted")
	assert.Greater(t, collector.CountMetricsByName(metrics.DispatchDuration), 0,
		"expected dispatch duration to be emitted")
}
