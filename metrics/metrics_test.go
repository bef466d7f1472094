// File: metrics/metrics_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package metrics_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-svc/api"
	"github.com/momentics/hioload-svc/metrics"
)

// counterValue sums samples of the named family matching the given labels.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	fams, err := reg.Gather()
	require.NoError(t, err)

	var sum float64
	for _, f := range fams {
		if f.GetName() != name {
			continue
		}
	sample:
		for _, m := range f.GetMetric() {
			have := map[string]string{}
			for _, lp := range m.GetLabel() {
				have[lp.GetName()] = lp.GetValue()
			}
			for k, v := range labels {
				if have[k] != v {
					continue sample
				}
			}
			if m.GetCounter() != nil {
				sum += m.GetCounter().GetValue()
			}
			if m.GetGauge() != nil {
				sum += m.GetGauge().GetValue()
			}
		}
	}
	return sum
}

// waitFor polls until check passes or a second elapses; settlement
// bookkeeping runs on a goroutine.
func waitFor(t *testing.T, check func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if check() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never reached")
}

func TestOutcomeCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector("test", reg)

	inner := &api.MockService[string, string]{
		CallFunc: func(ctx context.Context, req string) *api.Pending[string] {
			switch req {
			case "fail":
				return api.Rejected[string](api.NewError(api.ErrCodeInvocation, "remote error"))
			case "hang":
				return api.NewPending[string]()
			default:
				return api.Resolved(req)
			}
		},
	}
	svc := metrics.NewLayer[string, string](c, "echo").Apply(inner)

	ctx := context.Background()
	for _, req := range []string{"a", "b", "fail"} {
		require.NoError(t, svc.Ready(ctx))
		<-svc.Call(ctx, req).Done()
	}

	require.NoError(t, svc.Ready(ctx))
	svc.Call(ctx, "hang").Cancel()

	waitFor(t, func() bool {
		return counterValue(t, reg, "test_calls_total", map[string]string{"service": "echo"}) == 4
	})

	assert.Equal(t, float64(2),
		counterValue(t, reg, "test_calls_total", map[string]string{"service": "echo", "outcome": "ok"}))
	assert.Equal(t, float64(1),
		counterValue(t, reg, "test_calls_total", map[string]string{"service": "echo", "outcome": "error"}))
	assert.Equal(t, float64(1),
		counterValue(t, reg, "test_calls_total", map[string]string{"service": "echo", "outcome": "canceled"}))

	// Every call settled, so nothing is left in flight.
	assert.Equal(t, float64(0),
		counterValue(t, reg, "test_in_flight_calls", map[string]string{"service": "echo"}))
}

func TestReadyFailureCounted(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector("test", reg)

	inner := &api.MockService[string, string]{
		ReadyFunc: func(ctx context.Context) error {
			return api.NewError(api.ErrCodeReadiness, "exhausted")
		},
	}
	svc := metrics.NewLayer[string, string](c, "flaky").Apply(inner)

	require.Error(t, svc.Ready(context.Background()))

	assert.Equal(t, float64(1),
		counterValue(t, reg, "test_ready_failures_total", map[string]string{"service": "flaky"}))
}
