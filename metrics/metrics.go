// File: metrics/metrics.go
// Package metrics implements a telemetry layer for hioload-svc services.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Collector wraps Prometheus collectors to provide structured telemetry
// for the service contract: readiness wait latency, call outcome counters,
// call latency, and in-flight gauges, labeled per wrapped service.

package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/momentics/hioload-svc/api"
)

// Outcome label values.
const (
	outcomeOK       = "ok"
	outcomeError    = "error"
	outcomeCanceled = "canceled"
)

// Collector provides service metrics collection. One Collector is shared
// by every metrics layer of a process; layers differ by service label.
type Collector struct {
	readyLatency *prometheus.HistogramVec
	readyFailed  *prometheus.CounterVec
	calls        *prometheus.CounterVec
	callLatency  *prometheus.HistogramVec
	inFlight     *prometheus.GaugeVec
}

// NewCollector creates a service metrics collector and registers its
// collectors with reg. An empty namespace defaults to "svc".
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	if namespace == "" {
		namespace = "svc"
	}

	c := &Collector{
		readyLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ready_wait_seconds",
			Help:      "Time spent waiting for service readiness.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service"}),
		readyFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ready_failures_total",
			Help:      "Readiness polls that returned a failure.",
		}, []string{"service"}),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_total",
			Help:      "Completed calls by outcome.",
		}, []string{"service", "outcome"}),
		callLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "call_duration_seconds",
			Help:      "Latency from dispatch to settlement.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service"}),
		inFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "in_flight_calls",
			Help:      "Calls dispatched and not yet settled.",
		}, []string{"service"}),
	}

	if reg != nil {
		reg.MustRegister(c.readyLatency, c.readyFailed, c.calls, c.callLatency, c.inFlight)
	}
	return c
}

// NewLayer creates a layer recording telemetry under the given service
// label on the shared collector.
func NewLayer[Req, Resp any](c *Collector, name string) api.Layer[Req, Resp] {
	return api.LayerFunc[Req, Resp](func(inner api.Service[Req, Resp]) api.Service[Req, Resp] {
		return &service[Req, Resp]{inner: inner, c: c, name: name}
	})
}

type service[Req, Resp any] struct {
	inner api.Service[Req, Resp]
	c     *Collector
	name  string
}

// Ready delegates and records the wait duration and failures. The
// readiness result itself is propagated unchanged.
func (s *service[Req, Resp]) Ready(ctx context.Context) error {
	start := time.Now()
	err := s.inner.Ready(ctx)
	s.c.readyLatency.WithLabelValues(s.name).Observe(time.Since(start).Seconds())
	if err != nil {
		s.c.readyFailed.WithLabelValues(s.name).Inc()
	}
	return err
}

// Call delegates and observes the settlement without wrapping the pending:
// the caller keeps the inner handle, including its cancellation path.
func (s *service[Req, Resp]) Call(ctx context.Context, req Req) *api.Pending[Resp] {
	start := time.Now()
	s.c.inFlight.WithLabelValues(s.name).Inc()

	p := s.inner.Call(ctx, req)
	go func() {
		<-p.Done()
		s.c.inFlight.WithLabelValues(s.name).Dec()
		s.c.callLatency.WithLabelValues(s.name).Observe(time.Since(start).Seconds())
		s.c.calls.WithLabelValues(s.name, outcome(p.Err())).Inc()
	}()
	return p
}

func outcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, api.ErrCallCanceled):
		return outcomeCanceled
	default:
		return outcomeError
	}
}
