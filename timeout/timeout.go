// File: timeout/timeout.go
// Package timeout implements a deadline layer for hioload-svc services.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The layer races the inner pending operation against a timer. On expiry it
// rejects the outer operation with a timeout-classified error and signals
// cancellation-of-interest to the inner operation, best effort: the inner
// work may still be running after the outer result is delivered.

package timeout

import (
	"context"
	"errors"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/momentics/hioload-svc/api"
)

// Config holds timeout layer parameters.
type Config struct {
	// Timeout is the per-call deadline measured from Call.
	Timeout time.Duration

	// Clock supplies timers; nil selects the wall clock. Tests inject a
	// mock clock to drive expiry deterministically.
	Clock clock.Clock
}

// Layer wraps services with a per-call deadline.
type Layer[Req, Resp any] struct {
	cfg Config
}

// NewLayer creates a timeout layer with the given per-call deadline.
func NewLayer[Req, Resp any](d time.Duration) *Layer[Req, Resp] {
	return NewLayerWithConfig[Req, Resp](Config{Timeout: d})
}

// NewLayerWithConfig creates a timeout layer from an explicit Config.
func NewLayerWithConfig[Req, Resp any](cfg Config) *Layer[Req, Resp] {
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	return &Layer[Req, Resp]{cfg: cfg}
}

// Apply wraps inner with the deadline behavior.
func (l *Layer[Req, Resp]) Apply(inner api.Service[Req, Resp]) api.Service[Req, Resp] {
	return &service[Req, Resp]{inner: inner, cfg: l.cfg}
}

// IsTimeout reports whether err carries the timeout classification.
func IsTimeout(err error) bool {
	return errors.Is(err, api.ErrOperationTimeout)
}

type service[Req, Resp any] struct {
	inner api.Service[Req, Resp]
	cfg   Config
}

// Ready has no gate of its own; readiness is the inner service's.
func (s *service[Req, Resp]) Ready(ctx context.Context) error {
	return s.inner.Ready(ctx)
}

// Call delegates and races the inner pending against the deadline timer.
// Cancelling the returned pending stops the timer and propagates the
// cancellation inward, so no per-call state outlives abandonment.
func (s *service[Req, Resp]) Call(ctx context.Context, req Req) *api.Pending[Resp] {
	inner := s.inner.Call(ctx, req)
	out := api.NewPending[Resp]()
	timer := s.cfg.Clock.Timer(s.cfg.Timeout)

	out.OnCancel(func() {
		timer.Stop()
		inner.Cancel()
	})

	go func() {
		defer timer.Stop()
		select {
		case <-inner.Done():
			v, err := inner.Result()
			if err != nil {
				out.Reject(err)
				return
			}
			out.Resolve(v)
		case <-timer.C:
			out.Reject(api.NewError(api.ErrCodeTimeout, "call exceeded deadline").
				WithCause(api.ErrOperationTimeout).
				WithContext("timeout", s.cfg.Timeout.String()))
			inner.Cancel()
		case <-out.Done():
			// Caller canceled; the OnCancel hook already released the call.
		}
	}()
	return out
}
