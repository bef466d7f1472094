// File: retry/retry.go
// Package retry implements an invocation retry layer for hioload-svc.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The layer re-invokes the inner service when a call fails with a
// retryable error, pausing between attempts per a backoff policy and
// re-polling the inner readiness before every re-invocation, so the
// poll-then-call discipline holds for retries exactly as for first
// attempts. The backoff curve itself is caller-supplied policy.

package retry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/momentics/hioload-svc/api"
)

// Config holds retry parameters.
type Config struct {
	// NewBackOff produces a fresh policy per call. Nil selects
	// backoff.NewExponentialBackOff.
	NewBackOff func() backoff.BackOff

	// Retryable classifies invocation errors. Nil selects
	// DefaultRetryable.
	Retryable func(error) bool
}

// DefaultConfig returns a config with exponential backoff and the default
// classifier.
func DefaultConfig() Config {
	return Config{
		NewBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		Retryable:  DefaultRetryable,
	}
}

// DefaultRetryable retries every invocation failure except cancellations
// and context expiry: those signal the caller gave up, not that the call
// might succeed next time.
func DefaultRetryable(err error) bool {
	return !errors.Is(err, api.ErrCallCanceled) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

// Layer wraps services with retry behavior. Requests must be reusable
// values: the same request is handed to every attempt.
type Layer[Req, Resp any] struct {
	cfg Config
}

// NewLayer creates a retry layer with DefaultConfig.
func NewLayer[Req, Resp any]() *Layer[Req, Resp] {
	return NewLayerWithConfig[Req, Resp](DefaultConfig())
}

// NewLayerWithConfig creates a retry layer from an explicit Config.
func NewLayerWithConfig[Req, Resp any](cfg Config) *Layer[Req, Resp] {
	if cfg.NewBackOff == nil {
		cfg.NewBackOff = func() backoff.BackOff { return backoff.NewExponentialBackOff() }
	}
	if cfg.Retryable == nil {
		cfg.Retryable = DefaultRetryable
	}
	return &Layer[Req, Resp]{cfg: cfg}
}

// Apply wraps inner with the retry loop.
func (l *Layer[Req, Resp]) Apply(inner api.Service[Req, Resp]) api.Service[Req, Resp] {
	return &service[Req, Resp]{inner: inner, cfg: l.cfg}
}

type service[Req, Resp any] struct {
	inner api.Service[Req, Resp]
	cfg   Config
}

// Ready has no gate of its own.
func (s *service[Req, Resp]) Ready(ctx context.Context) error {
	return s.inner.Ready(ctx)
}

// Call runs the attempt loop on its own goroutine. The first attempt is
// authorized by the caller's Ready; every later attempt re-polls the inner
// readiness itself. Cancelling the returned pending stops the loop and
// propagates to the attempt in flight.
func (s *service[Req, Resp]) Call(ctx context.Context, req Req) *api.Pending[Resp] {
	out := api.NewPending[Resp]()

	// One hook for the whole loop: per-attempt hooks would pile up on out
	// across a long retry run. The slot always holds the attempt in flight.
	var mu sync.Mutex
	var current *api.Pending[Resp]
	out.OnCancel(func() {
		mu.Lock()
		attempt := current
		mu.Unlock()
		if attempt != nil {
			attempt.Cancel()
		}
	})

	go func() {
		bo := s.cfg.NewBackOff()
		for {
			attempt := s.inner.Call(ctx, req)
			mu.Lock()
			current = attempt
			mu.Unlock()
			if out.Canceled() {
				attempt.Cancel()
				return
			}

			select {
			case <-attempt.Done():
			case <-out.Done():
				attempt.Cancel()
				return
			}

			v, err := attempt.Result()
			if err == nil {
				out.Resolve(v)
				return
			}
			if !s.cfg.Retryable(err) {
				out.Reject(err)
				return
			}

			delay := bo.NextBackOff()
			if delay == backoff.Stop {
				out.Reject(err)
				return
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				out.Reject(ctx.Err())
				return
			case <-out.Done():
				return
			}

			if err := s.inner.Ready(ctx); err != nil {
				out.Reject(err)
				return
			}
		}
	}()
	return out
}
