// File: ratelimit/ratelimit.go
// Package ratelimit implements a token-bucket readiness gate for hioload-svc.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The layer front-runs the inner service with a golang.org/x/time/rate
// token bucket. Ready blocks until one token is held, without touching the
// inner service while the budget is exhausted; Call consumes the held
// token. Calling without a held token is a contract violation and panics.

package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/momentics/hioload-svc/api"
)

// Config holds rate limiting parameters.
type Config struct {
	// Rate is the sustained token refill rate, tokens per second.
	Rate rate.Limit

	// Burst is the bucket depth. Zero or negative leaves the layer
	// permanently not ready, mirroring rate.Limiter semantics.
	Burst int
}

// Layer wraps services with the token-bucket gate. Each Apply creates an
// independent bucket; use a shared Layer only when independent buckets per
// wrapped service are wanted.
type Layer[Req, Resp any] struct {
	cfg Config
}

// NewLayer creates a rate limiting layer with the given refill rate and burst.
func NewLayer[Req, Resp any](r rate.Limit, burst int) *Layer[Req, Resp] {
	return &Layer[Req, Resp]{cfg: Config{Rate: r, Burst: burst}}
}

// Apply wraps inner with a fresh token bucket.
func (l *Layer[Req, Resp]) Apply(inner api.Service[Req, Resp]) api.Service[Req, Resp] {
	return &service[Req, Resp]{
		inner: inner,
		lim:   rate.NewLimiter(l.cfg.Rate, l.cfg.Burst),
	}
}

// service tracks a single unconsumed authorization, so it serves one call
// site at a time: repeated Ready holds one token, and the next Call
// consumes it. Sharing an instance requires callers to serialize whole
// Ready-then-Call pairs externally; interleaved pairs from independent
// sites trip the Call panic.
type service[Req, Resp any] struct {
	inner api.Service[Req, Resp]
	lim   *rate.Limiter

	mu       sync.Mutex
	reserved bool
}

// Ready acquires one token, blocking while the budget is exhausted. The
// inner service is never polled until a token is held; once held, the
// inner readiness result is propagated unchanged. A token acquired by an
// earlier Ready that was never consumed authorizes this poll's Call.
func (s *service[Req, Resp]) Ready(ctx context.Context) error {
	s.mu.Lock()
	held := s.reserved
	s.mu.Unlock()

	if !held {
		if err := s.lim.Wait(ctx); err != nil {
			return err
		}
		s.mu.Lock()
		s.reserved = true
		s.mu.Unlock()
	}
	return s.inner.Ready(ctx)
}

// Call consumes the token held by the preceding Ready and delegates.
// It panics when no token is held: that call was never authorized.
func (s *service[Req, Resp]) Call(ctx context.Context, req Req) *api.Pending[Resp] {
	s.mu.Lock()
	if !s.reserved {
		s.mu.Unlock()
		panic("ratelimit: Call without a preceding successful Ready")
	}
	s.reserved = false
	s.mu.Unlock()
	return s.inner.Call(ctx, req)
}
