// File: limit/limit.go
// Package limit implements a concurrency limiting layer for hioload-svc.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The layer bounds the number of in-flight calls through the inner service
// with a weighted semaphore. Ready acquires a permit before the inner
// service is polled; the permit travels with the call and is released when
// the pending operation settles, including by cancellation.

package limit

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/momentics/hioload-svc/api"
)

// Layer wraps services with an in-flight call bound.
type Layer[Req, Resp any] struct {
	sem *semaphore.Weighted
}

// NewLayer creates a concurrency limit layer. All services produced by the
// same Layer share one semaphore of maxInFlight permits, so the bound holds
// across every wrapped service.
func NewLayer[Req, Resp any](maxInFlight int64) *Layer[Req, Resp] {
	return &Layer[Req, Resp]{sem: semaphore.NewWeighted(maxInFlight)}
}

// Apply wraps inner with the shared permit gate.
func (l *Layer[Req, Resp]) Apply(inner api.Service[Req, Resp]) api.Service[Req, Resp] {
	return &service[Req, Resp]{inner: inner, sem: l.sem}
}

// service is single-call-site: each concurrent caller needs its own wrapped
// instance (sharing the Layer's semaphore), since the held-permit state
// pairs one Ready with one Call.
type service[Req, Resp any] struct {
	inner api.Service[Req, Resp]
	sem   *semaphore.Weighted

	mu   sync.Mutex
	held bool
}

// Ready acquires one permit, blocking while all are in flight, then
// delegates to the inner service. A failing inner poll returns the permit
// so a stalled inner service cannot strand capacity.
func (s *service[Req, Resp]) Ready(ctx context.Context) error {
	s.mu.Lock()
	held := s.held
	s.mu.Unlock()

	if !held {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			return err
		}
		s.mu.Lock()
		s.held = true
		s.mu.Unlock()
	}

	if err := s.inner.Ready(ctx); err != nil {
		s.mu.Lock()
		s.held = false
		s.mu.Unlock()
		s.sem.Release(1)
		return err
	}
	return nil
}

// Call transfers the held permit to the in-flight operation and delegates.
// The permit is released exactly once, when the inner pending settles;
// cancelling the returned pending settles it too, so abandonment cannot
// leak capacity. Call without a held permit panics.
func (s *service[Req, Resp]) Call(ctx context.Context, req Req) *api.Pending[Resp] {
	s.mu.Lock()
	if !s.held {
		s.mu.Unlock()
		panic("limit: Call without a preceding successful Ready")
	}
	s.held = false
	s.mu.Unlock()

	inner := s.inner.Call(ctx, req)
	out := api.NewPending[Resp]()
	out.OnCancel(inner.Cancel)

	go func() {
		<-inner.Done()
		v, err := inner.Result()
		s.sem.Release(1)
		if err != nil {
			out.Reject(err)
			return
		}
		out.Resolve(v)
	}()
	return out
}
