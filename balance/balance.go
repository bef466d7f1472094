// File: balance/balance.go
// Package balance implements a replica-spreading terminal service.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Balancer is a Service over a fixed set of replica Services, dispatching
// each authorized call to the next replica in rotation. Selection is plain
// round-robin over readiness; smarter selection policies live outside the
// core contract and can wrap or replace this type.

package balance

import (
	"context"
	"sync"

	"github.com/momentics/hioload-svc/api"
)

// Balancer spreads calls across replicas. It pins a single replica per
// successful Ready, so it serves one call site at a time: sharing an
// instance requires callers to serialize whole Ready-then-Call pairs
// externally. Interleaved pairs from independent sites trip the Call
// panic.
type Balancer[Req, Resp any] struct {
	replicas []api.Service[Req, Resp]

	mu     sync.Mutex
	next   int
	picked int // replica authorized by the last successful Ready, -1 none
}

// New creates a Balancer over the given replicas.
func New[Req, Resp any](replicas ...api.Service[Req, Resp]) *Balancer[Req, Resp] {
	return &Balancer[Req, Resp]{
		replicas: append([]api.Service[Req, Resp]{}, replicas...),
		picked:   -1,
	}
}

// Len returns the number of replicas.
func (b *Balancer[Req, Resp]) Len() int {
	return len(b.replicas)
}

// Ready selects the next replica in rotation and awaits its readiness.
// Replicas reporting a terminal failure are passed over; when every
// replica has failed terminally in one sweep, Ready reports ErrNoReplicas.
// The selected replica is pinned for the next Call. A pinned replica that
// fails a later re-poll terminally is unpinned and passed over like any
// other failed replica.
func (b *Balancer[Req, Resp]) Ready(ctx context.Context) error {
	b.mu.Lock()
	if b.picked >= 0 {
		idx := b.picked
		b.mu.Unlock()
		err := b.replicas[idx].Ready(ctx)
		if err == nil || ctx.Err() != nil {
			return err
		}
		// The pinned replica went bad between polls: drop the pin and
		// sweep the rotation like a fresh poll.
		b.mu.Lock()
		if b.picked == idx {
			b.picked = -1
		}
		b.mu.Unlock()
	} else {
		b.mu.Unlock()
	}

	if len(b.replicas) == 0 {
		return api.NewError(api.ErrCodeReadiness, "balancer has no replicas").
			WithCause(api.ErrNoReplicas)
	}

	var lastErr error
	for attempt := 0; attempt < len(b.replicas); attempt++ {
		b.mu.Lock()
		idx := b.next % len(b.replicas)
		b.next++
		b.mu.Unlock()

		err := b.replicas[idx].Ready(ctx)
		if err == nil {
			b.mu.Lock()
			b.picked = idx
			b.mu.Unlock()
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		lastErr = err
	}
	return api.NewError(api.ErrCodeReadiness, "all replicas failed readiness").
		WithCause(lastErr).
		WithContext("replicas", len(b.replicas))
}

// Call dispatches to the replica pinned by the preceding Ready. Call
// without a pinned replica panics.
func (b *Balancer[Req, Resp]) Call(ctx context.Context, req Req) *api.Pending[Resp] {
	b.mu.Lock()
	idx := b.picked
	b.picked = -1
	b.mu.Unlock()

	if idx < 0 {
		panic("balance: Call without a preceding successful Ready")
	}
	return b.replicas[idx].Call(ctx, req)
}
