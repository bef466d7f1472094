// File: api/pending.go
// Package api defines the core contracts of hioload-svc.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Pending is the asynchronous result of a Call: an in-flight operation that
// resolves exactly once to either a response or an error. It carries an
// explicit cancellation hook so services can release per-call resources
// (timers, permits, queue slots) when the caller abandons interest.

package api

import (
	"context"
	"sync"
)

// Pending represents one in-flight invocation. It is produced fresh per
// Call and resolves to exactly one of a value or an error. All methods are
// safe for concurrent use.
type Pending[T any] struct {
	done chan struct{}

	mu       sync.Mutex
	settled  bool
	canceled bool
	value    T
	err      error
	onCancel []func()
}

// NewPending creates an unresolved Pending. The producing service settles
// it with Resolve or Reject; the consuming caller waits on Done or Wait.
func NewPending[T any]() *Pending[T] {
	return &Pending[T]{done: make(chan struct{})}
}

// Resolved returns a Pending already settled with the given value.
func Resolved[T any](value T) *Pending[T] {
	p := NewPending[T]()
	p.Resolve(value)
	return p
}

// Rejected returns a Pending already settled with the given error.
func Rejected[T any](err error) *Pending[T] {
	p := NewPending[T]()
	p.Reject(err)
	return p
}

// Resolve settles the operation with a value. It reports whether this call
// won the settlement; later Resolve/Reject calls are no-ops.
func (p *Pending[T]) Resolve(value T) bool {
	return p.settle(value, nil)
}

// Reject settles the operation with an error. It reports whether this call
// won the settlement.
func (p *Pending[T]) Reject(err error) bool {
	var zero T
	return p.settle(zero, err)
}

func (p *Pending[T]) settle(value T, err error) bool {
	p.mu.Lock()
	if p.settled {
		p.mu.Unlock()
		return false
	}
	p.settled = true
	p.value = value
	p.err = err
	p.onCancel = nil
	p.mu.Unlock()
	close(p.done)
	return true
}

// Done returns a channel closed once the operation has settled, whether by
// Resolve, Reject, or Cancel.
func (p *Pending[T]) Done() <-chan struct{} {
	return p.done
}

// Result returns the outcome. It must only be called after Done is closed;
// before settlement it returns the zero value and nil.
func (p *Pending[T]) Result() (T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value, p.err
}

// Err returns the settled error, nil on success or before settlement.
func (p *Pending[T]) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Wait blocks until the operation settles or ctx is done. Abandoning the
// wait does not cancel the operation; use Cancel for that.
func (p *Pending[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.Result()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Cancel abandons interest in the operation. It settles the Pending with
// ErrCallCanceled (if not already settled) and runs every registered
// OnCancel hook exactly once. Cancel after settlement only runs the hooks
// that were registered before settlement cleared them, i.e. none.
func (p *Pending[T]) Cancel() {
	p.mu.Lock()
	if p.canceled {
		p.mu.Unlock()
		return
	}
	p.canceled = true
	hooks := p.onCancel
	p.onCancel = nil
	p.mu.Unlock()

	p.Reject(ErrCallCanceled)
	for _, fn := range hooks {
		fn()
	}
}

// Canceled reports whether Cancel has been invoked.
func (p *Pending[T]) Canceled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.canceled
}

// OnCancel registers a release hook run when the caller cancels the
// operation. Services use it to free per-call resources: stop timers,
// release permits, drop queued state. If the Pending is already canceled
// the hook runs immediately; if it is already settled the hook is dropped,
// since resolution has released the call.
func (p *Pending[T]) OnCancel(fn func()) {
	p.mu.Lock()
	if p.canceled {
		p.mu.Unlock()
		fn()
		return
	}
	if !p.settled {
		p.onCancel = append(p.onCancel, fn)
	}
	p.mu.Unlock()
}
