// File: buffer/buffer.go
// Package buffer implements a queueing admission layer for hioload-svc.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Buffer decouples callers from a slow or bursty inner service with a
// bounded FIFO: Ready reflects queue capacity only, accepted calls are
// enqueued and drained in order by a worker goroutine that performs the
// inner poll-then-call sequence on the caller's behalf. Calls abandoned
// while queued are skipped at dispatch. Shutdown rejects whatever is still
// queued and stops the worker deterministically.

package buffer

import (
	"context"
	"sync"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-svc/api"
)

// Service is the buffered wrapper around an inner service. It is safe for
// concurrent call sites: admission tokens serialize poll/call pairing per
// site while the queue and worker are internally synchronized.
type Service[Req, Resp any] struct {
	inner api.Service[Req, Resp]

	tokens chan struct{} // free queue slots
	wake   chan struct{} // worker wake-up, capacity 1

	mu sync.Mutex
	q  *queue.Queue // of *item[Req, Resp]

	quit     chan struct{}
	workerWG sync.WaitGroup
	closed   sync.Once

	site sync.Mutex // serializes Ready token reservation bookkeeping
	held int
}

type item[Req, Resp any] struct {
	ctx context.Context
	req Req
	out *api.Pending[Resp]
}

// New creates a buffered service with the given queue capacity and starts
// its worker. The caller owns the returned service and must Shutdown it to
// release the worker.
func New[Req, Resp any](inner api.Service[Req, Resp], capacity int) *Service[Req, Resp] {
	if capacity < 1 {
		capacity = 1
	}
	s := &Service[Req, Resp]{
		inner:  inner,
		tokens: make(chan struct{}, capacity),
		wake:   make(chan struct{}, 1),
		q:      queue.New(),
		quit:   make(chan struct{}),
	}
	for i := 0; i < capacity; i++ {
		s.tokens <- struct{}{}
	}
	s.workerWG.Add(1)
	go s.worker()
	return s
}

// NewLayer creates a layer producing buffered wrappers. Wrappers built
// through a Stack are reachable as api.GracefulShutdown via type assertion
// on the composed service when Buffer is outermost; otherwise keep a direct
// reference to call Shutdown.
func NewLayer[Req, Resp any](capacity int) api.Layer[Req, Resp] {
	return api.LayerFunc[Req, Resp](func(inner api.Service[Req, Resp]) api.Service[Req, Resp] {
		return New(inner, capacity)
	})
}

// Ready blocks until a queue slot is free. The inner service is
// deliberately not polled here: the buffer is the admission boundary and
// its own capacity is the readiness gate; inner readiness is the worker's
// concern at dispatch time.
func (s *Service[Req, Resp]) Ready(ctx context.Context) error {
	s.site.Lock()
	held := s.held
	s.site.Unlock()
	if held > 0 {
		return nil
	}

	select {
	case <-s.tokens:
		s.site.Lock()
		s.held++
		s.site.Unlock()
		return nil
	case <-s.quit:
		return api.ErrServiceClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Call consumes the slot reserved by Ready and enqueues the request. The
// returned pending settles when the worker has dispatched the call and the
// inner operation finished. Call without a reserved slot panics.
func (s *Service[Req, Resp]) Call(ctx context.Context, req Req) *api.Pending[Resp] {
	s.site.Lock()
	if s.held == 0 {
		s.site.Unlock()
		panic("buffer: Call without a preceding successful Ready")
	}
	s.held--
	s.site.Unlock()

	out := api.NewPending[Resp]()

	s.mu.Lock()
	select {
	case <-s.quit:
		s.mu.Unlock()
		s.tokens <- struct{}{}
		out.Reject(api.ErrServiceClosed)
		return out
	default:
	}
	s.q.Add(&item[Req, Resp]{ctx: ctx, req: req, out: out})
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return out
}

// Shutdown stops the worker, rejects every queued call with
// ErrServiceClosed, and waits for the worker to exit.
func (s *Service[Req, Resp]) Shutdown() error {
	s.closed.Do(func() {
		close(s.quit)
	})
	s.workerWG.Wait()

	s.mu.Lock()
	for s.q.Length() > 0 {
		it := s.q.Remove().(*item[Req, Resp])
		it.out.Reject(api.ErrServiceClosed)
	}
	s.mu.Unlock()
	return nil
}

func (s *Service[Req, Resp]) worker() {
	defer s.workerWG.Done()
	for {
		s.mu.Lock()
		if s.q.Length() == 0 {
			s.mu.Unlock()
			select {
			case <-s.wake:
				continue
			case <-s.quit:
				return
			}
		}
		it := s.q.Remove().(*item[Req, Resp])
		s.mu.Unlock()

		// The dequeued slot is free again regardless of the outcome.
		s.tokens <- struct{}{}

		if it.out.Canceled() {
			continue
		}
		s.dispatch(it)

		select {
		case <-s.quit:
			return
		default:
		}
	}
}

// dispatch performs the inner poll-then-call pair for one queued item and
// transfers the outcome. The worker is the single call site of the inner
// service, so the readiness discipline holds by construction.
func (s *Service[Req, Resp]) dispatch(it *item[Req, Resp]) {
	if err := s.inner.Ready(it.ctx); err != nil {
		it.out.Reject(err)
		return
	}
	p := s.inner.Call(it.ctx, it.req)
	it.out.OnCancel(p.Cancel)

	select {
	case <-p.Done():
		v, err := p.Result()
		if err != nil {
			it.out.Reject(err)
			return
		}
		it.out.Resolve(v)
	case <-s.quit:
		p.Cancel()
		it.out.Reject(api.ErrServiceClosed)
	}
}
