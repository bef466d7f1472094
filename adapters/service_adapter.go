// File: adapters/service_adapter.go
// Package adapters provides glue between plain functions and api.Service.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ServiceFunc and AsyncServiceFunc turn request-handling functions into
// services. Both are unconditionally ready and therefore carry the
// documented relaxation of the readiness contract: they tolerate Call
// without a preceding Ready. Any service that is not always ready must not
// adopt this relaxation.

package adapters

import (
	"context"

	"github.com/momentics/hioload-svc/api"
)

// ServiceFunc converts a function into an api.Service that runs the
// function synchronously during Call and returns an already settled
// Pending.
//
// Relaxation: a ServiceFunc is always ready, so Call without a preceding
// Ready is explicitly permitted for this type.
type ServiceFunc[Req, Resp any] func(ctx context.Context, req Req) (Resp, error)

// Ready reports readiness immediately; a ServiceFunc can always accept work.
func (f ServiceFunc[Req, Resp]) Ready(ctx context.Context) error {
	return nil
}

// Call runs the function and returns its settled result.
func (f ServiceFunc[Req, Resp]) Call(ctx context.Context, req Req) *api.Pending[Resp] {
	resp, err := f(ctx, req)
	if err != nil {
		return api.Rejected[Resp](err)
	}
	return api.Resolved(resp)
}

// AsyncServiceFunc converts a function into an api.Service that runs the
// function on its own goroutine, settling the returned Pending when the
// function completes. It shares the always-ready relaxation of ServiceFunc.
//
// Cancellation of the returned Pending abandons the result; the function
// keeps running until it observes ctx or returns.
type AsyncServiceFunc[Req, Resp any] func(ctx context.Context, req Req) (Resp, error)

// Ready reports readiness immediately.
func (f AsyncServiceFunc[Req, Resp]) Ready(ctx context.Context) error {
	return nil
}

// Call dispatches the function asynchronously.
func (f AsyncServiceFunc[Req, Resp]) Call(ctx context.Context, req Req) *api.Pending[Resp] {
	p := api.NewPending[Resp]()
	go func() {
		resp, err := f(ctx, req)
		if err != nil {
			p.Reject(err)
			return
		}
		p.Resolve(resp)
	}()
	return p
}
