// File: api/service.go
// Package api defines the core contracts of hioload-svc.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Service is the fundamental processing unit: a readiness poll plus an
// asynchronous invocation, parameterized by request and response types.
// It represents network-boundary endpoints and in-process middleware alike;
// both sides of the boundary speak the same two-phase contract.

package api

import "context"

// Service processes typed requests into typed responses or errors.
//
// The contract is two-phase: Ready reports whether the service can accept
// one more call, Call consumes that readiness. A nil return from Ready
// authorizes exactly the next Call issued from the same call site.
//
// A Service instance is mutable across calls and is not safe for use from
// multiple concurrent call sites unless its documentation says otherwise.
// Implementations that internally serialize poll/call pairs must state so.
type Service[Req, Resp any] interface {
	// Ready blocks until the service can accept one call, the context is
	// done, or the service enters a terminal failure state. It returns nil
	// when ready, the context's error when the wait is abandoned, and any
	// other error to signal the instance is failed and must not be called.
	//
	// Waking the caller when conditions change (a rate window resets, a
	// queue slot frees) is the service's responsibility.
	Ready(ctx context.Context) error

	// Call consumes one request and returns the in-flight operation handle.
	// Precondition: the immediately preceding successful Ready on this call
	// site applies to this call. Invoking Call without one is a contract
	// violation; implementations are permitted to panic rather than degrade,
	// unless they document an always-ready relaxation.
	Call(ctx context.Context, req Req) *Pending[Resp]
}
