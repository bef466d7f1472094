// File: api/layer.go
// Package api defines the core contracts of hioload-svc.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Layer is the middleware contract: a factory that wraps an inner Service
// to produce a new Service with added behavior, transparent to the contract.

package api

// Layer wraps an inner service to add cross-cutting behavior.
//
// Apply is pure construction: no side effects beyond allocating the
// wrapper's own state. A Layer has no lifecycle of its own and may be
// applied to any number of inner services.
//
// A well-behaved wrapped service performs its own readiness gate first and
// only delegates to the inner Ready once that gate passes; its Call applies
// pre-call behavior, delegates, and may wrap the returned Pending for
// post-completion behavior while preserving the exactly-one-outcome rule.
type Layer[Req, Resp any] interface {
	Apply(inner Service[Req, Resp]) Service[Req, Resp]
}

// LayerFunc converts a function into a Layer.
type LayerFunc[Req, Resp any] func(Service[Req, Resp]) Service[Req, Resp]

// Apply calls the underlying function.
func (f LayerFunc[Req, Resp]) Apply(inner Service[Req, Resp]) Service[Req, Resp] {
	return f(inner)
}
