// File: stack/stack.go
// Package stack implements the composition chain for hioload-svc layers.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// A Stack accumulates an ordered sequence of layers and applies them around
// a terminal service. Ordering is fixed: the first layer added with Use ends
// up innermost (closest to the terminal service), the last added ends up
// outermost, so the layer applied last sees the request first and the
// response last.

package stack

import "github.com/momentics/hioload-svc/api"

// Stack is an ordered collection of layers awaiting a terminal service.
// The zero value is usable; an empty stack builds the identity composition.
type Stack[Req, Resp any] struct {
	layers []api.Layer[Req, Resp]
}

// New creates a Stack pre-seeded with the given layers in Use order.
func New[Req, Resp any](layers ...api.Layer[Req, Resp]) *Stack[Req, Resp] {
	return &Stack[Req, Resp]{layers: append([]api.Layer[Req, Resp]{}, layers...)}
}

// Use appends a layer to the chain and returns the stack for chaining.
// Layers added later wrap outermost.
func (s *Stack[Req, Resp]) Use(l api.Layer[Req, Resp]) *Stack[Req, Resp] {
	s.layers = append(s.layers, l)
	return s
}

// UseFunc appends a function layer to the chain.
func (s *Stack[Req, Resp]) UseFunc(f func(api.Service[Req, Resp]) api.Service[Req, Resp]) *Stack[Req, Resp] {
	return s.Use(api.LayerFunc[Req, Resp](f))
}

// Len returns the number of accumulated layers.
func (s *Stack[Req, Resp]) Len() int {
	return len(s.layers)
}

// Build applies the accumulated layers around terminal and returns the
// composed service. It is deterministic and side-effect-free beyond the
// wrappers' own allocation; with no layers it returns terminal unchanged.
func (s *Stack[Req, Resp]) Build(terminal api.Service[Req, Resp]) api.Service[Req, Resp] {
	svc := terminal
	for _, l := range s.layers {
		svc = l.Apply(svc)
	}
	return svc
}
