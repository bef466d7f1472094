// File: api/testing.go
// Package api defines the core contracts of hioload-svc.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Mock/testing utilities for the core contracts; extendable for new
// interfaces. MockService counts polls and calls so tests can assert the
// readiness propagation and short-circuit rules.

package api

import (
	"context"
	"sync/atomic"
)

// MockService is a test and mock-friendly implementation of Service.
// With no funcs set it is always ready and echoes the zero response.
type MockService[Req, Resp any] struct {
	ReadyFunc func(ctx context.Context) error
	CallFunc  func(ctx context.Context, req Req) *Pending[Resp]

	readyCount atomic.Int64
	callCount  atomic.Int64
}

// Ready counts the poll and delegates to ReadyFunc when set.
func (m *MockService[Req, Resp]) Ready(ctx context.Context) error {
	m.readyCount.Add(1)
	if m.ReadyFunc != nil {
		return m.ReadyFunc(ctx)
	}
	return nil
}

// Call counts the invocation and delegates to CallFunc when set.
func (m *MockService[Req, Resp]) Call(ctx context.Context, req Req) *Pending[Resp] {
	m.callCount.Add(1)
	if m.CallFunc != nil {
		return m.CallFunc(ctx, req)
	}
	var zero Resp
	return Resolved(zero)
}

// ReadyCount returns how many times Ready has been polled.
func (m *MockService[Req, Resp]) ReadyCount() int64 {
	return m.readyCount.Load()
}

// CallCount returns how many times Call has been invoked.
func (m *MockService[Req, Resp]) CallCount() int64 {
	return m.callCount.Load()
}
