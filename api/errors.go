// File: api/errors.go
// Package api defines the core contracts of hioload-svc.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Common error types and error handling utilities. Failures travel as
// ordinary values through the contract: readiness failures return from
// Ready, invocation failures settle the Pending. Only contract violations
// (Call without a preceding ready poll) may terminate abruptly.

package api

import "fmt"

// Common errors used across the library.
var (
	ErrServiceClosed     = fmt.Errorf("service is closed")
	ErrCallCanceled      = fmt.Errorf("call canceled")
	ErrOperationTimeout  = fmt.Errorf("operation timeout")
	ErrResourceExhausted = fmt.Errorf("resource exhausted")
	ErrNoReplicas        = fmt.Errorf("no replicas available")
	ErrInvalidArgument   = fmt.Errorf("invalid argument")
)

// ErrorCode classifies error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeReadiness  // surfaced by Ready: the instance cannot accept work
	ErrCodeInvocation // surfaced by a Pending: one accepted call failed
	ErrCodeTimeout
	ErrCodeCanceled
	ErrCodeExhausted
	ErrCodeInternal
)

// Error represents a structured error with code, cause, and context.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if len(e.Context) == 0 {
		return msg
	}
	return fmt.Sprintf("%s (context: %+v)", msg, e.Context)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithCause attaches an underlying error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
