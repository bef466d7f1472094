// File: logging/logging.go
// Package logging implements a structured logging layer for hioload-svc.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The layer logs call dispatch and settlement through a logrus field
// logger. The core contract stays silent; hosts opt into call logging by
// composing this layer where they want visibility.

package logging

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/momentics/hioload-svc/api"
)

// NewLayer creates a logging layer writing through log, tagging every entry
// with the given service name.
func NewLayer[Req, Resp any](log logrus.FieldLogger, name string) api.Layer[Req, Resp] {
	return api.LayerFunc[Req, Resp](func(inner api.Service[Req, Resp]) api.Service[Req, Resp] {
		return &service[Req, Resp]{
			inner: inner,
			log:   log.WithField("service", name),
		}
	})
}

type service[Req, Resp any] struct {
	inner api.Service[Req, Resp]
	log   *logrus.Entry
}

// Ready delegates; terminal readiness failures are logged once here since
// the caller should not retry this instance.
func (s *service[Req, Resp]) Ready(ctx context.Context) error {
	err := s.inner.Ready(ctx)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		s.log.WithError(err).Warn("service readiness failed")
	}
	return err
}

// Call delegates and logs the eventual settlement with its latency. The
// inner pending is returned unwrapped so cancellation reaches the inner
// operation directly.
func (s *service[Req, Resp]) Call(ctx context.Context, req Req) *api.Pending[Resp] {
	start := time.Now()
	s.log.Debug("call dispatched")

	p := s.inner.Call(ctx, req)
	go func() {
		<-p.Done()
		entry := s.log.WithField("duration", time.Since(start).String())
		switch err := p.Err(); {
		case err == nil:
			entry.Debug("call completed")
		case errors.Is(err, api.ErrCallCanceled):
			entry.Debug("call canceled")
		default:
			entry.WithError(err).Warn("call failed")
		}
	}()
	return p
}
