// File: stack/composed_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Cross-package composition coverage: real layers stacked around a real
// terminal service, exercised through the outermost contract only.

package stack_test

import (
	"context"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/momentics/hioload-svc/adapters"
	"github.com/momentics/hioload-svc/api"
	"github.com/momentics/hioload-svc/limit"
	"github.com/momentics/hioload-svc/ratelimit"
	"github.com/momentics/hioload-svc/stack"
	"github.com/momentics/hioload-svc/timeout"
)

func TestComposedResilienceStack(t *testing.T) {
	echo := adapters.ServiceFunc[string, string](func(ctx context.Context, req string) (string, error) {
		return req, nil
	})

	svc := stack.New[string, string]().
		Use(timeout.NewLayer[string, string](time.Second)).
		Use(limit.NewLayer[string, string](2)).
		Use(ratelimit.NewLayer[string, string](rate.Limit(1000), 5)).
		Build(api.Service[string, string](echo))

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := svc.Ready(ctx); err != nil {
			t.Fatalf("Ready %d error: %v", i, err)
		}
		v, err := svc.Call(ctx, "ping").Wait(ctx)
		if err != nil {
			t.Fatalf("Call %d error: %v", i, err)
		}
		if v != "ping" {
			t.Errorf("Call %d = %q, want %q", i, v, "ping")
		}
	}
}

// TestComposedTimeoutInsideStack checks the layered timeout still classifies
// expiry when buried under other layers.
func TestComposedTimeoutInsideStack(t *testing.T) {
	hang := &api.MockService[string, string]{
		CallFunc: func(ctx context.Context, req string) *api.Pending[string] {
			return api.NewPending[string]()
		},
	}

	svc := stack.New[string, string]().
		Use(timeout.NewLayer[string, string](30 * time.Millisecond)).
		Use(ratelimit.NewLayer[string, string](rate.Limit(1000), 5)).
		Build(api.Service[string, string](hang))

	ctx := context.Background()
	if err := svc.Ready(ctx); err != nil {
		t.Fatalf("Ready error: %v", err)
	}
	if _, err := svc.Call(ctx, "ping").Wait(ctx); !timeout.IsTimeout(err) {
		t.Fatalf("Wait error = %v, want timeout classification", err)
	}
}
