// File: api/pending_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/momentics/hioload-svc/api"
)

func TestPendingResolveOnce(t *testing.T) {
	p := api.NewPending[string]()

	if !p.Resolve("first") {
		t.Fatal("first Resolve should win the settlement")
	}
	if p.Resolve("second") {
		t.Error("second Resolve should be a no-op")
	}
	if p.Reject(errors.New("late")) {
		t.Error("Reject after Resolve should be a no-op")
	}

	v, err := p.Result()
	if err != nil {
		t.Fatalf("Result error: %v", err)
	}
	if v != "first" {
		t.Errorf("Result = %q, want %q", v, "first")
	}
}

func TestPendingRejectOnce(t *testing.T) {
	want := errors.New("boom")
	p := api.Rejected[int](want)

	select {
	case <-p.Done():
	default:
		t.Fatal("Rejected pending should be settled")
	}

	if _, err := p.Result(); !errors.Is(err, want) {
		t.Errorf("Result error = %v, want %v", err, want)
	}
	if p.Resolve(1) {
		t.Error("Resolve after Reject should be a no-op")
	}
}

func TestPendingWait(t *testing.T) {
	p := api.NewPending[int]()

	go func() {
		time.Sleep(10 * time.Millisecond)
		p.Resolve(42)
	}()

	v, err := p.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait error: %v", err)
	}
	if v != 42 {
		t.Errorf("Wait = %d, want 42", v)
	}
}

func TestPendingWaitContextDone(t *testing.T) {
	p := api.NewPending[int]()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := p.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait error = %v, want deadline exceeded", err)
	}

	// Abandoning the wait must not settle the operation.
	select {
	case <-p.Done():
		t.Error("pending should remain unsettled after abandoned Wait")
	default:
	}
}

func TestPendingCancelSettlesAndRunsHooks(t *testing.T) {
	p := api.NewPending[int]()

	released := 0
	p.OnCancel(func() { released++ })
	p.OnCancel(func() { released++ })

	p.Cancel()
	p.Cancel() // idempotent

	if released != 2 {
		t.Errorf("release hooks ran %d times, want 2", released)
	}
	if !p.Canceled() {
		t.Error("Canceled should report true")
	}
	if _, err := p.Result(); !errors.Is(err, api.ErrCallCanceled) {
		t.Errorf("Result error = %v, want ErrCallCanceled", err)
	}
}

func TestPendingOnCancelAfterCancelRunsImmediately(t *testing.T) {
	p := api.NewPending[int]()
	p.Cancel()

	ran := false
	p.OnCancel(func() { ran = true })
	if !ran {
		t.Error("hook registered after Cancel should run immediately")
	}
}

func TestPendingOnCancelDroppedAfterSettlement(t *testing.T) {
	p := api.Resolved(1)

	p.OnCancel(func() { t.Error("hook must not run after resolution") })
	p.Cancel()

	// Cancel after resolution must not overwrite the outcome.
	if v, err := p.Result(); err != nil || v != 1 {
		t.Errorf("Result = (%d, %v), want (1, nil)", v, err)
	}
}

// TestPendingRepeatedCancelNoGrowth exercises the abandonment path
// repeatedly: each cycle's hooks must run and be released, so no per-call
// state accumulates across cycles.
func TestPendingRepeatedCancelNoGrowth(t *testing.T) {
	var live int
	for i := 0; i < 1000; i++ {
		p := api.NewPending[int]()
		live++
		p.OnCancel(func() { live-- })
		p.Cancel()
	}
	if live != 0 {
		t.Errorf("%d release hooks never ran", live)
	}
}
