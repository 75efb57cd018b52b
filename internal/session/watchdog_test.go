package session

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/qwicbook/qwicbook-pro/pkg/logging"
)

type checkerFunc func(ctx context.Context, adminUserID int64) (bool, error)

func (f checkerFunc) CheckAccountActive(ctx context.Context, adminUserID int64) (bool, error) {
	return f(ctx, adminUserID)
}

func discardLogger() *logging.Logger {
	return logging.NewWithWriter("error", io.Discard)
}

func TestWatchdogStopsOnImmediateBlock(t *testing.T) {
	var blockedCalls int32
	w, err := NewWatchdog(WatchdogConfig{
		Checker: checkerFunc(func(ctx context.Context, id int64) (bool, error) {
			return false, nil
		}),
		Logger:      discardLogger(),
		AdminUserID: 3,
		OnBlocked:   func() { atomic.AddInt32(&blockedCalls, 1) },
		Tick:        make(chan time.Time),
		Stop:        func() {},
	})
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		w.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watchdog did not stop after a blocked answer")
	}
	if got := atomic.LoadInt32(&blockedCalls); got != 1 {
		t.Fatalf("onBlocked called %d times, want 1", got)
	}
}

func TestWatchdogKeepsPollingThroughErrors(t *testing.T) {
	var calls int32
	answers := []struct {
		active bool
		err    error
	}{
		{true, nil},
		{false, errors.New("transient")},
		{false, nil},
	}
	tick := make(chan time.Time)

	w, err := NewWatchdog(WatchdogConfig{
		Checker: checkerFunc(func(ctx context.Context, id int64) (bool, error) {
			n := atomic.AddInt32(&calls, 1)
			if int(n) > len(answers) {
				return false, nil
			}
			a := answers[n-1]
			return a.active, a.err
		}),
		Logger:      discardLogger(),
		AdminUserID: 3,
		OnBlocked:   func() {},
		Tick:        tick,
		Stop:        func() {},
	})
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		w.Start(context.Background())
		close(done)
	}()

	// keep ticking until the blocked answer lands; a tick that races
	// the in-flight guard is simply retried
	deadline := time.After(2 * time.Second)
	for atomic.LoadInt32(&calls) < int32(len(answers)) {
		select {
		case tick <- time.Time{}:
		case <-done:
		case <-deadline:
			t.Fatalf("checker reached %d calls, want %d", atomic.LoadInt32(&calls), len(answers))
		}
		time.Sleep(time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watchdog kept running after a blocked answer")
	}
	if got := atomic.LoadInt32(&calls); got < int32(len(answers)) {
		t.Fatalf("checker called %d times, want at least %d", got, len(answers))
	}
}

func TestWatchdogDropsOverlappingTicks(t *testing.T) {
	var calls int32
	gate := make(chan struct{})
	started := make(chan struct{}, 4)
	tick := make(chan time.Time)

	w, err := NewWatchdog(WatchdogConfig{
		Checker: checkerFunc(func(ctx context.Context, id int64) (bool, error) {
			n := atomic.AddInt32(&calls, 1)
			started <- struct{}{}
			if n == 2 {
				<-gate // tick-driven check stalls on a slow answer
			}
			return true, nil
		}),
		Logger:      discardLogger(),
		AdminUserID: 3,
		Tick:        tick,
		Stop:        func() {},
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	<-started // immediate check
	tick <- time.Time{}
	<-started // slow check now in flight

	// ticks landing while the check is stalled must be dropped
	tick <- time.Time{}
	tick <- time.Time{}
	time.Sleep(20 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("checker called %d times during overlap, want 2", got)
	}

	close(gate)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watchdog did not stop on cancel")
	}
}
