package shutdown

import (
	"context"
	"errors"
	"os"
	"syscall"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWatcher_FirstSignalCancels(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	forced := false
	w := NewWatcher(context.Background(), zap.New(core), func(os.Signal) { forced = true })
	defer w.Stop()

	if w.Context().Err() != nil {
		t.Fatal("context should start active")
	}

	w.Handle(os.Interrupt)

	if !errors.Is(w.Context().Err(), context.Canceled) {
		t.Errorf("context error = %v, want context.Canceled", w.Context().Err())
	}
	if forced {
		t.Error("first signal must not force exit")
	}
	if w.Signal() != os.Interrupt {
		t.Errorf("Signal() = %v, want %v", w.Signal(), os.Interrupt)
	}
	if logs.FilterMessageSnippet("Signal received").Len() != 1 {
		t.Error("expected one log entry for the first signal")
	}
}

func TestWatcher_SecondSignalForces(t *testing.T) {
	var forcedWith os.Signal
	w := NewWatcher(context.Background(), nil, func(sig os.Signal) { forcedWith = sig })
	defer w.Stop()

	w.Handle(syscall.SIGTERM)
	w.Handle(os.Interrupt)

	if forcedWith != os.Interrupt {
		t.Errorf("force callback signal = %v, want %v", forcedWith, os.Interrupt)
	}
	if w.Signal() != syscall.SIGTERM {
		t.Errorf("Signal() = %v, want the first signal", w.Signal())
	}
}

func TestWatcher_ParentCancellation(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	w := NewWatcher(parent, nil, nil)
	defer w.Stop()

	cancel()

	if w.Context().Err() == nil {
		t.Error("watcher context should follow its parent")
	}
	if w.Signal() != nil {
		t.Errorf("Signal() = %v, want nil", w.Signal())
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w := NewWatcher(context.Background(), nil, nil)
	w.Start()
	w.Stop()
	w.Stop()

	if w.Context().Err() == nil {
		t.Error("Stop should release the context")
	}
}
