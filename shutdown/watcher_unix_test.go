//go:build unix

package shutdown

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"
)

func TestWatcher_StartDeliversProcessSignals(t *testing.T) {
	w := NewWatcher(context.Background(), nil, nil)
	w.Start()
	defer w.Stop()

	if err := syscall.Kill(os.Getpid(), syscall.SIGTERM); err != nil {
		t.Skipf("cannot signal self: %v", err)
	}

	select {
	case <-w.Context().Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context was not canceled after SIGTERM")
	}
	if w.Signal() != syscall.SIGTERM {
		t.Errorf("Signal() = %v, want SIGTERM", w.Signal())
	}
}
