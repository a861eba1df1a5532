package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"
)

// Watcher turns process signals into context cancellation for a single run.
//
// The first SIGINT or SIGTERM cancels the context returned by NewWatcher so
// that the pipeline stops before its next remote call. A second signal
// calls the force callback, which is expected to exit immediately.
type Watcher struct {
	ctx     context.Context
	cancel  context.CancelFunc
	counter *SignalCounter
	logger  *zap.Logger

	sigCh    chan os.Signal
	stopOnce sync.Once
	done     chan struct{}
}

// NewWatcher creates a Watcher whose context is derived from parent.
// A nil logger disables logging.
func NewWatcher(parent context.Context, logger *zap.Logger, onForce func(os.Signal)) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	w := &Watcher{
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
		sigCh:  make(chan os.Signal, 2),
		done:   make(chan struct{}),
	}
	w.counter = NewSignalCounter(2, func(sig os.Signal) {
		w.logger.Warn("Second signal received, forcing exit", zap.Stringer("signal", sig))
		if onForce != nil {
			onForce(sig)
		}
	})
	return w
}

// Context returns the context canceled by the first signal.
func (w *Watcher) Context() context.Context {
	return w.ctx
}

// Start subscribes to SIGINT and SIGTERM and handles them in a goroutine
// until Stop is called.
func (w *Watcher) Start() {
	signal.Notify(w.sigCh, os.Interrupt, syscall.SIGTERM)
	go w.loop()
}

func (w *Watcher) loop() {
	for {
		select {
		case sig := <-w.sigCh:
			w.Handle(sig)
		case <-w.done:
			return
		}
	}
}

// Handle processes one signal as if it had been delivered to the process.
func (w *Watcher) Handle(sig os.Signal) {
	if w.counter.Record(sig) == 1 {
		w.logger.Info("Signal received, stopping after the current chunk (repeat to force exit)",
			zap.Stringer("signal", sig))
		w.cancel()
	}
}

// Signal returns the first signal received, or nil.
func (w *Watcher) Signal() os.Signal {
	return w.counter.First()
}

// Stop unsubscribes from signals, ends the handler goroutine and releases
// the context. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		signal.Stop(w.sigCh)
		close(w.done)
		w.cancel()
	})
}
