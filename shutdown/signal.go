package shutdown

import (
	"os"
	"sync"
)

// SignalCounter tracks repeated shutdown signals and triggers forced shutdown.
//
// Usage:
//
//	counter := NewSignalCounter(2, func(sig os.Signal) {
//	    os.Exit(core.ExitCodeForSignal(sig))
//	})
//
//	for sig := range sigChan {
//	    if counter.Record(sig) == 1 {
//	        cancel() // first signal: stop gracefully
//	    }
//	}
type SignalCounter struct {
	mu         sync.Mutex
	count      int
	first      os.Signal
	forceAfter int
	onForce    func(os.Signal)
}

// NewSignalCounter creates a SignalCounter that calls onForce with the
// latest signal once forceAfter signals have been recorded. onForce may be nil.
func NewSignalCounter(forceAfter int, onForce func(os.Signal)) *SignalCounter {
	return &SignalCounter{
		forceAfter: forceAfter,
		onForce:    onForce,
	}
}

// Record counts sig and returns the new count. When the count reaches
// forceAfter, onForce is invoked with sig while the lock is held, so it
// should exit the process or return quickly.
func (s *SignalCounter) Record(sig os.Signal) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.count++
	if s.count == 1 {
		s.first = sig
	}
	if s.forceAfter > 0 && s.count >= s.forceAfter && s.onForce != nil {
		s.onForce(sig)
	}
	return s.count
}

// Count returns the current signal count.
func (s *SignalCounter) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// First returns the first recorded signal, or nil if none was recorded.
func (s *SignalCounter) First() os.Signal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.first
}
