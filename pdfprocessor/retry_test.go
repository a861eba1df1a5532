package pdfprocessor

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// flakySummarizer fails with errs in order, then succeeds.
type flakySummarizer struct {
	errs  []error
	calls int
}

func (f *flakySummarizer) SummarizeChunk(_ context.Context, req SummaryRequest) (string, error) {
	f.calls++
	if f.calls <= len(f.errs) {
		return "", f.errs[f.calls-1]
	}
	return "summary", nil
}

func newTestRetrying(next ChunkSummarizer, maxRetries int, logger *zap.Logger) (*RetryingSummarizer, *[]time.Duration) {
	r := NewRetryingSummarizer(next, RetryConfig{MaxRetries: maxRetries, BaseDelay: 10 * time.Millisecond}, logger)
	var delays []time.Duration
	r.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	return r, &delays
}

func TestNewRetryingSummarizer_Defaults(t *testing.T) {
	r := NewRetryingSummarizer(&flakySummarizer{}, RetryConfig{MaxRetries: -3}, nil)

	if r.config.MaxRetries != 0 {
		t.Errorf("MaxRetries = %d, want 0", r.config.MaxRetries)
	}
	if r.config.BaseDelay != time.Second {
		t.Errorf("BaseDelay = %v, want %v", r.config.BaseDelay, time.Second)
	}
	if r.logger == nil {
		t.Error("logger should default to a no-op logger")
	}
}

func TestRetryingSummarizer_RetriesTransientErrors(t *testing.T) {
	next := &flakySummarizer{errs: []error{
		&SummarizationError{ChunkIndex: 3, Kind: KindRateLimit, Err: errors.New("slow down")},
		&SummarizationError{ChunkIndex: 3, Kind: KindServer, Err: errors.New("502")},
	}}
	core, logs := observer.New(zapcore.WarnLevel)
	r, delays := newTestRetrying(next, 3, zap.New(core))

	got, err := r.SummarizeChunk(context.Background(), SummaryRequest{ChunkIndex: 3})
	if err != nil {
		t.Fatalf("SummarizeChunk() error = %v", err)
	}
	if got != "summary" {
		t.Errorf("SummarizeChunk() = %q, want %q", got, "summary")
	}
	if next.calls != 3 {
		t.Errorf("calls = %d, want 3", next.calls)
	}
	if len(*delays) != 2 {
		t.Fatalf("slept %d times, want 2", len(*delays))
	}
	if logs.FilterMessage("Retrying chunk summary").Len() != 2 {
		t.Errorf("expected 2 retry log entries, got %d", logs.Len())
	}
}

func TestRetryingSummarizer_DoesNotRetryPermanentErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "auth", err: &SummarizationError{Kind: KindAuth, Err: errors.New("bad key")}},
		{name: "invalid request", err: &SummarizationError{Kind: KindInvalidRequest, Err: errors.New("bad model")}},
		{name: "malformed", err: &SummarizationError{Kind: KindMalformed, Err: errors.New("garbage")}},
		{name: "untyped", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := &flakySummarizer{errs: []error{tt.err}}
			r, delays := newTestRetrying(next, 5, nil)

			_, err := r.SummarizeChunk(context.Background(), SummaryRequest{})
			if !errors.Is(err, tt.err) {
				t.Errorf("error = %v, want %v", err, tt.err)
			}
			if next.calls != 1 {
				t.Errorf("calls = %d, want 1", next.calls)
			}
			if len(*delays) != 0 {
				t.Errorf("slept %d times, want 0", len(*delays))
			}
		})
	}
}

func TestRetryingSummarizer_GivesUpAfterMaxRetries(t *testing.T) {
	last := &SummarizationError{ChunkIndex: 0, Kind: KindNetwork, Err: errors.New("reset 3")}
	next := &flakySummarizer{errs: []error{
		&SummarizationError{Kind: KindNetwork, Err: errors.New("reset 1")},
		&SummarizationError{Kind: KindNetwork, Err: errors.New("reset 2")},
		last,
	}}
	r, _ := newTestRetrying(next, 2, nil)

	_, err := r.SummarizeChunk(context.Background(), SummaryRequest{})
	if err != last {
		t.Errorf("error = %v, want last attempt's error", err)
	}
	if next.calls != 3 {
		t.Errorf("calls = %d, want 3", next.calls)
	}
}

func TestRetryingSummarizer_ZeroRetriesCallsOnce(t *testing.T) {
	next := &flakySummarizer{errs: []error{&SummarizationError{Kind: KindServer, Err: errors.New("500")}}}
	r, _ := newTestRetrying(next, 0, nil)

	if _, err := r.SummarizeChunk(context.Background(), SummaryRequest{}); err == nil {
		t.Fatal("expected error")
	}
	if next.calls != 1 {
		t.Errorf("calls = %d, want 1", next.calls)
	}
}

func TestRetryingSummarizer_CanceledDuringBackoff(t *testing.T) {
	next := &flakySummarizer{errs: []error{&SummarizationError{ChunkIndex: 4, Kind: KindServer, Err: errors.New("500")}}}
	r := NewRetryingSummarizer(next, RetryConfig{MaxRetries: 3, BaseDelay: time.Hour}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := r.SummarizeChunk(ctx, SummaryRequest{ChunkIndex: 4})

	sErr, ok := AsSummarizationError(err)
	if !ok {
		t.Fatalf("expected *SummarizationError, got %T: %v", err, err)
	}
	if sErr.Kind != KindCanceled || sErr.ChunkIndex != 4 {
		t.Errorf("error = %+v, want canceled at chunk 4", sErr)
	}
	if next.calls != 1 {
		t.Errorf("calls = %d, want 1", next.calls)
	}
}

func TestBackoff(t *testing.T) {
	base := 100 * time.Millisecond
	for n := 0; n < 5; n++ {
		want := base << uint(n)
		for i := 0; i < 20; i++ {
			got := Backoff(base, n)
			if got < want || got >= want+want/2 {
				t.Fatalf("Backoff(%v, %d) = %v, want in [%v, %v)", base, n, got, want, want+want/2)
			}
		}
	}
}

func TestBackoff_Capped(t *testing.T) {
	for _, n := range []int{10, 40, 1000} {
		got := Backoff(time.Second, n)
		if got < maxBackoff || got >= maxBackoff+maxBackoff/2 {
			t.Errorf("Backoff(1s, %d) = %v, want capped near %v", n, got, maxBackoff)
		}
	}
}
