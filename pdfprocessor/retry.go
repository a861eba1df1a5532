package pdfprocessor

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// maxBackoff caps the delay between two attempts.
const maxBackoff = 30 * time.Second

// RetryConfig controls RetryingSummarizer.
type RetryConfig struct {
	// MaxRetries is the number of extra attempts after the first failure.
	MaxRetries int

	// BaseDelay is the delay before the first retry; it doubles per attempt.
	BaseDelay time.Duration
}

// RetryingSummarizer retries transient failures of another ChunkSummarizer.
// Only errors whose SummarizationError.Retryable reports true are retried.
type RetryingSummarizer struct {
	next   ChunkSummarizer
	config RetryConfig
	logger *zap.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewRetryingSummarizer wraps next. A nil logger disables logging.
func NewRetryingSummarizer(next ChunkSummarizer, config RetryConfig, logger *zap.Logger) *RetryingSummarizer {
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryingSummarizer{
		next:   next,
		config: config,
		logger: logger,
		sleep:  sleepContext,
	}
}

// SummarizeChunk calls the wrapped summarizer, retrying transient failures
// with exponential backoff and jitter.
func (r *RetryingSummarizer) SummarizeChunk(ctx context.Context, req SummaryRequest) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := Backoff(r.config.BaseDelay, attempt-1)
			r.logger.Warn("Retrying chunk summary",
				zap.Int("chunk", req.ChunkIndex),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			if err := r.sleep(ctx, delay); err != nil {
				return "", &SummarizationError{ChunkIndex: req.ChunkIndex, Kind: KindCanceled, Err: err}
			}
		}

		summary, err := r.next.SummarizeChunk(ctx, req)
		if err == nil {
			return summary, nil
		}
		lastErr = err

		sErr, ok := AsSummarizationError(err)
		if !ok || !sErr.Retryable() {
			return "", err
		}
	}
	return "", lastErr
}

// Backoff returns the delay before retry n (0-indexed): base doubled n
// times, capped at 30s, plus up to 50% jitter.
func Backoff(base time.Duration, n int) time.Duration {
	if n > 16 {
		n = 16
	}
	delay := base << uint(n)
	if delay > maxBackoff || delay <= 0 {
		delay = maxBackoff
	}
	if half := int64(delay) / 2; half > 0 {
		delay += time.Duration(rand.Int64N(half))
	}
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
