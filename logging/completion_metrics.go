package logging

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CompletionMetrics describes one remote completion call.
// Implements zapcore.ObjectMarshaler for structured logging.
//
// Example:
//
//	metrics := NewCompletionMetrics("gpt-3.5-turbo-instruct", 3, 512, 120, time.Since(start))
//	logger.Debug("chunk summary received", CompletionFields(metrics))
type CompletionMetrics struct {
	// Model is the model that served the request
	Model string `json:"model"`

	// ChunkIndex is the zero-based chunk the completion summarizes
	ChunkIndex int `json:"chunk_index"`

	// PromptTokens and CompletionTokens are the usage reported by the service
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`

	// TotalTokens is PromptTokens + CompletionTokens
	TotalTokens int `json:"total_tokens"`

	// Duration is the wall time of the call
	Duration time.Duration `json:"duration"`

	// TokensPerSecond is CompletionTokens / Duration.Seconds(), 0 for a zero duration
	TokensPerSecond float64 `json:"tokens_per_second"`
}

// NewCompletionMetrics fills in the derived fields.
func NewCompletionMetrics(model string, chunkIndex, promptTokens, completionTokens int, duration time.Duration) CompletionMetrics {
	m := CompletionMetrics{
		Model:            model,
		ChunkIndex:       chunkIndex,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
		Duration:         duration,
	}
	if duration > 0 {
		m.TokensPerSecond = float64(completionTokens) / duration.Seconds()
	}
	return m
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
// Duration is encoded in milliseconds.
func (m CompletionMetrics) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("model", m.Model)
	enc.AddInt("chunk_index", m.ChunkIndex)
	enc.AddInt("prompt_tokens", m.PromptTokens)
	enc.AddInt("completion_tokens", m.CompletionTokens)
	enc.AddInt("total_tokens", m.TotalTokens)
	enc.AddInt64("duration_ms", m.Duration.Milliseconds())
	enc.AddFloat64("tokens_per_second", m.TokensPerSecond)
	return nil
}

// CompletionFields wraps metrics in a "completion" object field.
func CompletionFields(metrics CompletionMetrics) zap.Field {
	return zap.Object("completion", metrics)
}
