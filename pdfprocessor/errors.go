package pdfprocessor

import (
	"errors"
	"fmt"
)

// ErrEmptyPath is returned when an empty file path is provided.
var ErrEmptyPath = errors.New("empty path provided")

// ErrNoChoices is returned when the completion service answers with zero choices.
var ErrNoChoices = errors.New("completion service returned no choices")

// ExtractionError reports a PDF that could not be opened or read.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract text from %q: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ErrorKind classifies a failed call to the completion service.
type ErrorKind string

const (
	KindAuth           ErrorKind = "auth"
	KindRateLimit      ErrorKind = "rate_limit"
	KindServer         ErrorKind = "server"
	KindNetwork        ErrorKind = "network"
	KindMalformed      ErrorKind = "malformed"
	KindEmpty          ErrorKind = "empty"
	KindInvalidRequest ErrorKind = "invalid_request"
	KindCanceled       ErrorKind = "canceled"
	KindUnknown        ErrorKind = "unknown"
)

// SummarizationError reports a failed summary for one chunk.
//
// ChunkIndex is the 0-based position of the chunk in the document. Kind lets
// callers decide whether retrying makes sense without inspecting the cause.
type SummarizationError struct {
	ChunkIndex int
	Kind       ErrorKind
	Err        error
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("summarize chunk %d (%s): %v", e.ChunkIndex, e.Kind, e.Err)
}

func (e *SummarizationError) Unwrap() error { return e.Err }

// Retryable reports whether the failure is transient.
func (e *SummarizationError) Retryable() bool {
	switch e.Kind {
	case KindRateLimit, KindServer, KindNetwork:
		return true
	default:
		return false
	}
}

// IOError reports a failure writing a summary to its destination.
type IOError struct {
	Path string
	Op   string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ConfigurationError reports an invalid pipeline parameter.
type ConfigurationError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// AsSummarizationError returns the SummarizationError in err's chain, if any.
func AsSummarizationError(err error) (*SummarizationError, bool) {
	var sErr *SummarizationError
	if errors.As(err, &sErr) {
		return sErr, true
	}
	return nil, false
}
