package pdfprocessor

import (
	"io"
	"os"
)

// Sink receives the final summary of a pipeline run.
type Sink interface {
	Save(text string) error
}

// FileSink writes the summary to a text file, replacing any previous content.
type FileSink struct {
	Path string
}

// Save implements Sink.
func (s FileSink) Save(text string) error {
	return SaveSummary(text, s.Path)
}

// WriterSink hands the summary to an io.Writer such as os.Stdout.
type WriterSink struct {
	W io.Writer
}

// Save implements Sink.
func (s WriterSink) Save(text string) error {
	if _, err := io.WriteString(s.W, text); err != nil {
		return &IOError{Path: "<writer>", Op: "write", Err: err}
	}
	return nil
}

// SaveSummary creates or truncates path and writes exactly text to it.
// The file is closed on every return path; a failed close is reported.
func SaveSummary(text string, path string) (err error) {
	if path == "" {
		return &IOError{Path: path, Op: "open", Err: ErrEmptyPath}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return &IOError{Path: path, Op: "open", Err: err}
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = &IOError{Path: path, Op: "close", Err: closeErr}
		}
	}()

	if _, err := io.WriteString(f, text); err != nil {
		return &IOError{Path: path, Op: "write", Err: err}
	}
	return nil
}
