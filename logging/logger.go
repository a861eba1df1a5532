package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures NewLogger.
type Options struct {
	// Level is the minimum level written to every output
	Level zapcore.Level

	// Development selects the human-readable console encoder and adds
	// stack traces to warnings
	Development bool

	// Color enables ANSI level colors in development mode
	Color bool

	// Console receives console output; os.Stderr when nil. Stdout is left
	// for the summary itself.
	Console io.Writer

	// File configures the rotating JSON log file; disabled when File.Path is empty
	File FileConfig
}

// Logger wraps zap.Logger with console + rotating file output and automatic
// redaction of API keys and other credentials.
//
// Redaction happens in the core, so loggers obtained through Zap() and
// passed to other packages are filtered as well.
//
// Example:
//
//	logger, err := NewLogger(Options{Level: zapcore.InfoLevel, File: FileConfig{Path: "pdfsummarizer.log"}})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Close()
//
//	logger.Info("summary written", zap.String("path", "out.txt"))
type Logger struct {
	zap   *zap.Logger
	level zap.AtomicLevel
	file  *lumberjack.Logger
}

// NewLogger creates a Logger. When a log file is configured it is created
// up front so that an unwritable path is reported here rather than lost on
// the first entry.
func NewLogger(opts Options) (*Logger, error) {
	level := zap.NewAtomicLevelAt(opts.Level)

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	var (
		file       *lumberjack.Logger
		fileSyncer zapcore.WriteSyncer
	)
	if opts.File.Path != "" {
		file = newFileWriter(opts.File)
		if _, err := file.Write(nil); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", opts.File.Path, err)
		}
		fileSyncer = zapcore.AddSync(file)
	}

	core := newCore(level, zapcore.AddSync(console), fileSyncer, opts.Development, opts.Color)

	zapOpts := []zap.Option{zap.AddCaller(), zap.AddCallerSkip(1)}
	if opts.Development {
		zapOpts = append(zapOpts, zap.Development(), zap.AddStacktrace(zapcore.WarnLevel))
	} else {
		zapOpts = append(zapOpts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	return &Logger{
		zap:   zap.New(core, zapOpts...),
		level: level,
		file:  file,
	}, nil
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return &Logger{zap: zap.NewNop(), level: zap.NewAtomicLevel()}
}

// Debug logs a message at DebugLevel.
func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.zap.Debug(msg, fields...)
}

// Info logs a message at InfoLevel.
func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.zap.Info(msg, fields...)
}

// Warn logs a message at WarnLevel.
func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.zap.Warn(msg, fields...)
}

// Error logs a message at ErrorLevel.
func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.zap.Error(msg, fields...)
}

// With creates a child logger whose entries all carry fields.
//
// Example:
//
//	runLogger := logger.With(zap.String("pdf", path))
//	runLogger.Info("extraction started")
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{zap: l.zap.With(fields...), level: l.level, file: l.file}
}

// Named adds a sub-logger name, e.g. "pipeline".
func (l *Logger) Named(name string) *Logger {
	return &Logger{zap: l.zap.Named(name), level: l.level, file: l.file}
}

// Zap returns a *zap.Logger for packages that take one directly. Its caller
// skip is reset so that call sites are reported correctly.
func (l *Logger) Zap() *zap.Logger {
	return l.zap.WithOptions(zap.AddCallerSkip(-1))
}

// Level returns the current minimum level.
func (l *Logger) Level() zapcore.Level {
	return l.level.Level()
}

// SetLevel changes the minimum level of every output at runtime.
func (l *Logger) SetLevel(level zapcore.Level) {
	l.level.SetLevel(level)
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	if l == nil || l.zap == nil {
		return nil
	}
	return l.zap.Sync()
}

// Close flushes the logger and closes the log file, if any.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	// Syncing stderr fails with EINVAL on some terminals; only the file matters.
	_ = l.Sync()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
