package logging

import (
	"go.uber.org/zap/zapcore"
)

// newCore builds the console core and, when a file writer is given, a JSON
// file core, each wrapped in redaction, and tees them together.
//
// The console uses the human-readable encoder in development mode and JSON
// otherwise. The file always gets JSON.
func newCore(level zapcore.LevelEnabler, console zapcore.WriteSyncer, file zapcore.WriteSyncer, dev, color bool) zapcore.Core {
	var consoleEncoder zapcore.Encoder
	if dev {
		consoleEncoder = zapcore.NewConsoleEncoder(NewConsoleEncoderConfig(color))
	} else {
		consoleEncoder = zapcore.NewJSONEncoder(NewEncoderConfig())
	}

	consoleCore := NewRedactingCore(zapcore.NewCore(consoleEncoder, zapcore.Lock(console), level))
	if file == nil {
		return consoleCore
	}

	fileCore := NewRedactingCore(zapcore.NewCore(
		zapcore.NewJSONEncoder(NewEncoderConfig()),
		file,
		level,
	))
	return zapcore.NewTee(consoleCore, fileCore)
}
