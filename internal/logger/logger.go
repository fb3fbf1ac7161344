package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var zapLevels = map[LogLevel]zapcore.Level{
	LevelDebug: zapcore.DebugLevel,
	LevelInfo:  zapcore.InfoLevel,
	LevelWarn:  zapcore.WarnLevel,
	LevelError: zapcore.ErrorLevel,
}

// New builds a logger writing to outputs, stdout when none are given.
// format is "json" or "console".
func New(level LogLevel, format string, outputs ...string) (*Logger, error) {
	atomic := zap.NewAtomicLevelAt(zapLevels[level])

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	encoding := "json"
	if strings.EqualFold(format, "console") {
		encoding = "console"
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	if len(outputs) == 0 {
		outputs = []string{"stdout"}
	}

	cfg := zap.Config{
		Level:            atomic,
		Encoding:         encoding,
		EncoderConfig:    encoderCfg,
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
	}

	base, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{level: atomic, sugar: base.Sugar()}, nil
}

// NewWithCore wraps an existing zap core, mostly useful for observing log
// output in tests.
func NewWithCore(core zapcore.Core, level LogLevel) *Logger {
	return &Logger{
		level: zap.NewAtomicLevelAt(zapLevels[level]),
		sugar: zap.New(core).Sugar(),
	}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{level: zap.NewAtomicLevelAt(zapcore.ErrorLevel), sugar: zap.NewNop().Sugar()}
}

// ParseLevel maps "debug", "info", "warn" and "error" to a LogLevel,
// defaulting to info.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// SetLogLevel sets the minimum log level
func (l *Logger) SetLogLevel(level LogLevel) {
	l.level.SetLevel(zapLevels[level])
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

func (l *Logger) log(level LogLevel, component, message string, args ...interface{}) {
	zl := zapLevels[level]
	if !l.level.Enabled(zl) {
		return
	}

	s := l.sugar
	if component != "" {
		s = s.With("component", component)
	}

	switch zl {
	case zapcore.DebugLevel:
		s.Debugf(message, args...)
	case zapcore.InfoLevel:
		s.Infof(message, args...)
	case zapcore.WarnLevel:
		s.Warnf(message, args...)
	default:
		s.Errorf(message, args...)
	}
}

// Debug logs a debug message
func (l *Logger) Debug(component, message string, args ...interface{}) {
	l.log(LevelDebug, component, message, args...)
}

// Info logs an info message
func (l *Logger) Info(component, message string, args ...interface{}) {
	l.log(LevelInfo, component, message, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(component, message string, args ...interface{}) {
	l.log(LevelWarn, component, message, args...)
}

// Error logs an error message
func (l *Logger) Error(component, message string, args ...interface{}) {
	l.log(LevelError, component, message, args...)
}

// Fatal logs an error message and exits
func (l *Logger) Fatal(component, message string, args ...interface{}) {
	l.log(LevelError, component, message, args...)
	_ = l.Sync()
	os.Exit(1)
}
