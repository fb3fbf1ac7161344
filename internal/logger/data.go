package logger

import "go.uber.org/zap"

// Logger provides component-tagged logging with levels on top of zap.
type Logger struct {
	level zap.AtomicLevel
	sugar *zap.SugaredLogger
}

// LogLevel represents the severity of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)
