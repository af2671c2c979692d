package logger

import "sync"

// Logger provides structured logging with levels

type Logger struct {
	MinLevel LogLevel
	mu       sync.Mutex
}

// LogLevel represents the severity of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// New builds a logger from a level name, defaulting to info for unknown
// names.
func New(level string) *Logger {
	l := &Logger{MinLevel: LevelInfo}
	switch level {
	case "debug":
		l.MinLevel = LevelDebug
	case "info":
		l.MinLevel = LevelInfo
	case "warn":
		l.MinLevel = LevelWarn
	case "error":
		l.MinLevel = LevelError
	}
	return l
}
