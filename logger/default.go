package logger

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// holder keeps the interface value behind an atomic pointer.
type holder struct{ Logger }

var defLogger atomic.Pointer[holder]

func init() {
	defLogger.Store(&holder{NewSlog(InfoLevel, false)})
}

// GetLogger returns the package default logger.
func GetLogger() Logger {
	return defLogger.Load().Logger
}

// SetLogger replaces the package default logger. A nil l is ignored.
// Components created before the call keep the logger they were given.
func SetLogger(l Logger) {
	if l != nil {
		defLogger.Store(&holder{l})
	}
}

func Debug(msg string, keysAndValues ...any) { GetLogger().Debug(msg, keysAndValues...) }

func Info(msg string, keysAndValues ...any) { GetLogger().Info(msg, keysAndValues...) }

func Warn(msg string, keysAndValues ...any) { GetLogger().Warn(msg, keysAndValues...) }

func Error(msg string, keysAndValues ...any) { GetLogger().Error(msg, keysAndValues...) }

func Fatal(msg string, keysAndValues ...any) { GetLogger().Fatal(msg, keysAndValues...) }

// SetLevel sets the level of the default logger.
func SetLevel(level Level) { GetLogger().SetLevel(level) }

// With returns a child of the default logger.
func With(keyValues ...any) Logger { return GetLogger().With(keyValues...) }

// ParseLevel converts a level name such as "debug" or "WARN". The empty string
// is InfoLevel.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return DebugLevel, nil
	case "", "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "fatal":
		return FatalLevel, nil
	default:
		return InfoLevel, fmt.Errorf("logger: unknown level %q", name)
	}
}
