// Package logger is the logging facade used throughout go-maestro.
//
// Library code logs through the [Logger] interface so applications can plug in
// their own backend. The default implementation is backed by log/slog and
// writes JSON records; a human-friendly console handler is used when the ENV
// environment variable is "development" or when requested explicitly with
// [NewSlogWriter].
//
// Log Levels:
//
//   - DebugLevel: frames written to the controller and decoded replies.
//   - InfoLevel: connection lifecycle.
//   - WarnLevel: malformed or short replies.
//   - ErrorLevel: transport failures.
//   - FatalLevel: unrecoverable errors; the process exits.
package logger

// Level indicates the logging severity level.
type Level = int8

const (
	// DebugLevel logs are voluminous and usually disabled in production.
	DebugLevel Level = iota - 1
	// InfoLevel is the default logging priority.
	InfoLevel
	// WarnLevel logs are more important than Info, but don't need individual
	// human review.
	WarnLevel
	// ErrorLevel logs are high-priority.
	ErrorLevel
	// FatalLevel logs a message, then calls os.Exit(1).
	FatalLevel
)

// Logger defines a common interface for structured, leveled logging.
type Logger interface {
	// Debug logs a message at DebugLevel with optional key-value pairs.
	Debug(msg string, keysAndValues ...any)
	// Info logs a message at InfoLevel with optional key-value pairs.
	Info(msg string, keysAndValues ...any)
	// Warn logs a message at WarnLevel with optional key-value pairs.
	Warn(msg string, keysAndValues ...any)
	// Error logs a message at ErrorLevel with optional key-value pairs.
	Error(msg string, keysAndValues ...any)
	// Fatal logs a message at FatalLevel and then calls os.Exit(1).
	Fatal(msg string, keysAndValues ...any)
	// With returns a child logger carrying the given key-value pairs.
	// The parent is not affected.
	With(keyValues ...any) Logger
	// Level returns the minimum enabled level.
	Level() Level
	// SetLevel sets the minimum enabled level.
	SetLevel(level Level)
}
