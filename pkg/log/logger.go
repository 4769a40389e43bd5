package log

// Logger is the interface applications implement to receive SDK log
// events. Pass nil or NoopLogger to disable logging.
type Logger interface {
	// Log records an SDK event. Implementations must be thread-safe.
	// The event should be processed quickly or queued; blocking
	// affects the connection workers.
	Log(event Event)
}

// NoopLogger discards all events. Use when logging is disabled.
// NoopLogger is safe for concurrent use and usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// Compile-time interface satisfaction check.
var _ Logger = NoopLogger{}

// OrNoop returns the given logger, or NoopLogger when it is nil.
func OrNoop(l Logger) Logger {
	if l == nil {
		return NoopLogger{}
	}
	return l
}
