// Package log provides structured SDK event logging.
//
// This package defines the Logger interface and Event types for
// capturing SDK-level events: socket frames, connection state changes,
// HTTP requests and recovered errors. It is separate from operational
// logging - the event trace is machine-readable and complete enough to
// reconstruct a session for debugging.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	opts.Logger = log.NewSlogAdapter(slog.Default())
//
//	// Or via logrus
//	opts.Logger = log.NewLogrusAdapter(logrus.StandardLogger())
//
//	// For production: write to binary file
//	opts.Logger, _ = log.NewFileLogger("/var/log/fleetdash/device.flog")
//
//	// Both: use MultiLogger
//	opts.Logger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with integer keys.
// Reader streams them back, optionally filtered.
package log
