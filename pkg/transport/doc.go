// Package transport maintains the persistent WebSocket connection to
// the dashboard service.
//
// A Client owns at most one live session at a time. Connect embeds a
// fresh auth token and the device ID in the socket URL, dials, and
// splits the connection into exactly two workers:
//
//   - the sender drains a FIFO queue of outbound frames and owns the
//     write side exclusively
//   - the receiver decodes inbound frames, auto-acknowledges commands
//     and owns the read side exclusively
//
// The two workers share a single connected flag under a lock. The
// first I/O failure on either side flips the flag false exactly once;
// a session is never resurrected. Reconnection is caller-driven via
// ReconnectWithBackoff, which is a plain connect loop wrapped in the
// backoff policy from pkg/connection.
//
// Worker failures never panic and never surface synchronously; they
// are observable through IsConnected and the event log.
package transport
