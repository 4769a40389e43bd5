// Package connection provides the retry policy shared by the socket
// transport and any retrying caller.
//
// This package handles:
//   - Exponential backoff delays for reconnection attempts
//   - Jitter to prevent thundering herd
//   - A bounded retry loop for caller-driven reconnection
//
// # Backoff
//
// Delays double per attempt from the base delay up to the maximum:
//
//	delay = min(base * 2^attempt, max)
//
// The attempt exponent is clamped at 31 before shifting, so arbitrary
// attempt counts never overflow. On top of the capped delay a jitter
// term is added, uniformly sampled from [0%, 20%] of the capped value:
//
//	actual_delay = capped + random(0, capped * 0.2)
//
// The delay computation is pure and stateless; callers own the
// attempt counter. Retry wraps the whole loop for convenience.
package connection
