package transport

import (
	"sync"

	"github.com/fleetdash/fleetdash-go/pkg/connection"
)

// session is the state of one established connection: the transport,
// the outbound FIFO queue and the shared connected flag. A session is
// created by a successful connect and never resurrected; the flag
// flips true to false at most once.
type session struct {
	// id identifies this session in log events.
	id string

	conn     Conn
	outbound chan []byte

	// done is closed exactly once, when the flag flips false.
	done chan struct{}

	// mu guards connected. It is held only for flag reads and
	// writes, never across I/O.
	mu        sync.Mutex
	connected bool
}

func newSession(id string, conn Conn, queueSize int) *session {
	return &session{
		id:        id,
		conn:      conn,
		outbound:  make(chan []byte, queueSize),
		done:      make(chan struct{}),
		connected: true,
	}
}

// isConnected reads the shared flag.
func (s *session) isConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// markDisconnected flips the flag false. It returns true only for the
// caller that performed the transition, so teardown runs once even
// when both workers fail together.
func (s *session) markDisconnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return false
	}
	s.connected = false
	close(s.done)
	return true
}

// enqueue places a serialized frame on the outbound queue in FIFO
// order. Many callers may enqueue concurrently; only the sender
// worker dequeues. Fails once the session is dead so callers are
// never left blocking against a stopped sender.
func (s *session) enqueue(data []byte) error {
	select {
	case <-s.done:
		return connection.ErrNotConnected
	default:
	}

	select {
	case s.outbound <- data:
		return nil
	case <-s.done:
		return connection.ErrNotConnected
	}
}
