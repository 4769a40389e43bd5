package transport

import (
	"context"

	"github.com/fleetdash/fleetdash-go/pkg/wire"
)

// Conn is a duplex frame transport. Implementations carry one JSON
// envelope per frame.
//
// ReadMessage is called only by the receiver worker and WriteMessage
// only by the sender worker; implementations do not need to support
// concurrent reads or writes, but Close may be called from any
// goroutine.
type Conn interface {
	// ReadMessage blocks until the next inbound frame arrives.
	ReadMessage() ([]byte, error)

	// WriteMessage writes one outbound frame.
	WriteMessage(data []byte) error

	// Close closes the underlying connection, unblocking any pending
	// read or write.
	Close() error
}

// Dialer opens duplex connections to the dashboard service.
// The URL already carries the auth token and device ID parameters.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// Handler observes inbound envelopes. Optional; commands are
// acknowledged by the receiver worker whether or not a handler is
// set.
type Handler interface {
	// OnMessage is called for every successfully decoded inbound
	// envelope, in arrival order, from the receiver worker. It must
	// not block for long.
	OnMessage(env *wire.Envelope)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(env *wire.Envelope)

// OnMessage calls the function.
func (f HandlerFunc) OnMessage(env *wire.Envelope) {
	f(env)
}
