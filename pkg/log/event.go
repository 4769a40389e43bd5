package log

import (
	"time"
)

// Event represents an SDK log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID uniquely identifies the socket session (UUID).
	// Empty for HTTP events.
	ConnectionID string `cbor:"2,keyasint,omitempty"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// DeviceID is the device identifier.
	DeviceID string `cbor:"5,keyasint,omitempty"`

	// RemoteAddr is the peer address or request URL.
	RemoteAddr string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"7,keyasint,omitempty"`  // Socket frames
	StateChange *StateChangeEvent `cbor:"8,keyasint,omitempty"`  // Connection state
	Request     *RequestEvent     `cbor:"9,keyasint,omitempty"`  // HTTP requests
	Error       *ErrorEventData   `cbor:"10,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryFrame indicates a socket frame was sent or received.
	CategoryFrame Category = 0
	// CategoryState indicates a connection state change.
	CategoryState Category = 1
	// CategoryRequest indicates an HTTP request.
	CategoryRequest Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryFrame:
		return "FRAME"
	case CategoryState:
		return "STATE"
	case CategoryRequest:
		return "REQUEST"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures a socket frame.
type FrameEvent struct {
	// Size is the frame size in bytes.
	Size int `cbor:"1,keyasint"`

	// MessageType is the envelope type tag, when the frame decoded.
	MessageType string `cbor:"2,keyasint,omitempty"`

	// CorrelationID is the envelope correlation ID, when present.
	CorrelationID string `cbor:"3,keyasint,omitempty"`
}

// StateChangeEvent captures a connection lifecycle change.
type StateChangeEvent struct {
	// OldState is the previous state (may be empty).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`
}

// RequestEvent captures an authenticated HTTP request.
type RequestEvent struct {
	// Method is the HTTP method.
	Method string `cbor:"1,keyasint"`

	// Path is the request path.
	Path string `cbor:"2,keyasint"`

	// StatusCode is the response status (0 if the request never
	// completed).
	StatusCode int `cbor:"3,keyasint,omitempty"`

	// Duration is the request round-trip time in nanoseconds.
	Duration time.Duration `cbor:"4,keyasint,omitempty"`
}

// ErrorEventData captures an error at any layer.
type ErrorEventData struct {
	// Message is the error text.
	Message string `cbor:"1,keyasint"`

	// Recovered indicates the error was handled locally (for example
	// a dropped malformed frame) rather than surfaced to the caller.
	Recovered bool `cbor:"2,keyasint,omitempty"`
}

// NewFrameEvent builds a frame event.
func NewFrameEvent(connID, deviceID string, dir Direction, frame FrameEvent) Event {
	return Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    dir,
		Category:     CategoryFrame,
		DeviceID:     deviceID,
		Frame:        &frame,
	}
}

// NewStateEvent builds a connection state change event.
func NewStateEvent(connID, deviceID, oldState, newState, reason string) Event {
	return Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Category:     CategoryState,
		DeviceID:     deviceID,
		StateChange: &StateChangeEvent{
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	}
}

// NewRequestEvent builds an HTTP request event.
func NewRequestEvent(deviceID string, req RequestEvent) Event {
	return Event{
		Timestamp: time.Now(),
		Direction: DirectionOut,
		Category:  CategoryRequest,
		DeviceID:  deviceID,
		Request:   &req,
	}
}

// NewErrorEvent builds an error event.
func NewErrorEvent(connID, deviceID string, err error, recovered bool) Event {
	return Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Category:     CategoryError,
		DeviceID:     deviceID,
		Error: &ErrorEventData{
			Message:   err.Error(),
			Recovered: recovered,
		},
	}
}
