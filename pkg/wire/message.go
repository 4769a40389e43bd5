package wire

import (
	"time"

	"github.com/google/uuid"
)

// MessageType is the envelope discriminant.
type MessageType string

// Envelope type tags. The string values are fixed by the wire format.
const (
	// TypeData is a device data report.
	TypeData MessageType = "data"

	// TypeStatus is a device status update.
	TypeStatus MessageType = "status"

	// TypeCommand is a command from the dashboard to the device.
	TypeCommand MessageType = "command"

	// TypeAck acknowledges a previously received command.
	TypeAck MessageType = "ack"
)

// IsValid reports whether the message type is a known tag.
func (t MessageType) IsValid() bool {
	switch t {
	case TypeData, TypeStatus, TypeCommand, TypeAck:
		return true
	default:
		return false
	}
}

// String returns the wire tag.
func (t MessageType) String() string {
	return string(t)
}

// Envelope is the canonical message unit exchanged over the
// persistent connection.
type Envelope struct {
	// Type is the message discriminant.
	Type MessageType `json:"type"`

	// DeviceID names the device this message concerns.
	DeviceID string `json:"device_id"`

	// Payload is an arbitrary structured value.
	Payload any `json:"payload"`

	// ID is the correlation identifier. An acknowledgement carries the
	// ID of the command it acknowledges; locally synthesized data and
	// status messages carry a freshly generated ID.
	ID string `json:"id,omitempty"`

	// Timestamp is the creation time in unix seconds.
	Timestamp int64 `json:"timestamp"`
}

// NewData creates a data envelope with a fresh correlation ID and the
// current timestamp.
func NewData(deviceID string, payload any) *Envelope {
	return newOutbound(TypeData, deviceID, payload)
}

// NewStatus creates a status envelope with a fresh correlation ID and
// the current timestamp.
func NewStatus(deviceID string, payload any) *Envelope {
	return newOutbound(TypeStatus, deviceID, payload)
}

// NewAck creates an acknowledgement for the command with the given
// correlation ID.
func NewAck(deviceID, correlationID string) *Envelope {
	return &Envelope{
		Type:      TypeAck,
		DeviceID:  deviceID,
		Payload:   map[string]string{"status": "received"},
		ID:        correlationID,
		Timestamp: time.Now().Unix(),
	}
}

func newOutbound(t MessageType, deviceID string, payload any) *Envelope {
	return &Envelope{
		Type:      t,
		DeviceID:  deviceID,
		Payload:   payload,
		ID:        uuid.NewString(),
		Timestamp: time.Now().Unix(),
	}
}
