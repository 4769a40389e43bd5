package wire

import (
	"fmt"

	"github.com/goccy/go-json"
)

// DecodeError describes an inbound frame that could not be decoded.
// The receiver drops such frames; they are never fatal.
type DecodeError struct {
	Reason string
	Err    error
}

// Error returns the decode failure description.
func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode failed: %s", e.Reason)
}

// Unwrap returns the underlying cause, if any.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Encode serializes an envelope to its JSON wire form.
func Encode(env *Envelope) ([]byte, error) {
	if !env.Type.IsValid() {
		return nil, fmt.Errorf("invalid message type: %q", env.Type)
	}
	return json.Marshal(env)
}

// Decode parses a wire frame into an Envelope.
//
// Unknown additional fields are ignored for forward compatibility, but
// an unknown "type" tag is rejected with a *DecodeError, as is any
// frame that is not valid JSON.
func Decode(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &DecodeError{Reason: "invalid JSON", Err: err}
	}
	if !env.Type.IsValid() {
		return nil, &DecodeError{Reason: fmt.Sprintf("unknown message type %q", env.Type)}
	}
	return &env, nil
}
