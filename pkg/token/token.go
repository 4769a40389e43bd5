// Package token issues and verifies the signed, time-bounded
// authentication tokens devices present to the dashboard service.
//
// Wire format:
//
//	base64( payloadJSON + "." + base64(signature) )
//
// where payloadJSON is {"device_id": ..., "exp": ..., "iat": ...} and
// the signature is computed over those exact payload bytes. The double
// encoding is part of the wire contract: receivers reverse the outer
// base64, split on the last ".", reverse the inner base64 and verify
// the signature before trusting exp/iat.
package token

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/fleetdash/fleetdash-go/pkg/identity"
)

// DefaultTTL is the token lifetime used for API requests.
const DefaultTTL = 300 * time.Second

// Token errors.
var (
	ErrMalformedToken  = errors.New("malformed token")
	ErrBadSignature    = errors.New("token signature verification failed")
	ErrInvalidLifetime = errors.New("token lifetime must be positive")
)

// Claims is the token payload. Field order is the canonical
// serialization order; the signature covers these exact bytes.
type Claims struct {
	DeviceID string `json:"device_id"`
	Exp      int64  `json:"exp"`
	Iat      int64  `json:"iat"`
}

// Issuer builds authentication tokens for a device identity.
type Issuer struct {
	identity *identity.Identity
	now      func() time.Time
}

// NewIssuer creates a token issuer for the given identity.
func NewIssuer(id *identity.Identity) *Issuer {
	return &Issuer{identity: id, now: time.Now}
}

// Issue creates a signed token valid for the given lifetime from now.
// The issuer performs no expiry validation of its own; that is the
// receiving service's responsibility.
func (i *Issuer) Issue(ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", ErrInvalidLifetime
	}

	now := i.now().Unix()
	claims := Claims{
		DeviceID: i.identity.DeviceID(),
		Exp:      now + int64(ttl/time.Second),
		Iat:      now,
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to serialize token payload: %w", err)
	}

	signature := i.identity.Sign(payload)
	inner := string(payload) + "." + base64.StdEncoding.EncodeToString(signature)
	return base64.StdEncoding.EncodeToString([]byte(inner)), nil
}

// Decode reverses both encoding layers of a token without verifying
// the signature. It returns the claims, the raw signature, and the
// exact payload bytes the signature covers.
func Decode(tok string) (Claims, []byte, []byte, error) {
	var claims Claims

	inner, err := base64.StdEncoding.DecodeString(tok)
	if err != nil {
		return claims, nil, nil, fmt.Errorf("%w: outer encoding: %v", ErrMalformedToken, err)
	}

	// The payload may contain "." characters; the delimiter is the
	// last one, which base64 never produces.
	idx := strings.LastIndexByte(string(inner), '.')
	if idx < 0 {
		return claims, nil, nil, fmt.Errorf("%w: missing signature delimiter", ErrMalformedToken)
	}
	payload := inner[:idx]

	signature, err := base64.StdEncoding.DecodeString(string(inner[idx+1:]))
	if err != nil {
		return claims, nil, nil, fmt.Errorf("%w: inner encoding: %v", ErrMalformedToken, err)
	}

	if err := json.Unmarshal(payload, &claims); err != nil {
		return claims, nil, nil, fmt.Errorf("%w: payload: %v", ErrMalformedToken, err)
	}

	return claims, signature, payload, nil
}

// Verify decodes a token and verifies its signature against the given
// public key. It does not check exp/iat against the clock.
func Verify(tok string, pub ed25519.PublicKey) (Claims, error) {
	claims, signature, payload, err := Decode(tok)
	if err != nil {
		return claims, err
	}
	if !ed25519.Verify(pub, payload, signature) {
		return claims, ErrBadSignature
	}
	return claims, nil
}
