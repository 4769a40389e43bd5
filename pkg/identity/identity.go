package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
)

// Identity errors.
var (
	ErrInvalidKey    = errors.New("invalid signing key material")
	ErrInvalidBase64 = errors.New("invalid base64 encoding for private key")
	ErrReadKeyFile   = errors.New("failed to read private key file")
)

// Config selects the key source and device identifier for an Identity.
// Exactly one key source is consulted, in priority order:
// KeyFile, then KeyBase64, then fresh generation.
type Config struct {
	// KeyFile is the path to a private key file (raw seed, raw private
	// key, or PEM-encoded PKCS#8).
	KeyFile string

	// KeyBase64 is the private key as a base64 string, as an
	// alternative to a key file.
	KeyBase64 string

	// DeviceID is the device identifier. Generated if empty.
	DeviceID string
}

// Identity holds the device's ed25519 signing key and device identifier.
// The private key never leaves the Identity. An Identity is immutable
// after construction and safe for concurrent use.
type Identity struct {
	key      ed25519.PrivateKey
	deviceID string
}

// New creates an Identity from the given configuration.
//
// Key material from KeyFile wins over KeyBase64, which wins over
// generating a fresh key pair from crypto/rand. Returns ErrInvalidKey
// if the provided bytes cannot be parsed as an ed25519 signing key.
func New(cfg Config) (*Identity, error) {
	var key ed25519.PrivateKey
	var err error

	switch {
	case cfg.KeyFile != "":
		data, readErr := os.ReadFile(cfg.KeyFile)
		if readErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrReadKeyFile, readErr)
		}
		key, err = ParsePrivateKey(data)
		if err != nil {
			return nil, err
		}

	case cfg.KeyBase64 != "":
		data, decErr := base64.StdEncoding.DecodeString(cfg.KeyBase64)
		if decErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBase64, decErr)
		}
		key, err = ParsePrivateKey(data)
		if err != nil {
			return nil, err
		}

	default:
		_, key, err = ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to generate signing key: %w", err)
		}
	}

	deviceID := cfg.DeviceID
	if deviceID == "" {
		deviceID, err = GenerateDeviceID()
		if err != nil {
			return nil, err
		}
	}

	return &Identity{key: key, deviceID: deviceID}, nil
}

// DeviceID returns the device identifier.
func (id *Identity) DeviceID() string {
	return id.deviceID
}

// PublicKey returns the device's public verifying key.
func (id *Identity) PublicKey() ed25519.PublicKey {
	return id.key.Public().(ed25519.PublicKey)
}

// PublicKeyBase64 returns the public key as a base64 string, the form
// the dashboard service stores for signature verification.
func (id *Identity) PublicKeyBase64() string {
	return base64.StdEncoding.EncodeToString(id.PublicKey())
}

// Sign signs a message with the device's private key.
func (id *Identity) Sign(message []byte) []byte {
	return ed25519.Sign(id.key, message)
}

// Verify checks a signature against this identity's public key.
// Intended for local self-checks; the dashboard service performs its
// own verification.
func (id *Identity) Verify(message, signature []byte) bool {
	return ed25519.Verify(id.PublicKey(), message, signature)
}

// GenerateDeviceID generates a random device identifier of the form
// "device-<base64 of 16 random bytes>". The value is independent of
// any key material.
func GenerateDeviceID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate device ID: %w", err)
	}
	return "device-" + base64.StdEncoding.EncodeToString(buf), nil
}
