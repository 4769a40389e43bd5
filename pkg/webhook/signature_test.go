package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignatureKnownVector(t *testing.T) {
	// Standard HMAC-SHA256 test vector.
	got := Signature("key", []byte("The quick brown fox jumps over the lazy dog"))
	assert.Equal(t, "f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8", got)
}

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"event":"alert","device_id":"device-abc"}`)
	sig := Signature("s3cret", payload)

	assert.True(t, VerifySignature("s3cret", payload, sig))
	assert.False(t, VerifySignature("wrong", payload, sig))
	assert.False(t, VerifySignature("s3cret", []byte(`tampered`), sig))
	assert.False(t, VerifySignature("s3cret", payload, "not hex"))
}

func TestSignatureDiffersPerSecret(t *testing.T) {
	payload := []byte("payload")
	assert.NotEqual(t, Signature("a", payload), Signature("b", payload))
}
