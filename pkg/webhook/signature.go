package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signature computes the webhook payload signature:
// hex(HMAC-SHA256(secret, payload)). Receivers recompute it over the
// raw request body and compare against the X-Webhook-Signature
// header.
func Signature(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a webhook payload signature in constant
// time.
func VerifySignature(secret string, payload []byte, signature string) bool {
	expected := Signature(secret, payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}
