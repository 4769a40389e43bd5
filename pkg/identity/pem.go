package identity

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// ParsePrivateKey parses ed25519 private key material.
//
// Accepted forms:
//   - 32 bytes: an ed25519 seed
//   - 64 bytes: a full ed25519 private key
//   - a PEM "PRIVATE KEY" block containing a PKCS#8 ed25519 key
func ParsePrivateKey(data []byte) (ed25519.PrivateKey, error) {
	switch len(data) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(data), nil
	case ed25519.PrivateKeySize:
		// Sanity check: the embedded public half must match the seed.
		key := ed25519.PrivateKey(data)
		derived := ed25519.NewKeyFromSeed(key.Seed())
		if !key.Equal(derived) {
			return nil, fmt.Errorf("%w: inconsistent private key", ErrInvalidKey)
		}
		return key, nil
	}

	if block, _ := pem.Decode(data); block != nil && block.Type == "PRIVATE KEY" {
		parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		key, ok := parsed.(ed25519.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%w: not an ed25519 key", ErrInvalidKey)
		}
		return key, nil
	}

	return nil, fmt.Errorf("%w: %d bytes is not a seed, private key or PEM block", ErrInvalidKey, len(data))
}

// EncodePrivateKeyPEM encodes an ed25519 private key as a PKCS#8 PEM
// block, the form ParsePrivateKey accepts from key files.
func EncodePrivateKeyPEM(key ed25519.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{
		Type:  "PRIVATE KEY",
		Bytes: der,
	}), nil
}
