package token

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdash/fleetdash-go/pkg/identity"
)

func newIdentity(t *testing.T) *identity.Identity {
	t.Helper()
	id, err := identity.New(identity.Config{DeviceID: "device-test"})
	require.NoError(t, err)
	return id
}

func TestIssue_RoundTrip(t *testing.T) {
	id := newIdentity(t)
	issuer := NewIssuer(id)
	issuedAt := time.Unix(1700000000, 0)
	issuer.now = func() time.Time { return issuedAt }

	tok, err := issuer.Issue(300 * time.Second)
	require.NoError(t, err)

	claims, err := Verify(tok, id.PublicKey())
	require.NoError(t, err)

	assert.Equal(t, "device-test", claims.DeviceID)
	assert.Equal(t, issuedAt.Unix(), claims.Iat)
	assert.Equal(t, int64(300), claims.Exp-claims.Iat)
}

func TestIssue_DoubleEncoding(t *testing.T) {
	id := newIdentity(t)
	tok, err := NewIssuer(id).Issue(time.Minute)
	require.NoError(t, err)

	// Outer layer: base64 of payloadJSON "." base64(signature).
	inner, err := base64.StdEncoding.DecodeString(tok)
	require.NoError(t, err)

	idx := strings.LastIndexByte(string(inner), '.')
	require.Positive(t, idx)

	payload := inner[:idx]
	assert.True(t, strings.HasPrefix(string(payload), `{"device_id":`))

	sig, err := base64.StdEncoding.DecodeString(string(inner[idx+1:]))
	require.NoError(t, err)

	// The signature covers the exact payload bytes.
	assert.True(t, id.Verify(payload, sig))
}

func TestIssue_RejectsNonPositiveTTL(t *testing.T) {
	issuer := NewIssuer(newIdentity(t))
	_, err := issuer.Issue(0)
	assert.ErrorIs(t, err, ErrInvalidLifetime)
}

func TestVerify_RejectsTamperedPayload(t *testing.T) {
	id := newIdentity(t)
	tok, err := NewIssuer(id).Issue(time.Minute)
	require.NoError(t, err)

	inner, err := base64.StdEncoding.DecodeString(tok)
	require.NoError(t, err)

	// Extend the claimed expiry without re-signing.
	tampered := strings.Replace(string(inner), `"exp":`, `"exp":9`, 1)
	forged := base64.StdEncoding.EncodeToString([]byte(tampered))

	_, err = Verify(forged, id.PublicKey())
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerify_RejectsWrongKey(t *testing.T) {
	tok, err := NewIssuer(newIdentity(t)).Issue(time.Minute)
	require.NoError(t, err)

	other := newIdentity(t)
	_, err = Verify(tok, other.PublicKey())
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestDecode_MalformedTokens(t *testing.T) {
	cases := map[string]string{
		"not base64":       "!!!",
		"no delimiter":     base64.StdEncoding.EncodeToString([]byte(`{"device_id":"d"}`)),
		"bad inner base64": base64.StdEncoding.EncodeToString([]byte(`{"device_id":"d"}.!!!`)),
		"payload not JSON": base64.StdEncoding.EncodeToString([]byte(`nope.` + base64.StdEncoding.EncodeToString([]byte("sig")))),
	}

	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, _, err := Decode(tok)
			assert.ErrorIs(t, err, ErrMalformedToken)
		})
	}
}
