package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdash/fleetdash-go/pkg/config"
	"github.com/fleetdash/fleetdash-go/pkg/identity"
)

func TestNewWiresComponents(t *testing.T) {
	cfg := config.New("https://dash.example.com/api/v1")

	c, err := New(cfg, Options{})
	require.NoError(t, err)
	defer c.Close()

	assert.NotNil(t, c.Identity())
	assert.NotNil(t, c.API())
	assert.NotNil(t, c.Devices())
	assert.NotNil(t, c.Webhooks())
	assert.Contains(t, c.DeviceID(), "device-")
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(&config.Config{}, Options{})
	assert.ErrorIs(t, err, config.ErrMissingAPIURL)
}

func TestNewRejectsBadKey(t *testing.T) {
	cfg := config.New("https://dash.example.com/api/v1").
		WithPrivateKeyBase64("!!!not base64!!!")

	_, err := New(cfg, Options{})
	assert.ErrorIs(t, err, identity.ErrInvalidBase64)
}

func TestNewUsesConfiguredDeviceID(t *testing.T) {
	cfg := config.New("https://dash.example.com/api/v1").
		WithDeviceID("device-fixed")

	c, err := New(cfg, Options{})
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, "device-fixed", c.DeviceID())
}

func TestSocketRequiresURL(t *testing.T) {
	c, err := New(config.New("https://dash.example.com/api/v1"), Options{})
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Socket()
	assert.ErrorIs(t, err, ErrNoSocketURL)
}

func TestSocketAvailableWithURL(t *testing.T) {
	cfg := config.New("https://dash.example.com/api/v1").
		WithSocketURL("wss://dash.example.com/ws")

	c, err := New(cfg, Options{})
	require.NoError(t, err)
	defer c.Close()

	sock, err := c.Socket()
	require.NoError(t, err)
	assert.NotNil(t, sock)
	assert.False(t, sock.IsConnected())
}

func TestCloseWithoutSocket(t *testing.T) {
	c, err := New(config.New("https://dash.example.com/api/v1"), Options{})
	require.NoError(t, err)
	assert.NoError(t, c.Close())
}
