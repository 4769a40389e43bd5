// Package client is the top-level SDK entry point. It wires the
// device identity, token issuer, HTTP client and socket client
// together from one configuration.
//
// Typical use:
//
//	cfg := config.New("https://dash.example.com/api/v1").
//		WithSocketURL("wss://dash.example.com/ws").
//		WithPrivateKeyFile("/etc/fleetdash/device.key")
//
//	c, err := client.New(cfg, client.Options{})
//	if err != nil { ... }
//
//	sock, err := c.Socket()
//	if err != nil { ... }
//	if err := sock.Connect(ctx); err != nil { ... }
//	sock.SendData(map[string]any{"temperature": 21.5})
package client

import (
	"errors"

	"github.com/fleetdash/fleetdash-go/pkg/api"
	"github.com/fleetdash/fleetdash-go/pkg/config"
	"github.com/fleetdash/fleetdash-go/pkg/device"
	"github.com/fleetdash/fleetdash-go/pkg/identity"
	"github.com/fleetdash/fleetdash-go/pkg/log"
	"github.com/fleetdash/fleetdash-go/pkg/token"
	"github.com/fleetdash/fleetdash-go/pkg/transport"
	"github.com/fleetdash/fleetdash-go/pkg/webhook"
)

// ErrNoSocketURL indicates Socket was requested but the configuration
// has no WebSocket endpoint.
var ErrNoSocketURL = errors.New("no websocket_url configured")

// Options carries the pieces that are code, not configuration.
type Options struct {
	// Logger receives SDK events from all components. Optional.
	Logger log.Logger

	// Handler observes inbound socket envelopes. Optional.
	Handler transport.Handler

	// Dialer overrides the socket dialer, mainly for tests.
	Dialer transport.Dialer
}

// Client is the assembled SDK.
type Client struct {
	config   *config.Config
	identity *identity.Identity
	issuer   *token.Issuer
	api      *api.Client
	socket   *transport.Client
	devices  *device.Manager
	webhooks *webhook.Manager
}

// New builds a client from the configuration: the identity from the
// configured key source, a token issuer on top of it, the HTTP client
// and - when a socket URL is configured - the socket client.
func New(cfg *config.Config, opts Options) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	id, err := identity.New(identity.Config{
		KeyFile:   cfg.KeyFile,
		KeyBase64: cfg.KeyBase64,
		DeviceID:  cfg.DeviceID,
	})
	if err != nil {
		return nil, err
	}

	issuer := token.NewIssuer(id)
	apiClient := api.NewClient(api.Config{
		BaseURL: cfg.APIURL,
		Timeout: cfg.RequestTimeout,
		Logger:  opts.Logger,
	}, issuer, id.DeviceID())

	c := &Client{
		config:   cfg,
		identity: id,
		issuer:   issuer,
		api:      apiClient,
		devices:  device.NewManager(apiClient),
		webhooks: webhook.NewManager(apiClient),
	}

	if cfg.SocketURL != "" {
		c.socket = transport.NewClient(transport.Config{
			URL:     cfg.SocketURL,
			Dialer:  opts.Dialer,
			Handler: opts.Handler,
			Logger:  opts.Logger,
		}, id)
	}

	return c, nil
}

// Identity returns the device identity.
func (c *Client) Identity() *identity.Identity {
	return c.identity
}

// DeviceID returns the device identifier.
func (c *Client) DeviceID() string {
	return c.identity.DeviceID()
}

// API returns the authenticated HTTP client.
func (c *Client) API() *api.Client {
	return c.api
}

// Devices returns the device manager.
func (c *Client) Devices() *device.Manager {
	return c.devices
}

// Webhooks returns the webhook manager.
func (c *Client) Webhooks() *webhook.Manager {
	return c.webhooks
}

// Socket returns the socket client, or an error when no WebSocket
// endpoint is configured.
func (c *Client) Socket() (*transport.Client, error) {
	if c.socket == nil {
		return nil, ErrNoSocketURL
	}
	return c.socket, nil
}

// Close tears down the socket connection, if any.
func (c *Client) Close() error {
	if c.socket != nil {
		return c.socket.Close()
	}
	return nil
}
