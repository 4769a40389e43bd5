package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultHandshakeTimeout bounds the WebSocket opening handshake.
const DefaultHandshakeTimeout = 10 * time.Second

// WSDialer dials WebSocket connections to the dashboard service.
type WSDialer struct {
	// HandshakeTimeout bounds the opening handshake
	// (default: DefaultHandshakeTimeout).
	HandshakeTimeout time.Duration

	// TLSConfig optionally overrides the TLS client configuration.
	TLSConfig *tls.Config

	// Header is sent with the handshake request, if set.
	Header http.Header
}

// Dial opens a WebSocket connection to the given URL. The handshake
// fails fast; retrying is the caller's concern.
func (d *WSDialer) Dial(ctx context.Context, url string) (Conn, error) {
	timeout := d.HandshakeTimeout
	if timeout == 0 {
		timeout = DefaultHandshakeTimeout
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: timeout,
		TLSClientConfig:  d.TLSConfig,
	}

	ws, resp, err := dialer.DialContext(ctx, url, d.Header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket handshake failed (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	return &wsConn{ws: ws}, nil
}

// wsConn adapts a gorilla websocket connection to the Conn interface.
// Frames are sent as text messages carrying JSON envelopes.
type wsConn struct {
	ws *websocket.Conn
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("websocket read: %w", err)
	}
	return data, nil
}

func (c *wsConn) WriteMessage(data []byte) error {
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("websocket write: %w", err)
	}
	return nil
}

func (c *wsConn) Close() error {
	return c.ws.Close()
}

// Compile-time interface satisfaction checks.
var (
	_ Dialer = (*WSDialer)(nil)
	_ Conn   = (*wsConn)(nil)
)
