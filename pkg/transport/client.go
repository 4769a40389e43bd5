package transport

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fleetdash/fleetdash-go/pkg/connection"
	"github.com/fleetdash/fleetdash-go/pkg/identity"
	"github.com/fleetdash/fleetdash-go/pkg/log"
	"github.com/fleetdash/fleetdash-go/pkg/token"
	"github.com/fleetdash/fleetdash-go/pkg/wire"
)

// DefaultQueueSize is the outbound queue capacity per session.
const DefaultQueueSize = 100

// ErrAlreadyConnected indicates Connect was called while a live
// session exists.
var ErrAlreadyConnected = errors.New("already connected")

// Config configures the socket client.
type Config struct {
	// URL is the base socket URL, e.g. "wss://dash.example.com/ws".
	// Connect appends token and device_id query parameters.
	URL string

	// TokenTTL is the lifetime of connection auth tokens
	// (default: token.DefaultTTL).
	TokenTTL time.Duration

	// QueueSize is the outbound queue capacity
	// (default: DefaultQueueSize).
	QueueSize int

	// Dialer opens the duplex transport (default: a WSDialer).
	Dialer Dialer

	// Handler observes inbound envelopes. Optional.
	Handler Handler

	// Logger receives SDK events. Optional.
	Logger log.Logger

	// BackoffBase and BackoffMax bound the reconnection delays
	// (defaults: connection.DefaultBaseDelay, connection.DefaultMaxDelay).
	BackoffBase time.Duration
	BackoffMax  time.Duration
}

// Client maintains the persistent connection to the dashboard
// service. It is safe for concurrent use; any number of goroutines
// may send while the two connection workers run.
type Client struct {
	config   Config
	identity *identity.Identity
	issuer   *token.Issuer
	logger   log.Logger

	mu      sync.Mutex
	session *session
}

// NewClient creates a socket client for the given device identity.
// The client starts disconnected; call Connect.
func NewClient(cfg Config, id *identity.Identity) *Client {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = token.DefaultTTL
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.Dialer == nil {
		cfg.Dialer = &WSDialer{}
	}

	return &Client{
		config:   cfg,
		identity: id,
		issuer:   token.NewIssuer(id),
		logger:   log.OrNoop(cfg.Logger),
	}
}

// Connect establishes a new session: issues a fresh auth token,
// dials, and starts the sender and receiver workers. It fails fast if
// the handshake fails; wrap it in ReconnectWithBackoff to retry.
//
// Returns ErrAlreadyConnected while a live session exists.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.session != nil && c.session.isConnected() {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.mu.Unlock()

	target, err := c.connectURL()
	if err != nil {
		return err
	}

	conn, err := c.config.Dialer.Dial(ctx, target)
	if err != nil {
		return fmt.Errorf("connect failed: %w", err)
	}

	sess := newSession(uuid.NewString(), conn, c.config.QueueSize)

	c.mu.Lock()
	c.session = sess
	c.mu.Unlock()

	c.logger.Log(log.NewStateEvent(sess.id, c.identity.DeviceID(),
		"DISCONNECTED", "CONNECTED", ""))

	go c.sendLoop(sess)
	go c.recvLoop(sess)

	return nil
}

// connectURL builds the connection target: the base socket URL with a
// fresh token and the device ID as query parameters.
func (c *Client) connectURL() (string, error) {
	u, err := url.Parse(c.config.URL)
	if err != nil {
		return "", fmt.Errorf("invalid socket URL: %w", err)
	}

	tok, err := c.issuer.Issue(c.config.TokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to issue connection token: %w", err)
	}

	q := u.Query()
	q.Set("token", tok)
	q.Set("device_id", c.identity.DeviceID())
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// ReconnectWithBackoff repeatedly attempts Connect, sleeping for an
// exponentially increasing jittered delay between failures. It
// returns nil as soon as one attempt connects and
// connection.ErrRetryExhausted after maxAttempts failed attempts.
func (c *Client) ReconnectWithBackoff(ctx context.Context, maxAttempts int) error {
	return connection.RetryWithLimits(ctx, maxAttempts,
		c.config.BackoffBase, c.config.BackoffMax,
		func(ctx context.Context) error {
			return c.Connect(ctx)
		})
}

// IsConnected reports whether a live worker pair exists. The shared
// connection flag is the single source of truth; callers must check
// it (or handle ErrNotConnected) before relying on sends succeeding.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	sess := c.session
	c.mu.Unlock()
	return sess != nil && sess.isConnected()
}

// SendData enqueues a data envelope with a fresh correlation ID and
// the current timestamp. Returns connection.ErrNotConnected when no
// live session exists; frames are never buffered across reconnects.
func (c *Client) SendData(payload any) error {
	return c.send(wire.NewData(c.identity.DeviceID(), payload))
}

// SendStatus enqueues a status envelope with a fresh correlation ID
// and the current timestamp. Same failure behavior as SendData.
func (c *Client) SendStatus(payload any) error {
	return c.send(wire.NewStatus(c.identity.DeviceID(), payload))
}

// Close tears down the current session. The transport is closed and
// both workers observe the failure and terminate. Safe to call when
// already disconnected.
func (c *Client) Close() error {
	c.mu.Lock()
	sess := c.session
	c.mu.Unlock()

	if sess == nil {
		return nil
	}
	c.teardown(sess, "closed by caller")
	return nil
}

// send serializes an envelope and enqueues it for the sender worker.
func (c *Client) send(env *wire.Envelope) error {
	c.mu.Lock()
	sess := c.session
	c.mu.Unlock()

	if sess == nil || !sess.isConnected() {
		return connection.ErrNotConnected
	}

	data, err := wire.Encode(env)
	if err != nil {
		return fmt.Errorf("failed to encode envelope: %w", err)
	}
	return sess.enqueue(data)
}

// sendLoop is the sender worker. It owns the write side exclusively
// and drains the outbound queue in FIFO order. The first write
// failure kills the session; individual frames are not retried.
func (c *Client) sendLoop(sess *session) {
	for {
		select {
		case <-sess.done:
			return
		case data := <-sess.outbound:
			if err := sess.conn.WriteMessage(data); err != nil {
				c.fail(sess, fmt.Errorf("send: %w", err))
				return
			}
			c.logger.Log(log.NewFrameEvent(sess.id, c.identity.DeviceID(),
				log.DirectionOut, log.FrameEvent{Size: len(data)}))
		}
	}
}

// recvLoop is the receiver worker. It owns the read side exclusively
// and processes inbound frames strictly in arrival order. Malformed
// frames are logged and dropped; they never terminate the worker.
func (c *Client) recvLoop(sess *session) {
	for {
		data, err := sess.conn.ReadMessage()
		if err != nil {
			c.fail(sess, fmt.Errorf("receive: %w", err))
			return
		}

		env, err := wire.Decode(data)
		if err != nil {
			c.logger.Log(log.NewErrorEvent(sess.id, c.identity.DeviceID(), err, true))
			continue
		}

		c.logger.Log(log.NewFrameEvent(sess.id, c.identity.DeviceID(),
			log.DirectionIn, log.FrameEvent{
				Size:          len(data),
				MessageType:   env.Type.String(),
				CorrelationID: env.ID,
			}))

		// Acknowledge commands on the same queue callers use, after
		// the command is fully decoded, so an ack never precedes its
		// command's processing.
		if env.Type == wire.TypeCommand && env.ID != "" {
			c.acknowledge(sess, env.ID)
		}

		if c.config.Handler != nil {
			c.config.Handler.OnMessage(env)
		}
	}
}

// acknowledge enqueues exactly one ack for a received command.
func (c *Client) acknowledge(sess *session, correlationID string) {
	data, err := wire.Encode(wire.NewAck(c.identity.DeviceID(), correlationID))
	if err != nil {
		c.logger.Log(log.NewErrorEvent(sess.id, c.identity.DeviceID(), err, true))
		return
	}
	if err := sess.enqueue(data); err != nil {
		c.logger.Log(log.NewErrorEvent(sess.id, c.identity.DeviceID(),
			fmt.Errorf("failed to enqueue ack: %w", err), true))
	}
}

// fail records a worker I/O failure and tears the session down. Only
// the first failure per session does the work.
func (c *Client) fail(sess *session, err error) {
	if !sess.isConnected() {
		return // already torn down
	}
	c.logger.Log(log.NewErrorEvent(sess.id, c.identity.DeviceID(), err, false))
	c.teardown(sess, err.Error())
}

// teardown flips the connected flag exactly once and closes the
// transport so the peer worker unblocks and stops.
func (c *Client) teardown(sess *session, reason string) {
	if !sess.markDisconnected() {
		return
	}
	sess.conn.Close()
	c.logger.Log(log.NewStateEvent(sess.id, c.identity.DeviceID(),
		"CONNECTED", "DISCONNECTED", reason))
}
