package surface

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/entrhq/maestro/pkg/logging"
	"github.com/entrhq/maestro/pkg/types"
)

const (
	reconnectMinDelay = time.Second
	reconnectMaxDelay = 30 * time.Second
	clientSendBuffer  = 16
)

// Client maintains the WebSocket connection to the daemon's feed. It
// reconnects with backoff on any failure; the sessions_init frame the
// daemon sends on connect resynchronizes the mirror each time.
type Client struct {
	url     string
	handler func(types.Message)
	log     *logging.Logger

	send chan types.Command

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewClient creates a feed client for the daemon at addr (host:port).
// handler receives every inbound frame; it must not block.
func NewClient(addr string, handler func(types.Message), log *logging.Logger) *Client {
	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}
	return &Client{
		url:     u.String(),
		handler: handler,
		log:     log,
		send:    make(chan types.Command, clientSendBuffer),
	}
}

// Send queues a command for delivery. Commands issued while disconnected
// are dropped once the buffer fills; the surface reflects daemon state, so
// a lost command simply never takes effect.
func (c *Client) Send(cmd types.Command) {
	select {
	case c.send <- cmd:
	default:
		c.log.Warnf("command buffer full, dropping %s", cmd.Verb)
	}
}

// Run connects and serves until ctx is cancelled. It blocks; run it in a
// goroutine.
func (c *Client) Run(ctx context.Context) {
	delay := reconnectMinDelay
	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
		if err != nil {
			c.log.Debugf("feed dial failed: %v, retrying in %s", err, delay)
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			delay *= 2
			if delay > reconnectMaxDelay {
				delay = reconnectMaxDelay
			}
			continue
		}

		c.log.Infof("feed connected: %s", c.url)
		delay = reconnectMinDelay

		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()

		done := make(chan struct{})
		go c.writeLoop(ctx, conn, done)
		c.readLoop(conn)
		close(done)

		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		conn.Close()
	}
}

// readLoop delivers inbound frames to the handler until the connection
// breaks.
func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		var msg types.Message
		if err := conn.ReadJSON(&msg); err != nil {
			c.log.Debugf("feed read error: %v", err)
			return
		}
		c.handler(msg)
	}
}

// writeLoop drains queued commands onto the connection.
func (c *Client) writeLoop(ctx context.Context, conn *websocket.Conn, done chan struct{}) {
	for {
		select {
		case cmd := <-c.send:
			msg := types.NewControlCommandMessage(cmd)
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(msg); err != nil {
				c.log.Debugf("feed write error: %v", err)
				return
			}
		case <-done:
			return
		case <-ctx.Done():
			conn.Close()
			return
		}
	}
}
