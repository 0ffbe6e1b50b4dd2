package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/entrhq/maestro/pkg/logging"
	"github.com/entrhq/maestro/pkg/types"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPongTimeout  = 60 * time.Second
	wsPingInterval = 54 * time.Second

	// wsSendBuffer bounds the per-connection outbound queue. A consumer
	// that falls this far behind starts losing frames; the next
	// sessions_init on reconnect makes it whole.
	wsSendBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(*http.Request) bool {
		// The server binds to loopback; origin checks add nothing there.
		return true
	},
}

// wsConn adapts one WebSocket connection to the coordinator's Subscriber
// interface. Send never blocks; frames beyond the buffer are dropped.
type wsConn struct {
	conn *websocket.Conn
	log  *logging.Logger
	send chan types.Message
	once sync.Once
	done chan struct{}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnf("websocket upgrade failed: %v", err)
		return
	}

	c := &wsConn{
		conn: conn,
		log:  s.log,
		send: make(chan types.Message, wsSendBuffer),
		done: make(chan struct{}),
	}
	s.log.Infof("feed subscriber connected: %s", r.RemoteAddr)

	go c.writePump()
	s.hub.Subscribe(c)
	s.readPump(c)
	s.hub.Unsubscribe(c)
	c.close()
}

// Send queues a frame for delivery. Called from the coordinator's broadcast
// path, which must never block on a slow client.
func (c *wsConn) Send(msg types.Message) {
	select {
	case c.send <- msg:
	case <-c.done:
	default:
		c.log.Warnf("feed subscriber lagging, dropping %s frame", msg.Type)
	}
}

func (c *wsConn) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// readPump consumes inbound frames. Surfaces may issue commands over the
// socket; anything else inbound is ignored. Returns when the peer goes away.
func (s *Server) readPump(c *wsConn) {
	c.conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
		return nil
	})

	for {
		var msg types.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debugf("websocket read error: %v", err)
			}
			return
		}
		if msg.Type != types.MessageControlCommand || msg.Command == nil {
			continue
		}
		if err := s.hub.ForwardCommand(context.Background(), *msg.Command); err != nil {
			s.log.Warnf("feed command %s failed: %v", msg.Command.Verb, err)
		}
	}
}

// writePump serializes all writes to the connection and keeps it alive with
// pings.
func (c *wsConn) writePump() {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}
