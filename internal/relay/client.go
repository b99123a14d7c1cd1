package relay

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/gofiber/websocket/v2"
	"golang.org/x/time/rate"
)

// Client wraps one websocket connection. The read pump dispatches inbound
// envelopes to the server's handler one at a time; the write pump drains
// the buffered send channel. A full send buffer drops the event rather
// than block the broadcaster.
type Client struct {
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter
	closed  int32
}

func newClient(conn *websocket.Conn, sendBuffer, eventsPerSec int) *Client {
	return &Client{
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		limiter: rate.NewLimiter(rate.Limit(eventsPerSec), eventsPerSec),
	}
}

func (c *Client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		// slow consumer, drop
	}
}

func (c *Client) readPump(s *Server) {
	defer func() {
		s.disconnect(c)
		c.close()
	}()
	c.conn.SetReadLimit(int64(s.maxMessageBytes))
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * s.pingInterval))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * s.pingInterval))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if !c.limiter.Allow() {
			continue
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		s.handleEvent(c, env)
	}
}

func (c *Client) writePump(pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(time.Second))
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := c.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second)); err != nil {
				return
			}
		}
	}
}

func (c *Client) close() {
	if atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		close(c.send)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	}
}
