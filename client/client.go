// Package client is the relay's browser-counterpart for Go programs: it
// keeps one long-lived websocket per session, joins rooms, and folds
// inbound relay events into local state (open-chat messages,
// notifications, a typing flag).
package client

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Chou1102/QuickChatWeb/internal/models"
	"github.com/Chou1102/QuickChatWeb/internal/relay"
)

// TypingQuiet is how long after the last keystroke the adapter emits
// stop-typing on its own. The server does no typing timeout tracking.
const TypingQuiet = 3 * time.Second

var ErrNotConnected = errors.New("not connected")

type Client struct {
	url  string
	user models.UserView

	mu            sync.Mutex
	conn          *websocket.Conn
	connected     bool
	openChat      string
	messages      []*models.MessageView
	notifications []*models.MessageView
	seen          map[string]struct{}
	peerTyping    bool
	typingActive  bool
	typingTimer   *time.Timer

	connectedCh chan struct{}
	done        chan struct{}
}

func New(url string, user models.UserView) *Client {
	return &Client{
		url:  url,
		user: user,
		seen: make(map[string]struct{}),
	}
}

// Connect dials the relay, replays setup, and (if a chat is open from a
// previous connection) re-joins it. The server keeps no room memory
// across reconnects, so the replay happens on every fresh connection.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = false
	c.connectedCh = make(chan struct{})
	c.done = make(chan struct{})
	openChat := c.openChat
	connectedCh := c.connectedCh
	c.mu.Unlock()

	go c.readLoop(conn)

	payload, _ := json.Marshal(c.user)
	if err := c.emit(relay.EventSetup, payload); err != nil {
		return err
	}
	select {
	case <-connectedCh:
	case <-ctx.Done():
		_ = conn.Close()
		return ctx.Err()
	}
	if openChat != "" {
		return c.emitString(relay.EventJoinChat, openChat)
	}
	return nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.connected = false
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

// OpenChat marks chatID as the currently open chat, joins its room for
// typing visibility, and clears its pending notifications.
func (c *Client) OpenChat(chatID string) error {
	c.mu.Lock()
	c.openChat = chatID
	c.messages = nil
	c.peerTyping = false
	kept := c.notifications[:0]
	for _, n := range c.notifications {
		if n.Chat.ID != chatID {
			kept = append(kept, n)
		} else {
			delete(c.seen, n.ID)
		}
	}
	c.notifications = kept
	c.mu.Unlock()
	return c.emitString(relay.EventJoinChat, chatID)
}

// SendMessage broadcasts an already-persisted, hydrated message over the
// relay and appends it locally.
func (c *Client) SendMessage(msg *models.MessageView) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.stopTypingNow()
	if err := c.emit(relay.EventNewMessage, payload); err != nil {
		return err
	}
	c.mu.Lock()
	if msg.Chat.ID == c.openChat {
		c.messages = append(c.messages, msg)
	}
	c.mu.Unlock()
	return nil
}

// TypingPing is called per keystroke. The first one emits typing; a quiet
// interval with no further pings emits stop-typing locally.
func (c *Client) TypingPing() error {
	c.mu.Lock()
	chatID := c.openChat
	first := !c.typingActive
	c.typingActive = true
	if c.typingTimer != nil {
		c.typingTimer.Stop()
	}
	c.typingTimer = time.AfterFunc(TypingQuiet, c.stopTypingNow)
	c.mu.Unlock()

	if chatID == "" {
		return nil
	}
	if first {
		return c.emitString(relay.EventTyping, chatID)
	}
	return nil
}

func (c *Client) stopTypingNow() {
	c.mu.Lock()
	active := c.typingActive
	chatID := c.openChat
	c.typingActive = false
	if c.typingTimer != nil {
		c.typingTimer.Stop()
		c.typingTimer = nil
	}
	c.mu.Unlock()
	if active && chatID != "" {
		_ = c.emitString(relay.EventStopTyping, chatID)
	}
}

// Messages returns a snapshot of the open chat's live messages, in
// received order.
func (c *Client) Messages() []*models.MessageView {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*models.MessageView, len(c.messages))
	copy(out, c.messages)
	return out
}

// Notifications returns messages received for chats that are not open.
func (c *Client) Notifications() []*models.MessageView {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*models.MessageView, len(c.notifications))
	copy(out, c.notifications)
	return out
}

func (c *Client) PeerTyping() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peerTyping
}

func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *Client) readLoop(conn *websocket.Conn) {
	defer func() {
		c.mu.Lock()
		if c.conn == conn {
			c.connected = false
		}
		c.mu.Unlock()
	}()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var env relay.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		c.handleEvent(env)
	}
}

func (c *Client) handleEvent(env relay.Envelope) {
	switch env.Event {
	case relay.EventConnected:
		c.mu.Lock()
		c.connected = true
		ch := c.connectedCh
		c.mu.Unlock()
		if ch != nil {
			select {
			case <-ch:
			default:
				close(ch)
			}
		}

	case relay.EventTyping:
		c.mu.Lock()
		c.peerTyping = true
		c.mu.Unlock()

	case relay.EventStopTyping:
		c.mu.Lock()
		c.peerTyping = false
		c.mu.Unlock()

	case relay.EventMessageReceived:
		var msg models.MessageView
		if err := json.Unmarshal(env.Payload, &msg); err != nil {
			return
		}
		c.mu.Lock()
		if c.openChat != "" && msg.Chat.ID == c.openChat {
			c.messages = append(c.messages, &msg)
		} else if _, dup := c.seen[msg.ID]; !dup {
			c.seen[msg.ID] = struct{}{}
			c.notifications = append(c.notifications, &msg)
		}
		c.mu.Unlock()
	}
}

func (c *Client) emit(event string, payload json.RawMessage) error {
	b, _ := json.Marshal(relay.Envelope{Event: event, Payload: payload})
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ErrNotConnected
	}
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

func (c *Client) emitString(event, s string) error {
	payload, _ := json.Marshal(s)
	return c.emit(event, payload)
}
