package relay

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/Chou1102/QuickChatWeb/internal/metrics"
	"github.com/Chou1102/QuickChatWeb/internal/models"
)

// Presence marks users online and offline. Best effort: the relay never
// fails an event on a presence error.
type Presence interface {
	Online(ctx context.Context, userID string) error
	Offline(ctx context.Context, userID string) error
}

type Options struct {
	SendBuffer      int
	EventsPerSec    int
	MaxMessageBytes int
	PingInterval    time.Duration
}

func (o *Options) withDefaults() {
	if o.SendBuffer == 0 {
		o.SendBuffer = 256
	}
	if o.EventsPerSec == 0 {
		o.EventsPerSec = 20
	}
	if o.MaxMessageBytes == 0 {
		o.MaxMessageBytes = 64 * 1024
	}
	if o.PingInterval == 0 {
		o.PingInterval = 30 * time.Second
	}
}

// Server is the relay protocol handler. It is stateless per event; all
// connection state lives in the hub, which is owned here and passed in
// at construction.
type Server struct {
	hub      *Hub
	presence Presence
	log      *zap.SugaredLogger

	sendBuffer      int
	eventsPerSec    int
	maxMessageBytes int
	pingInterval    time.Duration
}

func NewServer(hub *Hub, presence Presence, log *zap.SugaredLogger, opts Options) *Server {
	opts.withDefaults()
	return &Server{
		hub:             hub,
		presence:        presence,
		log:             log,
		sendBuffer:      opts.SendBuffer,
		eventsPerSec:    opts.EventsPerSec,
		maxMessageBytes: opts.MaxMessageBytes,
		pingInterval:    opts.PingInterval,
	}
}

// HandleWS returns the connection handler to mount behind the websocket
// upgrade. It blocks until the connection closes.
func (s *Server) HandleWS() func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		c := newClient(conn, s.sendBuffer, s.eventsPerSec)
		metrics.Connections.Inc()
		go c.writePump(s.pingInterval)
		c.readPump(s)
	}
}

// handleEvent processes one inbound event to completion. Events for a
// connection arrive sequentially from its read pump.
func (s *Server) handleEvent(c *Client, env Envelope) {
	metrics.EventsIn.WithLabelValues(env.Event).Inc()

	switch env.Event {
	case EventSetup:
		var p setupPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil || p.ID == "" {
			metrics.DroppedEvents.Inc()
			s.log.Warnw("setup without user id, dropped")
			return
		}
		s.hub.Bind(c, p.ID)
		c.enqueue(marshal(EventConnected, nil))
		s.markOnline(p.ID)

	case EventJoinChat:
		chatID, ok := stringPayload(env.Payload)
		if !ok {
			metrics.DroppedEvents.Inc()
			return
		}
		s.hub.Join(c, chatID)

	case EventTyping, EventStopTyping:
		chatID, ok := stringPayload(env.Payload)
		if !ok {
			metrics.DroppedEvents.Inc()
			return
		}
		s.hub.Broadcast(chatID, marshal(env.Event, nil), c)

	case EventNewMessage:
		s.fanOut(env.Payload)

	default:
		s.log.Debugw("unknown relay event", "event", env.Event)
	}
}

// fanOut emits message-received to every chat participant's personal room
// except the sender's. The payload must be a hydrated message: chat.users
// populated with user objects. Messages are already durably persisted via
// REST before reaching here, so a malformed or undeliverable event is
// logged and dropped, never an error.
func (s *Server) fanOut(payload json.RawMessage) {
	var msg models.MessageView
	if err := json.Unmarshal(payload, &msg); err != nil {
		metrics.DroppedEvents.Inc()
		s.log.Warnw("unparseable new-message, dropped", "err", err)
		return
	}
	if len(msg.Chat.Users) == 0 {
		metrics.DroppedEvents.Inc()
		s.log.Warnw("new-message without chat.users, dropped", "message", msg.ID)
		return
	}
	out := marshal(EventMessageReceived, payload)
	for _, u := range msg.Chat.Users {
		if u.ID == msg.Sender.ID {
			continue
		}
		s.hub.Broadcast(u.ID, out, nil)
		metrics.FanOut.Inc()
	}
}

func (s *Server) disconnect(c *Client) {
	if userID, ok := s.hub.UserOf(c); ok {
		s.markOffline(userID)
	}
	s.hub.Unregister(c)
	metrics.Connections.Dec()
}

func (s *Server) markOnline(userID string) {
	if s.presence == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.presence.Online(ctx, userID); err != nil {
		s.log.Debugw("presence online", "user", userID, "err", err)
	}
}

func (s *Server) markOffline(userID string) {
	if s.presence == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.presence.Offline(ctx, userID); err != nil {
		s.log.Debugw("presence offline", "user", userID, "err", err)
	}
}

// stringPayload accepts both a bare JSON string and {"chatId": "..."}.
func stringPayload(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return s, true
	}
	var obj struct {
		ChatID string `json:"chatId"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.ChatID != "" {
		return obj.ChatID, true
	}
	return "", false
}
