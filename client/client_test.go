package client

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chou1102/QuickChatWeb/internal/models"
	"github.com/Chou1102/QuickChatWeb/internal/relay"
)

func newAdapter() *Client {
	return New("ws://localhost/ws", models.UserView{ID: "u1", Username: "alice"})
}

func deliver(t *testing.T, c *Client, event string, payload any) {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	c.handleEvent(relay.Envelope{Event: event, Payload: b})
}

func incoming(id, chatID string) models.MessageView {
	return models.MessageView{
		ID:      id,
		Sender:  models.UserView{ID: "u2"},
		Chat:    models.ChatView{ID: chatID, Users: []models.UserView{{ID: "u1"}, {ID: "u2"}}},
		Type:    models.TypeText,
		Message: "hello",
	}
}

func TestMessageForOpenChatAppends(t *testing.T) {
	c := newAdapter()
	c.mu.Lock()
	c.openChat = "c1"
	c.mu.Unlock()

	deliver(t, c, relay.EventMessageReceived, incoming("m1", "c1"))
	deliver(t, c, relay.EventMessageReceived, incoming("m2", "c1"))

	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, "m2", msgs[1].ID)
	assert.Empty(t, c.Notifications())
}

func TestMessageForOtherChatBecomesNotification(t *testing.T) {
	c := newAdapter()
	c.mu.Lock()
	c.openChat = "c1"
	c.mu.Unlock()

	deliver(t, c, relay.EventMessageReceived, incoming("m1", "c2"))

	assert.Empty(t, c.Messages())
	notes := c.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, "m1", notes[0].ID)
}

func TestNotificationDedupByMessageID(t *testing.T) {
	c := newAdapter()

	deliver(t, c, relay.EventMessageReceived, incoming("m1", "c2"))
	deliver(t, c, relay.EventMessageReceived, incoming("m1", "c2"))

	assert.Len(t, c.Notifications(), 1)
}

func TestOpenChatClearsItsNotifications(t *testing.T) {
	c := newAdapter()
	deliver(t, c, relay.EventMessageReceived, incoming("m1", "c2"))
	deliver(t, c, relay.EventMessageReceived, incoming("m2", "c3"))

	err := c.OpenChat("c2")
	assert.ErrorIs(t, err, ErrNotConnected, "join-chat needs a live connection")

	notes := c.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, "m2", notes[0].ID, "only the opened chat's notifications clear")
}

// Typing is a boolean, not a counter: repeated typing events collapse.
func TestTypingToggle(t *testing.T) {
	c := newAdapter()
	assert.False(t, c.PeerTyping())

	deliver(t, c, relay.EventTyping, nil)
	deliver(t, c, relay.EventTyping, nil)
	assert.True(t, c.PeerTyping())

	deliver(t, c, relay.EventStopTyping, nil)
	assert.False(t, c.PeerTyping())
}

func TestConnectedEvent(t *testing.T) {
	c := newAdapter()
	c.mu.Lock()
	c.connectedCh = make(chan struct{})
	ch := c.connectedCh
	c.mu.Unlock()

	deliver(t, c, relay.EventConnected, nil)
	assert.True(t, c.Connected())

	select {
	case <-ch:
	default:
		t.Fatal("connected channel not closed")
	}

	// a duplicate connected event must not panic on the closed channel
	deliver(t, c, relay.EventConnected, nil)
}

func TestMalformedMessageIgnored(t *testing.T) {
	c := newAdapter()
	c.handleEvent(relay.Envelope{Event: relay.EventMessageReceived, Payload: []byte("{broken")})
	assert.Empty(t, c.Messages())
	assert.Empty(t, c.Notifications())
}
