package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient() *Client {
	return newClient(nil, 8, 100)
}

func received(t *testing.T, c *Client) [][]byte {
	t.Helper()
	var out [][]byte
	for {
		select {
		case msg := <-c.send:
			out = append(out, msg)
		default:
			return out
		}
	}
}

func TestHubBroadcastExcludesSender(t *testing.T) {
	h := NewHub()
	a, b := testClient(), testClient()
	h.Join(a, "c1")
	h.Join(b, "c1")

	n := h.Broadcast("c1", []byte("x"), a)

	assert.Equal(t, 1, n)
	assert.Empty(t, received(t, a))
	require.Len(t, received(t, b), 1)
}

func TestHubBroadcastEmptyRoom(t *testing.T) {
	h := NewHub()
	assert.Equal(t, 0, h.Broadcast("nobody", []byte("x"), nil))
}

func TestHubBindJoinsPersonalRoom(t *testing.T) {
	h := NewHub()
	a := testClient()
	h.Bind(a, "u1")

	assert.Equal(t, 1, h.Broadcast("u1", []byte("x"), nil))
	id, ok := h.UserOf(a)
	require.True(t, ok)
	assert.Equal(t, "u1", id)
}

func TestHubRebindLeavesOldPersonalRoom(t *testing.T) {
	h := NewHub()
	a := testClient()
	h.Bind(a, "u1")
	h.Bind(a, "u2")

	assert.Equal(t, 0, h.Broadcast("u1", []byte("x"), nil))
	assert.Equal(t, 1, h.Broadcast("u2", []byte("x"), nil))
}

func TestHubRebindSameUserIdempotent(t *testing.T) {
	h := NewHub()
	a := testClient()
	h.Bind(a, "u1")
	h.Bind(a, "u1")

	assert.Equal(t, 1, h.Broadcast("u1", []byte("x"), nil))
}

func TestHubJoinsAreAdditive(t *testing.T) {
	h := NewHub()
	a := testClient()
	h.Bind(a, "u1")
	h.Join(a, "c1")
	h.Join(a, "c2")

	assert.Equal(t, 1, h.Broadcast("c1", []byte("x"), nil))
	assert.Equal(t, 1, h.Broadcast("c2", []byte("x"), nil))
	assert.Equal(t, 1, h.Broadcast("u1", []byte("x"), nil))
}

func TestHubUnregisterDropsAllMemberships(t *testing.T) {
	h := NewHub()
	a := testClient()
	h.Bind(a, "u1")
	h.Join(a, "c1")

	h.Unregister(a)

	assert.Equal(t, 0, h.Broadcast("u1", []byte("x"), nil))
	assert.Equal(t, 0, h.Broadcast("c1", []byte("x"), nil))
	_, ok := h.UserOf(a)
	assert.False(t, ok)
}

func TestHubSlowClientDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub()
	a := newClient(nil, 1, 100)
	h.Join(a, "c1")

	h.Broadcast("c1", []byte("1"), nil)
	h.Broadcast("c1", []byte("2"), nil) // buffer full, dropped

	msgs := received(t, a)
	require.Len(t, msgs, 1)
	assert.Equal(t, []byte("1"), msgs[0])
}
