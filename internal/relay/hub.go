package relay

import "sync"

// Hub is the session registry: an explicit mapping from room name to the
// set of connections that joined it. Chat rooms are named by chat id,
// personal rooms by user id. The relay core needs exactly three things
// from it: join, leave and broadcast.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[string]map[*Client]struct{}
	joined   map[*Client]map[string]struct{}
	personal map[*Client]string // connection -> bound user id
}

func NewHub() *Hub {
	return &Hub{
		rooms:    make(map[string]map[*Client]struct{}),
		joined:   make(map[*Client]map[string]struct{}),
		personal: make(map[*Client]string),
	}
}

// Bind ties a connection to a user identity and joins its personal room.
// A later Bind for the same connection overwrites the previous binding,
// leaving the old personal room; this guards against duplicate setup
// events.
func (h *Hub) Bind(c *Client, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if prev, ok := h.personal[c]; ok && prev != userID {
		h.leaveLocked(c, prev)
	}
	h.personal[c] = userID
	h.joinLocked(c, userID)
}

// Join adds room membership. Joins are additive; nothing leaves a chat
// room before disconnect.
func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.joinLocked(c, room)
}

// Unregister drops every room membership of a connection.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room := range h.joined[c] {
		h.leaveLocked(c, room)
	}
	delete(h.joined, c)
	delete(h.personal, c)
}

// UserOf returns the user id a connection was bound to by setup.
func (h *Hub) UserOf(c *Client) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	id, ok := h.personal[c]
	return id, ok
}

// Broadcast sends data to every connection joined to room, excluding
// except when non-nil. Fire and forget: a slow or gone recipient is
// skipped, never retried.
func (h *Hub) Broadcast(room string, data []byte, except *Client) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for c := range h.rooms[room] {
		if c == except {
			continue
		}
		c.enqueue(data)
		n++
	}
	return n
}

func (h *Hub) joinLocked(c *Client, room string) {
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][c] = struct{}{}
	if h.joined[c] == nil {
		h.joined[c] = make(map[string]struct{})
	}
	h.joined[c][room] = struct{}{}
}

func (h *Hub) leaveLocked(c *Client, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	if set, ok := h.joined[c]; ok {
		delete(set, room)
	}
}
