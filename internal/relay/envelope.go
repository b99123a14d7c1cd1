package relay

import "encoding/json"

// Inbound event names.
const (
	EventSetup      = "setup"
	EventJoinChat   = "join-chat"
	EventTyping     = "typing"
	EventStopTyping = "stop-typing"
	EventNewMessage = "new-message"
)

// Outbound event names.
const (
	EventConnected       = "connected"
	EventMessageReceived = "message-received"
)

// Envelope is the wire format for relay events in both directions.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func marshal(event string, payload json.RawMessage) []byte {
	b, _ := json.Marshal(Envelope{Event: event, Payload: payload})
	return b
}

// setupPayload carries the user identity; extra user fields are ignored.
type setupPayload struct {
	ID string `json:"_id"`
}
