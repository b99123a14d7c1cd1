package models

import "time"

// Message types supported by the chat.
const (
	TypeText    = "text"
	TypeImage   = "image"
	TypeSticker = "sticker"
)

type User struct {
	ID        string    `bson:"_id,omitempty"`
	Username  string    `bson:"username"`
	Email     string    `bson:"email"`
	Avatar    string    `bson:"avatar,omitempty"`
	Password  string    `bson:"password"` // bcrypt hash, never serialized to clients
	CreatedAt time.Time `bson:"created_at"`
}

type Chat struct {
	ID              string    `bson:"_id,omitempty"`
	ChatName        string    `bson:"chat_name,omitempty"`
	IsGroupChat     bool      `bson:"is_group_chat"`
	UserIDs         []string  `bson:"users"`
	GroupAdminID    string    `bson:"group_admin,omitempty"`
	LatestMessageID string    `bson:"latest_message,omitempty"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

// Message is immutable once created; CreatedAt is the sole ordering key
// within a chat.
type Message struct {
	ID        string    `bson:"_id,omitempty"`
	SenderID  string    `bson:"sender"`
	ChatID    string    `bson:"chat"`
	Type      string    `bson:"type"`
	Message   string    `bson:"message"`
	MediaURL  string    `bson:"media_url,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

// ValidType reports whether t is a known message type.
func ValidType(t string) bool {
	return t == TypeText || t == TypeImage || t == TypeSticker
}
