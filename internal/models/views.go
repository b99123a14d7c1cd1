package models

import "time"

// Wire views. A hydrated MessageView expands sender and chat to full
// objects, and chat.users to user objects, because the relay fan-out
// addresses personal rooms by user id. Field names follow the client
// wire format.

type UserView struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

type ChatView struct {
	ID            string       `json:"_id"`
	ChatName      string       `json:"chatName,omitempty"`
	IsGroupChat   bool         `json:"isGroupChat"`
	Users         []UserView   `json:"users"`
	GroupAdmin    *UserView    `json:"groupAdmin,omitempty"`
	LatestMessage *MessageView `json:"latestMessage,omitempty"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

type MessageView struct {
	ID        string    `json:"_id"`
	Sender    UserView  `json:"sender"`
	Chat      ChatView  `json:"chat"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	MediaURL  string    `json:"mediaUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ViewOf converts a stored user to its wire shape.
func ViewOf(u *User) UserView {
	return UserView{ID: u.ID, Username: u.Username, Email: u.Email, Avatar: u.Avatar}
}
