package chat

import "github.com/lumenchat/server/store"

// client -> hub event types
const (
	eventJoin       = "join"
	eventMessage    = "message"
	eventTyping     = "typing"
	eventStopTyping = "stopTyping"
)

// hub -> client event types
const (
	eventUserJoined  = "userJoined"
	eventUserLeft    = "userLeft"
	eventOnlineUsers = "onlineUsers"
	eventError       = "error"
)

// ClientEvent is the envelope for every inbound frame.
type ClientEvent struct {
	Type     string `json:"type"`
	Content  string `json:"content,omitempty"`
	Username string `json:"username,omitempty"`
}

// EventUser is the identity attached to presence notices.
type EventUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// PresenceEvent announces a user joining or leaving.
type PresenceEvent struct {
	Type string    `json:"type"`
	User EventUser `json:"user"`
}

// OnlineUsersEvent carries the refreshed roster after any presence change.
type OnlineUsersEvent struct {
	Type  string              `json:"type"`
	Users []*store.OnlineUser `json:"users"`
}

// MessageEvent carries a chat message enriched with its author.
type MessageEvent struct {
	Type    string                 `json:"type"`
	Message *store.MessageWithUser `json:"message"`
}

// TypingEvent signals a typing indicator change.
type TypingEvent struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

// ErrorEvent is sent to a single connection when one of its frames failed.
type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func newErrorEvent(message string) *ErrorEvent {
	return &ErrorEvent{Type: eventError, Message: message}
}
