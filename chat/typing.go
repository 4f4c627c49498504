package chat

import "sync"

// TypingTracker tracks which usernames are currently typing. The set is not
// persisted and starts empty on every process start.
type TypingTracker struct {
	mu     sync.Mutex
	typing map[string]bool
	hub    *Hub
}

// NewTypingTracker returns a tracker announcing over hub.
func NewTypingTracker(hub *Hub) *TypingTracker {
	return &TypingTracker{typing: make(map[string]bool), hub: hub}
}

// SetTyping records username as typing and notifies everyone but the sender.
// Redundant notifications are sent on purpose: clients reset a local inactivity
// timer on every one.
func (t *TypingTracker) SetTyping(username string, sender *Client) {
	t.mu.Lock()
	t.typing[username] = true
	t.mu.Unlock()

	t.hub.Broadcast(&TypingEvent{Type: eventTyping, Username: username, IsTyping: true}, sender)
}

// ClearTyping removes username from the typing set and notifies everyone but
// the sender.
func (t *TypingTracker) ClearTyping(username string, sender *Client) {
	t.mu.Lock()
	delete(t.typing, username)
	t.mu.Unlock()

	t.hub.Broadcast(&TypingEvent{Type: eventTyping, Username: username, IsTyping: false}, sender)
}

// OnDisconnect drops username from the typing set without broadcasting; the
// departure events on the disconnect path are signal enough.
func (t *TypingTracker) OnDisconnect(username string) {
	t.mu.Lock()
	delete(t.typing, username)
	t.mu.Unlock()
}

// IsTyping reports whether username is currently in the typing set.
func (t *TypingTracker) IsTyping(username string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.typing[username]
}
