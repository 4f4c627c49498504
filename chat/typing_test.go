package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypingSetAndClear(t *testing.T) {
	hub := NewHub()
	typing := NewTypingTracker(hub)

	sender := newTestClient("sender")
	watcher := newTestClient("watcher")
	hub.Register(sender)
	hub.Register(watcher)

	typing.SetTyping("alice", sender)
	assert.True(t, typing.IsTyping("alice"))

	event := nextEvent(t, watcher)
	assert.Equal(t, "typing", event["type"])
	assert.Equal(t, "alice", event["username"])
	assert.Equal(t, true, event["isTyping"])
	assertNoEvent(t, sender)

	typing.ClearTyping("alice", sender)
	assert.False(t, typing.IsTyping("alice"))

	event = nextEvent(t, watcher)
	assert.Equal(t, false, event["isTyping"])
	assertNoEvent(t, sender)
}

func TestTypingRedundantNotificationsNotSuppressed(t *testing.T) {
	hub := NewHub()
	typing := NewTypingTracker(hub)

	watcher := newTestClient("watcher")
	hub.Register(watcher)

	// clients reset a local inactivity timer on every notification
	typing.SetTyping("alice", nil)
	typing.SetTyping("alice", nil)

	nextEvent(t, watcher)
	event := nextEvent(t, watcher)
	assert.Equal(t, true, event["isTyping"])
}

func TestTypingOnDisconnectDoesNotBroadcast(t *testing.T) {
	hub := NewHub()
	typing := NewTypingTracker(hub)

	watcher := newTestClient("watcher")
	hub.Register(watcher)

	typing.SetTyping("alice", nil)
	nextEvent(t, watcher)

	typing.OnDisconnect("alice")
	assert.False(t, typing.IsTyping("alice"))
	assertNoEvent(t, watcher)
}
