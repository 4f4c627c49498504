package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenchat/server/store"
)

func newTestChat(t *testing.T, usernames ...string) (*Chat, store.Store) {
	t.Helper()

	st := store.NewMemoryStore()
	for _, username := range usernames {
		_, err := st.CreateUser(username, "hash")
		require.NoError(t, err)
	}
	return NewChat(st), st
}

// joinAs registers a connection and completes the join handshake, draining the
// presence events it produced on every live connection.
func joinAs(t *testing.T, c *Chat, username string) *Client {
	t.Helper()

	client := newTestClient("conn-" + username)
	c.hub.Register(client)
	c.handleFrame(client, []byte(`{"type":"join","username":"`+username+`"}`))

	_, bound := c.hub.Identity(client)
	require.True(t, bound, "join must bind the connection")

	c.hub.ForEachLive(func(peer *Client) {
		for len(peer.send) > 0 {
			<-peer.send
		}
	})
	return client
}

func TestChatMalformedFrame(t *testing.T) {
	c, _ := newTestChat(t)
	client := newTestClient("conn")
	c.hub.Register(client)

	c.handleFrame(client, []byte(`{not json`))

	event := nextEvent(t, client)
	assert.Equal(t, "error", event["type"])
	assert.Equal(t, "Invalid message format", event["message"])

	// connection stays open and usable
	assert.Equal(t, 1, c.hub.ClientCount())
}

func TestChatJoinUnknownUsernameIgnored(t *testing.T) {
	c, _ := newTestChat(t)
	client := newTestClient("conn")
	c.hub.Register(client)

	c.handleFrame(client, []byte(`{"type":"join","username":"nobody"}`))

	_, bound := c.hub.Identity(client)
	assert.False(t, bound)
	assertNoEvent(t, client)
}

func TestChatSecondJoinRejected(t *testing.T) {
	c, _ := newTestChat(t, "alice", "bob")
	client := joinAs(t, c, "alice")

	c.handleFrame(client, []byte(`{"type":"join","username":"bob"}`))

	event := nextEvent(t, client)
	assert.Equal(t, "error", event["type"])
	assert.Equal(t, "Already joined", event["message"])

	identity, _ := c.hub.Identity(client)
	assert.Equal(t, "alice", identity.Username, "first binding must survive")
}

func TestChatUnknownEventTypeIgnored(t *testing.T) {
	c, _ := newTestChat(t, "alice")
	client := joinAs(t, c, "alice")

	c.handleFrame(client, []byte(`{"type":"dance"}`))
	assertNoEvent(t, client)
}

func TestChatTypingScenario(t *testing.T) {
	c, _ := newTestChat(t, "alice", "bob")
	a := joinAs(t, c, "alice")
	b := joinAs(t, c, "bob")

	// A types: B is notified, A is not
	c.handleFrame(a, []byte(`{"type":"typing"}`))

	event := nextEvent(t, b)
	assert.Equal(t, "typing", event["type"])
	assert.Equal(t, "alice", event["username"])
	assert.Equal(t, true, event["isTyping"])
	assertNoEvent(t, a)

	// A sends a message: both receive it
	c.handleFrame(a, []byte(`{"type":"message","content":"hello"}`))

	for _, client := range []*Client{a, b} {
		event := nextEvent(t, client)
		assert.Equal(t, "message", event["type"])
		message := event["message"].(map[string]interface{})
		assert.Equal(t, "hello", message["content"])
		assert.Equal(t, "alice", message["user"].(map[string]interface{})["username"])
	}
}

func TestChatTypingBeforeJoinDropped(t *testing.T) {
	c, _ := newTestChat(t, "alice")
	watcher := joinAs(t, c, "alice")

	unbound := newTestClient("unbound")
	c.hub.Register(unbound)

	c.handleFrame(unbound, []byte(`{"type":"typing"}`))
	c.handleFrame(unbound, []byte(`{"type":"stopTyping"}`))

	assertNoEvent(t, watcher)
	assertNoEvent(t, unbound)
}

func TestChatDisconnectScenario(t *testing.T) {
	c, st := newTestChat(t, "alice", "bob")
	a := joinAs(t, c, "alice")
	b := joinAs(t, c, "bob")

	c.handleFrame(a, []byte(`{"type":"typing"}`))
	nextEvent(t, b) // typing notice

	c.handleDisconnect(a)

	// B sees the departure then the refreshed roster with only bob
	event := nextEvent(t, b)
	assert.Equal(t, "userLeft", event["type"])
	assert.Equal(t, "alice", event["user"].(map[string]interface{})["username"])

	event = nextEvent(t, b)
	assert.Equal(t, "onlineUsers", event["type"])
	users := event["users"].([]interface{})
	require.Len(t, users, 1)
	assert.Equal(t, "bob", users[0].(map[string]interface{})["username"])

	// alice is offline in the store and out of the typing set
	alice, err := st.GetUserByUsername("alice")
	require.NoError(t, err)
	assert.False(t, alice.IsOnline)
	assert.False(t, c.typing.IsTyping("alice"))
}

func TestChatDisconnectExactlyOnce(t *testing.T) {
	c, _ := newTestChat(t, "alice", "bob")
	a := joinAs(t, c, "alice")
	b := joinAs(t, c, "bob")

	// close and error firing for the same transport must announce one leave
	c.handleDisconnect(a)
	c.handleDisconnect(a)

	event := nextEvent(t, b)
	assert.Equal(t, "userLeft", event["type"])
	event = nextEvent(t, b)
	assert.Equal(t, "onlineUsers", event["type"])
	assertNoEvent(t, b)
}

func TestChatDisconnectUnboundQuiet(t *testing.T) {
	c, _ := newTestChat(t, "alice")
	watcher := joinAs(t, c, "alice")

	unbound := newTestClient("unbound")
	c.hub.Register(unbound)
	c.handleDisconnect(unbound)

	assertNoEvent(t, watcher)
}
