// Package chat implements the real-time messaging hub: connection lifecycle,
// identity binding, presence and typing indicators, and best-effort broadcast
// of chat events to every live WebSocket connection.
package chat

import (
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/lumenchat/server/store"
)

// Chat wires the hub, trackers and router together and dispatches inbound
// frames to them.
type Chat struct {
	store    store.Store
	hub      *Hub
	presence *PresenceTracker
	typing   *TypingTracker
	router   *MessageRouter
}

// NewChat builds a chat service around the passed in store.
func NewChat(st store.Store) *Chat {
	hub := NewHub()
	return &Chat{
		store:    st,
		hub:      hub,
		presence: NewPresenceTracker(st, hub),
		typing:   NewTypingTracker(hub),
		router:   NewMessageRouter(st, hub),
	}
}

// Hub exposes the connection registry, mainly for tests and shutdown.
func (c *Chat) Hub() *Hub { return c.hub }

// Shutdown closes every live connection.
func (c *Chat) Shutdown() {
	c.hub.CloseAll()
}

// handleFrame decodes and dispatches one inbound frame. An undecodable frame
// gets an error event back and leaves the connection open. Unknown event types
// are ignored.
func (c *Chat) handleFrame(client *Client, raw []byte) {
	event := &ClientEvent{}
	if err := json.Unmarshal(raw, event); err != nil {
		logrus.WithFields(logrus.Fields{"comp": "chat", "conn_id": client.id}).WithError(err).Debug("undecodable frame")
		c.hub.Send(client, newErrorEvent("Invalid message format"))
		return
	}

	switch event.Type {
	case eventJoin:
		c.handleJoin(client, event.Username)
	case eventMessage:
		c.router.Submit(client, event.Content)
	case eventTyping:
		if identity, bound := c.hub.Identity(client); bound {
			c.typing.SetTyping(identity.Username, client)
		}
	case eventStopTyping:
		if identity, bound := c.hub.Identity(client); bound {
			c.typing.ClearTyping(identity.Username, client)
		}
	}
}

// handleJoin binds the connection to the user behind username and announces
// the arrival. Unknown usernames are ignored; the authentication endpoint is
// expected to have created the user before the socket joins.
func (c *Chat) handleJoin(client *Client, username string) {
	if username == "" {
		return
	}

	user, err := c.store.GetUserByUsername(username)
	if err != nil {
		log := logrus.WithFields(logrus.Fields{"comp": "chat", "conn_id": client.id, "username": username})
		if err == store.ErrUserNotFound {
			log.Debug("join for unknown username ignored")
		} else {
			log.WithError(err).Error("unable to look up joining user")
		}
		return
	}

	if err := c.hub.Bind(client, user.ID, user.Username); err != nil {
		if err == ErrAlreadyBound {
			c.hub.Send(client, newErrorEvent("Already joined"))
		}
		return
	}

	c.presence.OnJoin(user.ID, user.Username, client)
}

// handleDisconnect runs the departure logic for a closing connection. The
// unregister guard makes it a no-op on the second and later calls, so close
// and error firing for the same transport cannot double-announce a leave.
func (c *Chat) handleDisconnect(client *Client) {
	identity, bound, registered := c.hub.Unregister(client)
	if !registered || !bound {
		return
	}

	c.typing.OnDisconnect(identity.Username)
	c.presence.OnLeave(identity.UserID, identity.Username)
}
