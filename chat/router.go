package chat

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/lumenchat/server/store"
)

// MessageRouter validates and persists inbound chat messages and fans the
// enriched result out to every connection.
type MessageRouter struct {
	store store.Store
	hub   *Hub
}

// NewMessageRouter returns a router persisting through st and broadcasting
// over hub.
func NewMessageRouter(st store.Store, hub *Hub) *MessageRouter {
	return &MessageRouter{store: st, hub: hub}
}

// Submit handles one inbound chat message. Frames from unbound connections and
// messages that are empty after trimming are dropped without a reply. On
// success the message goes to every connection including the sender; clients
// reconcile their own view from the broadcast rather than echoing locally.
func (r *MessageRouter) Submit(sender *Client, rawContent string) {
	identity, bound := r.hub.Identity(sender)
	if !bound {
		logrus.WithFields(logrus.Fields{"comp": "router", "conn_id": sender.id}).Debug("dropping message from unbound connection")
		return
	}

	content := strings.TrimSpace(rawContent)
	if content == "" {
		return
	}

	message, err := r.store.CreateMessage(identity.UserID, content)
	if err != nil {
		logrus.WithFields(logrus.Fields{"comp": "router", "user_id": identity.UserID}).WithError(err).Error("unable to persist message")
		r.hub.Send(sender, newErrorEvent("Failed to send message"))
		return
	}

	user, err := r.store.GetUser(identity.UserID)
	if err != nil {
		logrus.WithFields(logrus.Fields{"comp": "router", "user_id": identity.UserID}).WithError(err).Error("unable to load message author")
		r.hub.Send(sender, newErrorEvent("Failed to send message"))
		return
	}

	r.hub.Broadcast(&MessageEvent{
		Type: eventMessage,
		Message: &store.MessageWithUser{
			Message: *message,
			User:    store.MessageAuthor{ID: user.ID, Username: user.Username},
		},
	}, nil)
}
