package chat

import (
	"github.com/sirupsen/logrus"

	"github.com/lumenchat/server/store"
)

// PresenceTracker derives the online roster from the store's online flag and
// announces joins and leaves to the rest of the hub.
type PresenceTracker struct {
	store store.Store
	hub   *Hub
}

// NewPresenceTracker returns a tracker announcing over hub and persisting
// online state through st.
func NewPresenceTracker(st store.Store, hub *Hub) *PresenceTracker {
	return &PresenceTracker{store: st, hub: hub}
}

// OnJoin marks the user online, announces the join to everyone except the
// joining connection and then sends the refreshed roster to everyone. A store
// failure is logged and suppresses both broadcasts.
func (p *PresenceTracker) OnJoin(userID, username string, joined *Client) {
	if err := p.store.SetOnlineStatus(userID, true); err != nil {
		logrus.WithFields(logrus.Fields{"comp": "presence", "user_id": userID}).WithError(err).Error("unable to mark user online")
		return
	}

	p.hub.Broadcast(&PresenceEvent{Type: eventUserJoined, User: EventUser{ID: userID, Username: username}}, joined)
	p.broadcastRoster()
}

// OnLeave marks the user offline and announces the departure followed by the
// refreshed roster. Callers must invoke it at most once per bound connection
// close; the hub's unregister guard takes care of that.
func (p *PresenceTracker) OnLeave(userID, username string) {
	if err := p.store.SetOnlineStatus(userID, false); err != nil {
		logrus.WithFields(logrus.Fields{"comp": "presence", "user_id": userID}).WithError(err).Error("unable to mark user offline")
		return
	}

	p.hub.Broadcast(&PresenceEvent{Type: eventUserLeft, User: EventUser{ID: userID, Username: username}}, nil)
	p.broadcastRoster()
}

func (p *PresenceTracker) broadcastRoster() {
	users, err := p.store.ListOnlineUsers()
	if err != nil {
		logrus.WithField("comp", "presence").WithError(err).Error("unable to list online users")
		return
	}
	p.hub.Broadcast(&OnlineUsersEvent{Type: eventOnlineUsers, Users: users}, nil)
}
