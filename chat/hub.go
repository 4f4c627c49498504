package chat

import (
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	// ErrAlreadyBound is returned by Bind when the connection already completed a join.
	ErrAlreadyBound = errors.New("connection already bound to a user")

	// ErrNotRegistered is returned by Bind when the connection is no longer registered.
	ErrNotRegistered = errors.New("connection is not registered")
)

// Identity is the user bound to a connection after a successful join.
type Identity struct {
	UserID   string
	Username string
}

// Hub owns the set of live connections and the broadcast fan-out. A connection
// enters unbound via Register, gains an identity via Bind and leaves via
// Unregister. All state lives behind one mutex which is never held across a
// store call or a transport write.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]*Identity
}

// NewHub returns a Hub with no connections.
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]*Identity)}
}

// Register adds a newly accepted connection in an unbound state.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = nil
	count := len(h.clients)
	h.mu.Unlock()

	logrus.WithFields(logrus.Fields{"comp": "hub", "conn_id": c.id, "clients": count}).Debug("connection registered")
}

// Bind attaches an identity to a registered connection. Repeat joins on the
// same connection are rejected, not silently accepted.
func (h *Hub) Bind(c *Client, userID, username string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	identity, ok := h.clients[c]
	if !ok {
		return ErrNotRegistered
	}
	if identity != nil {
		return ErrAlreadyBound
	}
	h.clients[c] = &Identity{UserID: userID, Username: username}
	return nil
}

// Identity returns the identity bound to the connection, if any.
func (h *Hub) Identity(c *Client) (Identity, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	identity, ok := h.clients[c]
	if !ok || identity == nil {
		return Identity{}, false
	}
	return *identity, true
}

// Unregister removes the connection and returns the identity that was bound to
// it, if any. The registered return reports whether this call actually removed
// the connection, so callers can run departure logic exactly once even when the
// transport fires close and error for the same connection.
func (h *Hub) Unregister(c *Client) (Identity, bool, bool) {
	h.mu.Lock()
	identity, registered := h.clients[c]
	if registered {
		delete(h.clients, c)
	}
	count := len(h.clients)
	h.mu.Unlock()

	if !registered {
		return Identity{}, false, false
	}
	logrus.WithFields(logrus.Fields{"comp": "hub", "conn_id": c.id, "clients": count}).Debug("connection unregistered")
	if identity == nil {
		return Identity{}, false, true
	}
	return *identity, true, true
}

// ForEachLive calls fn for every currently live connection. Iteration runs over
// a snapshot, so connections closing mid-broadcast cannot corrupt it.
func (h *Hub) ForEachLive(fn func(c *Client)) {
	for _, c := range h.snapshot() {
		fn(c)
	}
}

// ClientCount returns the number of live connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast serializes event once and delivers it to every live connection
// except exclude. Delivery is best effort: a recipient with a broken or
// saturated transport is skipped and never aborts delivery to the rest.
func (h *Hub) Broadcast(event interface{}, exclude *Client) {
	payload, err := json.Marshal(event)
	if err != nil {
		logrus.WithField("comp", "hub").WithError(err).Error("unable to marshal broadcast event")
		return
	}

	h.ForEachLive(func(c *Client) {
		if c == exclude {
			return
		}
		if !c.enqueue(payload) {
			logrus.WithFields(logrus.Fields{"comp": "hub", "conn_id": c.id}).Debug("dropped broadcast to dead or slow connection")
		}
	})
}

// Send delivers event to a single connection, best effort.
func (h *Hub) Send(c *Client, event interface{}) {
	payload, err := json.Marshal(event)
	if err != nil {
		logrus.WithField("comp", "hub").WithError(err).Error("unable to marshal event")
		return
	}
	c.enqueue(payload)
}

// CloseAll closes every live connection, used during server shutdown.
func (h *Hub) CloseAll() {
	for _, c := range h.snapshot() {
		c.close()
	}
}

func (h *Hub) snapshot() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	return clients
}
