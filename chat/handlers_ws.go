package chat

import (
	"net/http"
	"time"

	"github.com/chilts/sid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:   1024,
	WriteBufferSize:  1024,
	HandshakeTimeout: 8 * time.Second,
	CheckOrigin:      func(r *http.Request) bool { return true },
}

// ServeWS upgrades the request to a WebSocket connection and registers it with
// the hub, unbound until a join frame arrives.
func (c *Chat) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithField("comp", "chat").WithError(err).Error("failed to upgrade connection to WebSocket")
		return
	}

	client := newClient(sid.IdBase64(), conn, c)
	c.hub.Register(client)

	go client.writePump()
	go client.readPump()
}
