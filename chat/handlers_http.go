package chat

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/pbnjay/memory"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/lumenchat/server/store"
	"github.com/lumenchat/server/utils"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	User    *EventUser `json:"user,omitempty"`
}

// HandleLogin verifies a username/password pair, creating the user on first
// login, and marks the user online. Clients call it once before opening the
// WebSocket.
func (c *Chat) HandleLogin(w http.ResponseWriter, r *http.Request) {
	request := &loginRequest{}
	if err := utils.DecodeAndValidateJSON(request, r); err != nil {
		writeJSON(w, http.StatusBadRequest, &loginResponse{Success: false, Message: err.Error()})
		return
	}

	user, err := c.store.GetUserByUsername(request.Username)
	if err == store.ErrUserNotFound {
		user, err = c.createUser(request.Username, request.Password)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, &loginResponse{Success: false, Message: "Login failed"})
			return
		}
	} else if err != nil {
		logrus.WithField("comp", "http").WithError(err).Error("unable to look up user")
		writeJSON(w, http.StatusInternalServerError, &loginResponse{Success: false, Message: "Login failed"})
		return
	} else if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(request.Password)) != nil {
		writeJSON(w, http.StatusUnauthorized, &loginResponse{Success: false, Message: "Invalid credentials"})
		return
	}

	if err := c.store.SetOnlineStatus(user.ID, true); err != nil {
		logrus.WithFields(logrus.Fields{"comp": "http", "user_id": user.ID}).WithError(err).Error("unable to mark user online")
	}

	writeJSON(w, http.StatusOK, &loginResponse{
		Success: true,
		User:    &EventUser{ID: user.ID, Username: user.Username},
	})
}

func (c *Chat) createUser(username, password string) (*store.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user, err := c.store.CreateUser(username, string(hash))
	if err != nil {
		logrus.WithFields(logrus.Fields{"comp": "http", "username": username}).WithError(err).Error("unable to create user")
		return nil, err
	}
	return user, nil
}

// HandleMessages returns the most recent messages joined with their authors,
// oldest first. The limit query parameter defaults to 50.
func (c *Chat) HandleMessages(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid limit"})
			return
		}
		limit = parsed
	}

	messages, err := c.store.ListRecentMessages(limit)
	if err != nil {
		logrus.WithField("comp", "http").WithError(err).Error("unable to list messages")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Failed to fetch messages"})
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// HandleOnlineUsers returns the current online roster.
func (c *Chat) HandleOnlineUsers(w http.ResponseWriter, r *http.Request) {
	users, err := c.store.ListOnlineUsers()
	if err != nil {
		logrus.WithField("comp", "http").WithError(err).Error("unable to list online users")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Failed to fetch online users"})
		return
	}
	writeJSON(w, http.StatusOK, users)
}

type statusPayload struct {
	PID           int64  `json:"pid"`
	HostName      string `json:"hostname"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	FreeMemory    int64  `json:"free_memory"`
	Version       string `json:"version"`
}

// Status reports process diagnostics for monitoring.
func Status(startTime time.Time, version string, w http.ResponseWriter, r *http.Request) {
	hostname, err := os.Hostname()
	if err != nil {
		logrus.WithField("comp", "http").WithError(err).Error("unable to read hostname")
		hostname = ""
	}

	writeJSON(w, http.StatusOK, &statusPayload{
		PID:           int64(os.Getpid()),
		HostName:      hostname,
		UptimeSeconds: int64(time.Since(startTime).Seconds()),
		FreeMemory:    int64(memory.FreeMemory()),
		Version:       version,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithField("comp", "http").WithError(err).Error("unable to write response")
	}
}
