package store

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps users and messages in process memory. It is the default
// store when no database is configured and the one tests run against.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]*User
	messages map[string]*Message
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]*User),
		messages: make(map[string]*Message),
	}
}

func (s *MemoryStore) GetUser(id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *MemoryStore) GetUserByUsername(username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *MemoryStore) CreateUser(username, passwordHash string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Username == username {
			return nil, ErrUsernameTaken
		}
	}

	user := &User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: passwordHash,
		IsOnline:     false,
		LastSeen:     time.Now(),
	}
	s.users[user.ID] = user

	copied := *user
	return &copied, nil
}

func (s *MemoryStore) SetOnlineStatus(id string, online bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	user.IsOnline = online
	user.LastSeen = time.Now()
	return nil
}

func (s *MemoryStore) ListOnlineUsers() ([]*OnlineUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	online := make([]*OnlineUser, 0)
	for _, user := range s.users {
		if user.IsOnline {
			online = append(online, &OnlineUser{
				ID:       user.ID,
				Username: user.Username,
				IsOnline: user.IsOnline,
				LastSeen: user.LastSeen,
			})
		}
	}
	return online, nil
}

func (s *MemoryStore) CreateMessage(userID, content string) (*Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	message := &Message{
		ID:        uuid.New().String(),
		Content:   content,
		UserID:    userID,
		Timestamp: time.Now(),
	}
	s.messages[message.ID] = message

	copied := *message
	return &copied, nil
}

func (s *MemoryStore) ListRecentMessages(limit int) ([]*MessageWithUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := make([]*Message, 0, len(s.messages))
	for _, message := range s.messages {
		messages = append(messages, message)
	}
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}

	withUsers := make([]*MessageWithUser, 0, len(messages))
	for _, message := range messages {
		user, ok := s.users[message.UserID]
		if !ok {
			// author record gone, skip the row rather than fail the listing
			continue
		}
		withUsers = append(withUsers, &MessageWithUser{
			Message: *message,
			User:    MessageAuthor{ID: user.ID, Username: user.Username},
		})
	}
	return withUsers, nil
}
