package store

import (
	"errors"
	"time"
)

var (
	// ErrUserNotFound is returned when no user exists for the given id or username.
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameTaken is returned by CreateUser when the username is already in use.
	ErrUsernameTaken = errors.New("username already exists")
)

// User is a registered chat user. The password is stored as a bcrypt hash and
// never leaves the store layer.
type User struct {
	ID           string    `gorm:"primarykey;size:36" json:"id"`
	Username     string    `gorm:"size:100;not null;uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	IsOnline     bool      `gorm:"not null;default:false" json:"isOnline"`
	LastSeen     time.Time `json:"lastSeen"`
}

func (User) TableName() string { return "users" }

// Message is a single chat message. Messages are immutable once created.
type Message struct {
	ID        string    `gorm:"primarykey;size:36" json:"id"`
	Content   string    `gorm:"not null" json:"content"`
	UserID    string    `gorm:"size:36;not null;index" json:"userId"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
}

func (Message) TableName() string { return "messages" }

// MessageAuthor is the subset of the author record that travels with a message.
type MessageAuthor struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// MessageWithUser is a message joined with its author, the shape clients consume.
type MessageWithUser struct {
	Message
	User MessageAuthor `json:"user"`
}

// OnlineUser is the read-only roster projection of a User.
type OnlineUser struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	IsOnline bool      `json:"isOnline"`
	LastSeen time.Time `json:"lastSeen"`
}

// Store is the persistence collaborator for users and message history. The hub
// only ever calls it outside of its own locks, so implementations are free to
// block on I/O.
type Store interface {
	GetUser(id string) (*User, error)
	GetUserByUsername(username string) (*User, error)
	CreateUser(username, passwordHash string) (*User, error)
	SetOnlineStatus(id string, online bool) error
	ListOnlineUsers() ([]*OnlineUser, error)

	CreateMessage(userID, content string) (*Message, error)
	ListRecentMessages(limit int) ([]*MessageWithUser, error)
}
