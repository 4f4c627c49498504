package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DBStore is the durable Store implementation backed by SQLite through GORM.
type DBStore struct {
	db *gorm.DB
}

// OpenDB opens (or creates) the SQLite database at dsn and migrates the schema.
func OpenDB(dsn string) (*DBStore, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open database %s", dsn)
	}
	if err := db.AutoMigrate(&User{}, &Message{}); err != nil {
		return nil, errors.Wrap(err, "unable to migrate database schema")
	}
	return &DBStore{db: db}, nil
}

// NewDBStore wraps an already-open GORM handle, used by tests.
func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) GetUser(id string) (*User, error) {
	user := &User{}
	if err := s.db.First(user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, "error looking up user")
	}
	return user, nil
}

func (s *DBStore) GetUserByUsername(username string) (*User, error) {
	user := &User{}
	if err := s.db.First(user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, "error looking up user by username")
	}
	return user, nil
}

func (s *DBStore) CreateUser(username, passwordHash string) (*User, error) {
	existing := &User{}
	err := s.db.First(existing, "username = ?", username).Error
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "error checking username uniqueness")
	}

	user := &User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: passwordHash,
		IsOnline:     false,
		LastSeen:     time.Now(),
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, errors.Wrap(err, "error creating user")
	}
	return user, nil
}

func (s *DBStore) SetOnlineStatus(id string, online bool) error {
	result := s.db.Model(&User{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_online": online, "last_seen": time.Now()})
	if result.Error != nil {
		return errors.Wrap(result.Error, "error updating online status")
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *DBStore) ListOnlineUsers() ([]*OnlineUser, error) {
	var users []*User
	if err := s.db.Where("is_online = ?", true).Order("last_seen desc").Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "error listing online users")
	}

	online := make([]*OnlineUser, len(users))
	for i, user := range users {
		online[i] = &OnlineUser{
			ID:       user.ID,
			Username: user.Username,
			IsOnline: user.IsOnline,
			LastSeen: user.LastSeen,
		}
	}
	return online, nil
}

func (s *DBStore) CreateMessage(userID, content string) (*Message, error) {
	message := &Message{
		ID:        uuid.New().String(),
		Content:   content,
		UserID:    userID,
		Timestamp: time.Now(),
	}
	if err := s.db.Create(message).Error; err != nil {
		return nil, errors.Wrap(err, "error creating message")
	}
	return message, nil
}

func (s *DBStore) ListRecentMessages(limit int) ([]*MessageWithUser, error) {
	if limit <= 0 {
		limit = 50
	}

	var messages []*Message
	if err := s.db.Order("timestamp desc").Limit(limit).Find(&messages).Error; err != nil {
		return nil, errors.Wrap(err, "error listing messages")
	}

	// newest->oldest from the query, clients want ascending
	withUsers := make([]*MessageWithUser, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		message := messages[i]
		user := &User{}
		if err := s.db.First(user, "id = ?", message.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, errors.Wrap(err, "error loading message author")
		}
		withUsers = append(withUsers, &MessageWithUser{
			Message: *message,
			User:    MessageAuthor{ID: user.ID, Username: user.Username},
		})
	}
	return withUsers, nil
}
