package storage

import (
	"context"
	"errors"
	"time"

	"mchat/backend/internal/models"
	"mchat/backend/pkg/logger"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// SystemUsername is the reserved identity that authors server messages.
// It is excluded from every presence roster.
const SystemUsername = "System"

// fabricChannel is the Redis channel used to mirror broadcast events to
// other nodes.
const fabricChannel = "chat:events"

// Storage is the persistence contract the chat core depends on. Messages
// are append-only: there are no update or delete operations.
type Storage interface {
	SaveMessage(ctx context.Context, msg *models.Message) error
	MessagesByRoom(ctx context.Context, room string) ([]models.Message, error)
	HasRecentSystemMessage(ctx context.Context, room, content string, since time.Time) (bool, error)

	CreateUser(ctx context.Context, user *models.User) error
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UserExists(ctx context.Context, username string) (bool, error)
	ListUsernames(ctx context.Context) ([]string, error)
	EnsureSystemUser(ctx context.Context) error

	PublishEvent(ctx context.Context, payload []byte) error
	SubscribeEvents(ctx context.Context) *redis.PubSub
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{DB: db, Redis: rdb}
}

// SaveMessage appends a message. GORM fills CreatedAt on the struct, which
// callers use as the message timestamp.
func (s *Service) SaveMessage(ctx context.Context, msg *models.Message) error {
	if err := s.DB.WithContext(ctx).Create(msg).Error; err != nil {
		logger.Error("Failed to save message for room %s: %v", msg.RoomName, err)
		return err
	}
	return nil
}

// MessagesByRoom returns the room's history in ascending creation order.
func (s *Service) MessagesByRoom(ctx context.Context, room string) ([]models.Message, error) {
	var msgs []models.Message
	err := s.DB.WithContext(ctx).
		Where("room_name = ?", room).
		Order("created_at asc").
		Find(&msgs).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return msgs, nil
		}
		logger.Error("Failed to load history for room %s: %v", room, err)
		return nil, err
	}
	return msgs, nil
}

// HasRecentSystemMessage reports whether an identical System-authored
// message was persisted in the room since the given time. Drives the join
// announcement cooldown.
func (s *Service) HasRecentSystemMessage(ctx context.Context, room, content string, since time.Time) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Message{}).
		Where("room_name = ?", room).
		Where("sender = ?", SystemUsername).
		Where("content = ?", content).
		Where("created_at >= ?", since).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Service) CreateUser(ctx context.Context, user *models.User) error {
	return s.DB.WithContext(ctx).Create(user).Error
}

func (s *Service) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) UserExists(ctx context.Context, username string) (bool, error) {
	user, err := s.UserByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	return user != nil, nil
}

// ListUsernames returns every known username, including System. Callers
// building rosters filter the reserved identity out.
func (s *Service) ListUsernames(ctx context.Context) ([]string, error) {
	var names []string
	err := s.DB.WithContext(ctx).Model(&models.User{}).
		Order("username asc").
		Pluck("username", &names).Error
	if err != nil {
		logger.Error("Failed to list usernames: %v", err)
		return nil, err
	}
	return names, nil
}

// EnsureSystemUser creates the reserved System account on first boot. The
// account has no usable password.
func (s *Service) EnsureSystemUser(ctx context.Context) error {
	user := models.User{Username: SystemUsername}
	return s.DB.WithContext(ctx).
		Where("username = ?", SystemUsername).
		FirstOrCreate(&user).Error
}

// PublishEvent mirrors a broadcast envelope to the Redis fabric so other
// nodes can deliver it to their local subscribers.
func (s *Service) PublishEvent(ctx context.Context, payload []byte) error {
	return s.Redis.Publish(ctx, fabricChannel, payload).Err()
}

func (s *Service) SubscribeEvents(ctx context.Context) *redis.PubSub {
	return s.Redis.Subscribe(ctx, fabricChannel)
}
