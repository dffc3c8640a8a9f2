package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mchat/backend/internal/config"
	"mchat/backend/internal/models"
	"mchat/backend/internal/storage"

	jwt "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrUsernameReserved   = errors.New("username is reserved")
	ErrUsernameEmpty      = errors.New("username must not be empty")
)

// Service issues and verifies the bearer tokens that carry a username, and
// owns account registration. The chat core itself never sees passwords.
type Service struct {
	store storage.Storage
	cfg   config.JWTConfig
}

func NewService(store storage.Storage, cfg config.JWTConfig) *Service {
	return &Service{store: store, cfg: cfg}
}

func (s *Service) Register(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", ErrUsernameEmpty
	}
	if username == storage.SystemUsername {
		return "", ErrUsernameReserved
	}

	exists, err := s.store.UserExists(ctx, username)
	if err != nil {
		return "", fmt.Errorf("checking username: %w", err)
	}
	if exists {
		return "", ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{Username: username, PasswordHash: string(hash)}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return "", fmt.Errorf("creating user: %w", err)
	}

	return s.GenerateToken(username)
}

func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.store.UserByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("loading user: %w", err)
	}
	if user == nil || user.PasswordHash == "" {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.GenerateToken(username)
}

// GenerateToken creates a signed HS256 token carrying the username.
func (s *Service) GenerateToken(username string) (string, error) {
	claims := jwt.MapClaims{
		"username": username,
		"exp":      time.Now().Add(s.cfg.ExpiresIn).Unix(),
		"iss":      "mchat-service",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.cfg.Secret)
}

// ParseToken verifies a token and returns the username it carries.
func (s *Service) ParseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.cfg.Secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidCredentials
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidCredentials
	}
	username, ok := claims["username"].(string)
	if !ok || username == "" {
		return "", ErrInvalidCredentials
	}
	return username, nil
}
