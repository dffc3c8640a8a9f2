package identity_test

import (
	"context"
	"testing"
	"time"

	"mchat/backend/internal/auth"
	"mchat/backend/internal/config"
	"mchat/backend/internal/identity"
	"mchat/backend/internal/models"
	"mchat/backend/internal/storage"

	"github.com/stretchr/testify/assert"
)

type fakeStore struct {
	storage.Storage
	users map[string]*models.User
}

func (f *fakeStore) CreateUser(ctx context.Context, user *models.User) error {
	f.users[user.Username] = user
	return nil
}

func (f *fakeStore) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return f.users[username], nil
}

func (f *fakeStore) UserExists(ctx context.Context, username string) (bool, error) {
	_, ok := f.users[username]
	return ok, nil
}

func (f *fakeStore) ListUsernames(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(f.users))
	for name := range f.users {
		names = append(names, name)
	}
	return names, nil
}

func newResolver(t *testing.T) (*identity.Resolver, *auth.Service) {
	t.Helper()
	store := &fakeStore{users: make(map[string]*models.User)}
	svc := auth.NewService(store, config.JWTConfig{Secret: []byte("test"), ExpiresIn: time.Hour})
	return identity.NewResolver(svc, store), svc
}

func TestResolve_ValidToken(t *testing.T) {
	resolver, svc := newResolver(t)

	token, err := svc.GenerateToken("alice")
	assert.NoError(t, err)

	username, authenticated := resolver.Resolve(context.Background(), token)
	assert.Equal(t, "alice", username)
	assert.True(t, authenticated)
}

func TestResolve_FallsBackToGuest(t *testing.T) {
	resolver, svc := newResolver(t)

	username, authenticated := resolver.Resolve(context.Background(), "")
	assert.Equal(t, identity.GuestUsername, username)
	assert.False(t, authenticated)

	username, authenticated = resolver.Resolve(context.Background(), "garbage-token")
	assert.Equal(t, identity.GuestUsername, username)
	assert.False(t, authenticated)

	// A token claiming the reserved System identity is refused.
	token, err := svc.GenerateToken(storage.SystemUsername)
	assert.NoError(t, err)
	username, authenticated = resolver.Resolve(context.Background(), token)
	assert.Equal(t, identity.GuestUsername, username)
	assert.False(t, authenticated)
}
