// Package identity resolves connections to stable usernames. Resolution is
// never fatal: anything that cannot be verified becomes a guest.
package identity

import (
	"context"

	"mchat/backend/internal/auth"
	"mchat/backend/internal/storage"
)

// GuestUsername is the placeholder for unauthenticated connections.
const GuestUsername = "Guest"

// Provider is the identity contract the chat core depends on.
type Provider interface {
	// Resolve maps a bearer token to a username. An absent or invalid
	// token yields the guest identity with authenticated=false.
	Resolve(ctx context.Context, token string) (username string, authenticated bool)
	UserExists(ctx context.Context, username string) (bool, error)
	ListUsernames(ctx context.Context) ([]string, error)
}

type Resolver struct {
	auth  *auth.Service
	store storage.Storage
}

func NewResolver(a *auth.Service, store storage.Storage) *Resolver {
	return &Resolver{auth: a, store: store}
}

func (r *Resolver) Resolve(ctx context.Context, token string) (string, bool) {
	if token == "" {
		return GuestUsername, false
	}
	username, err := r.auth.ParseToken(token)
	if err != nil || username == storage.SystemUsername {
		return GuestUsername, false
	}
	return username, true
}

func (r *Resolver) UserExists(ctx context.Context, username string) (bool, error) {
	return r.store.UserExists(ctx, username)
}

func (r *Resolver) ListUsernames(ctx context.Context) ([]string, error) {
	return r.store.ListUsernames(ctx)
}
