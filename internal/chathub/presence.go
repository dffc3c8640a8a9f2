package chathub

import (
	"context"
	"sort"

	"mchat/backend/internal/identity"
	"mchat/backend/internal/models"
	"mchat/backend/internal/storage"
	"mchat/backend/pkg/logger"
)

// PresenceBroadcaster computes user-list snapshots and hands them to the
// router. It runs on every join and leave, without debouncing: duplicate
// snapshots are tolerated by clients.
type PresenceBroadcaster struct {
	identity identity.Provider
	registry *Registry
	router   *Router
}

func NewPresenceBroadcaster(id identity.Provider, reg *Registry, router *Router) *PresenceBroadcaster {
	return &PresenceBroadcaster{identity: id, registry: reg, router: router}
}

// Broadcast publishes the current roster to the affected room's channel and
// to the global presence channel. Identity-store failures are logged and
// skipped; presence will be corrected by the next roster change.
func (b *PresenceBroadcaster) Broadcast(ctx context.Context, roomChannel string) {
	all, err := b.identity.ListUsernames(ctx)
	if err != nil {
		logger.Error("Presence broadcast skipped, cannot list users: %v", err)
		return
	}
	all = dropSystem(all)
	sort.Strings(all)

	online := dropSystem(b.registry.Online())
	sort.Strings(online)

	event := models.NewUserListEvent(all, online)
	b.router.Publish(GlobalChannel, event)
	if roomChannel != GlobalChannel {
		b.router.Publish(roomChannel, event)
	}
}

func dropSystem(names []string) []string {
	out := names[:0]
	for _, name := range names {
		if name != storage.SystemUsername {
			out = append(out, name)
		}
	}
	return out
}
