package chathub

import (
	"context"
	"sync"
	"time"

	"mchat/backend/internal/identity"
	"mchat/backend/internal/storage"
)

// Hub wires the chat core together and owns the set of live sessions. It
// has no run loop of its own: each session executes on its connection's
// goroutines, and shared state lives behind the registry's and router's
// locks.
type Hub struct {
	Registry *Registry
	Router   *Router
	Presence *PresenceBroadcaster
	Storage  storage.Storage

	mu       sync.RWMutex
	sessions map[string]*Session

	// now supplies the clock for the announcement cooldown window.
	now func() time.Time
}

func NewHub(store storage.Storage, id identity.Provider) *Hub {
	registry := NewRegistry()
	router := NewRouter()

	h := &Hub{
		Registry: registry,
		Router:   router,
		Presence: NewPresenceBroadcaster(id, registry, router),
		Storage:  store,
		sessions: make(map[string]*Session),
		now:      time.Now,
	}

	router.SetOnDrop(func(sessionID string) {
		if s := h.session(sessionID); s != nil {
			s.Close()
		}
	})

	return h
}

// EnableFabric attaches the Redis pub/sub bridge and starts its listener.
func (h *Hub) EnableFabric(ctx context.Context) {
	fabric := NewFabric(h.Storage, h.Router)
	h.Router.SetFabric(fabric)
	go fabric.Listen(ctx)
}

// Connect creates a session for a resolved identity and runs its join
// flow. The requested room name is canonicalized here, so both parties of
// a private room land in the same room regardless of who initiates.
// The session adopts the client's ID: registry membership, router
// subscriptions and the session map must all key on the same identifier,
// or teardown cannot find what join registered.
func (h *Hub) Connect(ctx context.Context, username string, authenticated bool, requestedRoom string, client Client) *Session {
	room := CanonicalRoomName(requestedRoom)

	s := &Session{
		ID:            client.GetSessionID(),
		Username:      username,
		Authenticated: authenticated,
		RoomName:      room,
		roomChannel:   ChannelKey(room),
		hub:           h,
		client:        client,
	}

	h.mu.Lock()
	h.sessions[s.ID] = s
	h.mu.Unlock()

	s.Join(ctx)
	return s
}

func (h *Hub) session(id string) *Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sessions[id]
}

func (h *Hub) forget(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, id)
}

// SessionCount reports the number of live sessions.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
