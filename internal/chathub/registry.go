package chathub

import "sync"

// Registry tracks which sessions are in which room and derives the global
// presence set. It performs no I/O: broadcast obligations are returned to
// the caller as booleans. All mutations are serialized by one mutex so a
// session is never observed in two rooms, or in none while connected.
type Registry struct {
	mu sync.RWMutex

	// rooms maps room name -> session ID -> username. A room entry is
	// created on first join and dropped when its member set empties; it
	// is always safely re-creatable.
	rooms map[string]map[string]string

	// presence maps username -> active session count. Online iff > 0.
	presence map[string]int
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:    make(map[string]map[string]string),
		presence: make(map[string]int),
	}
}

// Join adds the session to the room and increments the username's presence
// count. cameOnline is true when this is the username's first session
// anywhere; alreadyInRoom is true when the username already had another
// session in this room before the call.
func (r *Registry) Join(room, sessionID, username string) (cameOnline, alreadyInRoom bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[room]
	if !ok {
		members = make(map[string]string)
		r.rooms[room] = members
	}
	if _, dup := members[sessionID]; dup {
		return false, true
	}

	for _, name := range members {
		if name == username {
			alreadyInRoom = true
			break
		}
	}

	members[sessionID] = username
	r.presence[username]++
	cameOnline = r.presence[username] == 1
	return cameOnline, alreadyInRoom
}

// Leave removes the session from the room and decrements the username's
// presence count. wentOffline is true when this was the username's last
// session. Leaving with an unknown session ID is a no-op, which makes
// repeated disconnect signals safe.
func (r *Registry) Leave(room, sessionID string) (wentOffline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[room]
	if !ok {
		return false
	}
	username, ok := members[sessionID]
	if !ok {
		return false
	}

	delete(members, sessionID)
	if len(members) == 0 {
		delete(r.rooms, room)
	}

	if r.presence[username] > 0 {
		r.presence[username]--
	}
	if r.presence[username] == 0 {
		delete(r.presence, username)
		return true
	}
	return false
}

// MembersOf returns a snapshot of the session IDs currently in the room.
func (r *Registry) MembersOf(room string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[room]
	ids := make([]string, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	return ids
}

// IsOnline reports whether the username has at least one active session.
func (r *Registry) IsOnline(username string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.presence[username] > 0
}

// Online returns a snapshot of all usernames with at least one session.
func (r *Registry) Online() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.presence))
	for name := range r.presence {
		names = append(names, name)
	}
	return names
}

// SessionCount returns the total number of connected sessions.
func (r *Registry) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, members := range r.rooms {
		total += len(members)
	}
	return total
}
