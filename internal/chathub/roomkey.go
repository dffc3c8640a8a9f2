package chathub

import (
	"sort"
	"strings"
	"unicode"
)

const (
	// GlobalRoom is the distinguished room every user can join; join
	// announcements are only made here.
	GlobalRoom = "global"

	// GlobalChannel is the broadcast channel joined by every connected
	// session regardless of its chat room. Carries presence updates and
	// private-message alerts.
	GlobalChannel = "chat_global"

	privatePrefix = "private_"
)

// Slugify normalizes a room name to a case- and whitespace-insensitive
// slug: lowercase, runs of spaces and separators collapse to single
// hyphens, everything else non-alphanumeric is stripped.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphens
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
			lastHyphen = false
		case r == ' ' || r == '-':
			if !lastHyphen {
				b.WriteRune('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// CanonicalRoomName maps a requested room name to its canonical key. For
// private rooms the participant pair is re-sorted so both sides derive the
// identical key regardless of who initiates.
func CanonicalRoomName(requested string) string {
	slug := Slugify(requested)
	if users, ok := privatePeers(slug); ok {
		return PrivateRoomName(users[0], users[1])
	}
	return slug
}

// PrivateRoomName derives the deterministic two-party room name.
func PrivateRoomName(userA, userB string) string {
	pair := []string{userA, userB}
	sort.Strings(pair)
	return privatePrefix + pair[0] + "_" + pair[1]
}

// IsPrivateRoom reports whether the room is a two-party private room.
func IsPrivateRoom(room string) bool {
	_, ok := privatePeers(room)
	return ok
}

// PrivatePeer returns the other participant of a private room, or "" when
// the room is not private or self is not a participant.
func PrivatePeer(room, self string) string {
	users, ok := privatePeers(room)
	if !ok {
		return ""
	}
	for _, u := range users {
		if u != self {
			return u
		}
	}
	return ""
}

// ChannelKey maps a canonical room name to its broadcast channel.
func ChannelKey(room string) string {
	return "chat_" + room
}

func privatePeers(room string) ([]string, bool) {
	if !strings.HasPrefix(room, privatePrefix) {
		return nil, false
	}
	users := strings.Split(strings.TrimPrefix(room, privatePrefix), "_")
	if len(users) != 2 || users[0] == "" || users[1] == "" {
		return nil, false
	}
	return users, true
}
