package chathub_test

import (
	"testing"

	"mchat/backend/internal/chathub"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"global", "global"},
		{"Global", "global"},
		{"  My Room  ", "my-room"},
		{"My   Room", "my-room"},
		{"room!@#42", "room42"},
		{"private_alice_bob", "private_alice_bob"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, chathub.Slugify(tt.in), "slugify %q", tt.in)
	}
}

func TestPrivateRoomName_Deterministic(t *testing.T) {
	ab := chathub.PrivateRoomName("alice", "bob")
	ba := chathub.PrivateRoomName("bob", "alice")
	assert.Equal(t, ab, ba, "both participants must derive the identical key")
	assert.Equal(t, "private_alice_bob", ab)
}

func TestCanonicalRoomName(t *testing.T) {
	assert.Equal(t, "global", chathub.CanonicalRoomName("Global"))
	assert.Equal(t, "private_alice_bob", chathub.CanonicalRoomName("private_bob_alice"))
	assert.Equal(t, "private_alice_bob", chathub.CanonicalRoomName("private_alice_bob"))
	assert.Equal(t, "team-chat", chathub.CanonicalRoomName("Team Chat"))
}

func TestPrivatePeer(t *testing.T) {
	room := chathub.PrivateRoomName("alice", "bob")

	assert.Equal(t, "bob", chathub.PrivatePeer(room, "alice"))
	assert.Equal(t, "alice", chathub.PrivatePeer(room, "bob"))
	assert.Equal(t, "", chathub.PrivatePeer("global", "alice"))
}

func TestIsPrivateRoom(t *testing.T) {
	assert.True(t, chathub.IsPrivateRoom("private_alice_bob"))
	assert.False(t, chathub.IsPrivateRoom("global"))
	assert.False(t, chathub.IsPrivateRoom("private_"))
	assert.False(t, chathub.IsPrivateRoom("private_alice"))
}

func TestChannelKey(t *testing.T) {
	assert.Equal(t, "chat_global", chathub.ChannelKey("global"))
	assert.Equal(t, chathub.GlobalChannel, chathub.ChannelKey(chathub.GlobalRoom))
}
