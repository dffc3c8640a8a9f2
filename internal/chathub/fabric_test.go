package chathub_test

import (
	"encoding/json"
	"testing"

	"mchat/backend/internal/chathub"
	"mchat/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestFabric_MirrorsPublishes(t *testing.T) {
	store := new(MockStorage)
	router := chathub.NewRouter()
	fabric := chathub.NewFabric(store, router)
	router.SetFabric(fabric)

	var payload []byte
	store.On("PublishEvent", mock.Anything, mock.AnythingOfType("[]uint8")).
		Run(func(args mock.Arguments) { payload = args.Get(1).([]byte) }).
		Return(nil)

	client := newMockClient("a")
	router.Subscribe("chat_global", client)
	router.Publish("chat_global", models.NewChatEvent("hello"))

	// Local delivery happens regardless of the fabric.
	assert.Len(t, client.Drain(), 1)

	store.AssertCalled(t, "PublishEvent", mock.Anything, mock.Anything)

	var env struct {
		Node    string          `json:"node"`
		Channel string          `json:"channel"`
		Data    json.RawMessage `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(payload, &env))
	assert.NotEmpty(t, env.Node, "envelope carries the node ID for echo suppression")
	assert.Equal(t, "chat_global", env.Channel)

	var ev models.ChatEvent
	assert.NoError(t, json.Unmarshal(env.Data, &ev))
	assert.Equal(t, "hello", ev.Message)
}
