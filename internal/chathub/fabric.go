package chathub

import (
	"context"
	"encoding/json"

	"mchat/backend/internal/storage"
	"mchat/backend/pkg/logger"

	"github.com/google/uuid"
)

// fabricEnvelope wraps an event for the external pub/sub fabric. The node
// ID lets a listener skip events it mirrored itself.
type fabricEnvelope struct {
	Node    string          `json:"node"`
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

// Fabric bridges the local router to the Redis pub/sub fabric. With a
// single node it is inert; with several, each node delivers fabric events
// to its own subscribers.
type Fabric struct {
	nodeID string
	store  storage.Storage
	router *Router
}

func NewFabric(store storage.Storage, router *Router) *Fabric {
	return &Fabric{
		nodeID: uuid.New().String(),
		store:  store,
		router: router,
	}
}

// Mirror publishes a locally-broadcast event to the fabric. Failures are
// logged and ignored: local delivery has already happened.
func (f *Fabric) Mirror(channel string, data []byte) {
	env := fabricEnvelope{Node: f.nodeID, Channel: channel, Data: data}
	payload, err := json.Marshal(env)
	if err != nil {
		logger.Error("Failed to encode fabric envelope: %v", err)
		return
	}
	if err := f.store.PublishEvent(context.Background(), payload); err != nil {
		logger.Error("Failed to mirror event to fabric: %v", err)
	}
}

// Listen consumes fabric events until the context is cancelled, injecting
// events from other nodes into the local router.
func (f *Fabric) Listen(ctx context.Context) {
	pubsub := f.store.SubscribeEvents(ctx)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env fabricEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				logger.Error("Failed to decode fabric envelope: %v", err)
				continue
			}
			if env.Node == f.nodeID {
				continue
			}
			f.router.deliverLocal(env.Channel, env.Data)
		}
	}
}
