package chathub

import (
	"encoding/json"
	"sync"

	"mchat/backend/pkg/logger"
)

// Router delivers events to every client subscribed to a channel. Delivery
// is fire-and-forget per subscriber: a subscriber whose send buffer is full
// is dropped immediately and torn down as if it had disconnected, so one
// slow connection never blocks the rest of the room.
type Router struct {
	mu   sync.RWMutex
	subs map[string]map[string]Client // channel key -> session ID -> client

	// fabric, when set, mirrors every publish to the external pub/sub
	// fabric and injects events published by other nodes.
	fabric *Fabric

	// onDrop is invoked (on its own goroutine) for a subscriber removed
	// because its buffer was full.
	onDrop func(sessionID string)
}

func NewRouter() *Router {
	return &Router{subs: make(map[string]map[string]Client)}
}

// SetFabric attaches the external pub/sub bridge. Optional; without it the
// broadcast domain is this process.
func (r *Router) SetFabric(f *Fabric) { r.fabric = f }

// SetOnDrop registers the teardown hook for dropped subscribers.
func (r *Router) SetOnDrop(fn func(sessionID string)) { r.onDrop = fn }

func (r *Router) Subscribe(channel string, client Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clients, ok := r.subs[channel]
	if !ok {
		clients = make(map[string]Client)
		r.subs[channel] = clients
	}
	clients[client.GetSessionID()] = client
}

// Unsubscribe is a no-op for unknown subscribers.
func (r *Router) Unsubscribe(channel, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clients, ok := r.subs[channel]
	if !ok {
		return
	}
	delete(clients, sessionID)
	if len(clients) == 0 {
		delete(r.subs, channel)
	}
}

// Publish marshals the event once and delivers it to every subscriber of
// the channel, then mirrors it to the fabric when one is attached.
func (r *Router) Publish(channel string, event interface{}) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to encode event for channel %s: %v", channel, err)
		return
	}

	r.deliverLocal(channel, data)

	if r.fabric != nil {
		r.fabric.Mirror(channel, data)
	}
}

// deliverLocal fans the payload out to local subscribers only. Remote
// events arriving over the fabric enter here so they are not re-mirrored.
func (r *Router) deliverLocal(channel string, data []byte) {
	r.mu.RLock()
	targets := make([]Client, 0, len(r.subs[channel]))
	for _, c := range r.subs[channel] {
		targets = append(targets, c)
	}
	r.mu.RUnlock()

	for _, client := range targets {
		select {
		case client.GetSendChannel() <- data:
		default:
			r.drop(client)
		}
	}
}

func (r *Router) drop(client Client) {
	id := client.GetSessionID()
	logger.Info("Dropping slow subscriber %s", id)

	r.mu.Lock()
	for channel, clients := range r.subs {
		delete(clients, id)
		if len(clients) == 0 {
			delete(r.subs, channel)
		}
	}
	r.mu.Unlock()

	client.Close()
	if r.onDrop != nil {
		go r.onDrop(id)
	}
}

// Subscribers returns the number of subscribers on a channel.
func (r *Router) Subscribers(channel string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs[channel])
}
