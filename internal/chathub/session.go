package chathub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"mchat/backend/internal/config"
	"mchat/backend/internal/models"
	"mchat/backend/internal/storage"
	"mchat/backend/pkg/logger"
)

const timeLayout = "15:04"

// joinAnnouncement is the System message persisted when a user enters the
// global room.
func joinAnnouncement(username string) string {
	return fmt.Sprintf("🔵 %s вошёл(а) в чат", username)
}

// Session owns one connection's lifecycle: join, history replay, message
// relay, leave. It is the only component that mutates its own registry
// membership, and its teardown runs exactly once no matter how many
// disconnect signals race.
type Session struct {
	ID            string
	Username      string
	Authenticated bool

	// RoomName is the canonical room key; roomChannel its broadcast
	// channel. Both are fixed for the session's lifetime.
	RoomName    string
	roomChannel string

	hub    *Hub
	client Client

	closeOnce sync.Once
}

// Join moves the session from Connecting to Active: registry membership,
// channel subscriptions, the join announcement (global room only, outside
// the cooldown window), a presence broadcast, and history replay delivered
// to this client alone.
func (s *Session) Join(ctx context.Context) {
	// The roster is recomputed wholesale below, so the came-online signal
	// itself is not needed here.
	_, alreadyInRoom := s.hub.Registry.Join(s.RoomName, s.ID, s.Username)

	s.hub.Router.Subscribe(s.roomChannel, s.client)
	if s.roomChannel != GlobalChannel {
		s.hub.Router.Subscribe(GlobalChannel, s.client)
	}

	if s.RoomName == GlobalRoom && !alreadyInRoom {
		s.announceJoin(ctx)
	}

	s.hub.Presence.Broadcast(ctx, s.roomChannel)
	s.replayHistory(ctx)

	logger.Info("Session %s: %s joined room %s", s.ID, s.Username, s.RoomName)
}

// announceJoin persists and broadcasts the System join message unless an
// identical one was persisted within the cooldown window. Persistence
// failure aborts the broadcast.
func (s *Session) announceJoin(ctx context.Context) {
	content := joinAnnouncement(s.Username)

	ctx, cancel := context.WithTimeout(ctx, config.StoreTimeout)
	defer cancel()

	since := s.hub.now().Add(-config.JoinAnnounceCooldown)
	recent, err := s.hub.Storage.HasRecentSystemMessage(ctx, GlobalRoom, content, since)
	if err != nil {
		logger.Error("Join announcement check failed for %s: %v", s.Username, err)
		return
	}
	if recent {
		return
	}

	sender := storage.SystemUsername
	msg := &models.Message{RoomName: GlobalRoom, Sender: &sender, Content: content}
	if err := s.hub.Storage.SaveMessage(ctx, msg); err != nil {
		return
	}

	formatted := formatMessage(msg.CreatedAt, sender, content)
	s.hub.Router.Publish(s.roomChannel, models.NewChatEvent(formatted))
}

// replayHistory sends the room's persisted messages, oldest first, to the
// connecting client only. The session's own join announcement is excluded
// so the user does not greet themselves.
func (s *Session) replayHistory(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, config.StoreTimeout)
	defer cancel()

	msgs, err := s.hub.Storage.MessagesByRoom(ctx, s.RoomName)
	if err != nil {
		logger.Error("History replay failed for room %s: %v", s.RoomName, err)
		return
	}

	ownAnnouncement := joinAnnouncement(s.Username)
	for _, msg := range msgs {
		if msg.Content == ownAnnouncement {
			continue
		}
		sender := storage.SystemUsername
		if msg.Sender != nil {
			sender = *msg.Sender
		}
		formatted := formatMessage(msg.CreatedAt, sender, msg.Content)
		data, err := json.Marshal(models.NewChatEvent(formatted))
		if err != nil {
			continue
		}
		select {
		case s.client.GetSendChannel() <- data:
		default:
			// The client cannot even absorb its own replay; give up on it.
			s.client.Close()
			return
		}
	}
}

// Inbound handles one raw frame from the client. Malformed or empty frames
// are dropped silently. The message is persisted before any broadcast: if
// persistence fails nobody sees it, including the sender.
func (s *Session) Inbound(ctx context.Context, raw []byte) {
	var frame models.InboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return
	}
	if frame.Message == "" {
		return
	}

	var sender *string
	if s.Authenticated {
		sender = &s.Username
	}

	msg := &models.Message{RoomName: s.RoomName, Sender: sender, Content: frame.Message}

	saveCtx, cancel := context.WithTimeout(ctx, config.StoreTimeout)
	defer cancel()
	if err := s.hub.Storage.SaveMessage(saveCtx, msg); err != nil {
		return
	}

	if target := PrivatePeer(s.RoomName, s.Username); target != "" {
		s.hub.Router.Publish(GlobalChannel, models.NewPrivateAlertEvent(s.Username, target))
	}

	formatted := formatMessage(msg.CreatedAt, s.Username, frame.Message)
	s.hub.Router.Publish(s.roomChannel, models.NewChatEvent(formatted))
}

// Close moves the session to its terminal state: deregistration from the
// registry and both channels, a presence broadcast, and transport teardown.
// Runs exactly once even under concurrent disconnect signals, and must be
// called on abnormal transport failure as well.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.hub.Registry.Leave(s.RoomName, s.ID)
		s.hub.Router.Unsubscribe(s.roomChannel, s.ID)
		s.hub.Router.Unsubscribe(GlobalChannel, s.ID)
		s.hub.forget(s.ID)

		s.hub.Presence.Broadcast(context.Background(), s.roomChannel)
		s.client.Close()

		logger.Info("Session %s: %s left room %s", s.ID, s.Username, s.RoomName)
	})
}

func formatMessage(ts time.Time, sender, content string) string {
	return fmt.Sprintf("[%s] %s: %s", ts.Local().Format(timeLayout), sender, content)
}
