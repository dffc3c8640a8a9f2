package models

import "gorm.io/gorm"

// Message is one persisted chat message. The embedded gorm.Model provides
// the primary key and CreatedAt, which doubles as the message timestamp.
// Rows are append-only: the core never updates or deletes them.
type Message struct {
	gorm.Model

	// RoomName is the canonical room the message belongs to.
	RoomName string `gorm:"type:text;not null;index"`
	// Sender is the username of the author. Nil for messages sent by
	// unauthenticated guests; rendered as "System" on replay.
	Sender *string `gorm:"type:text;index"`
	// Content is the message text.
	Content string `gorm:"type:text;not null"`
}
