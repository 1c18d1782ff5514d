package domain

import "time"

// Role is a user's role within a room.
type Role string

const (
	RoleHost        Role = "host"
	RoleParticipant Role = "participant"
	RoleNone        Role = "none"
)

// Room is the relational room record. The realtime core only reads it: host
// identity, activity flag, capacity, and the bookmarked start offset.
type Room struct {
	ID               string    `json:"id"`
	HostUserID       string    `json:"hostUserId"`
	Title            string    `json:"title"`
	IsActive         bool      `json:"isActive"`
	MaxParticipants  int       `json:"maxParticipants"`
	StartTimeSeconds int64     `json:"startTimeSeconds"`
	CreatedAt        time.Time `json:"createdAt"`
}

// MessageType classifies room chat messages.
type MessageType string

const (
	MessageGeneral MessageType = "general"
	MessageSystem  MessageType = "system"
)

// ValidMessageType reports whether t is an accepted chat message type.
func ValidMessageType(t string) bool {
	switch MessageType(t) {
	case MessageGeneral, MessageSystem:
		return true
	}
	return false
}

// RoomMessage is a persisted chat message with its server-assigned identity.
type RoomMessage struct {
	ID          string      `json:"id"`
	RoomID      string      `json:"roomId"`
	UserID      string      `json:"userId"`
	Nickname    string      `json:"nickname"`
	Content     string      `json:"content"`
	MessageType MessageType `json:"messageType"`
	CreatedAt   time.Time   `json:"createdAt"`
}
