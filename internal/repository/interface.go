package repository

import (
	"context"
	"errors"

	"github.com/ekdbss/onairmate-sync/internal/domain"
)

// ErrRoomNotFound is returned when a room does not exist in the store of record.
var ErrRoomNotFound = errors.New("room not found")

// RoomRepository reads room records from the relational store. The realtime
// core never writes rooms; the REST surface owns their lifecycle.
type RoomRepository interface {
	// GetByID retrieves an active room by ID. Returns ErrRoomNotFound when the
	// room is missing or no longer active.
	GetByID(ctx context.Context, id string) (*domain.Room, error)
}

// MessageRepository persists room chat messages and serves their history.
type MessageRepository interface {
	// Create persists a message, filling in its server-assigned ID and timestamp.
	Create(ctx context.Context, msg *domain.RoomMessage) error

	// ListByRoom returns the most recent messages for a room, newest first.
	ListByRoom(ctx context.Context, roomID string, limit int) ([]domain.RoomMessage, error)
}
