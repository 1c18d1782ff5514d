package service

import (
	"context"

	"github.com/ekdbss/onairmate-sync/internal/domain"
	"github.com/ekdbss/onairmate-sync/internal/hub"
)

// Broadcaster is the fan-out fabric for room events across the whole server
// pool. It is injected into the coordinator at construction; delivery to
// local connections happens via each instance's subscriber.
type Broadcaster interface {
	// BroadcastToRoom delivers a complete client-facing event to every
	// connection in the room's group, on every instance.
	BroadcastToRoom(ctx context.Context, roomID, eventType string, payload interface{}) error

	// EvictRoom detaches every connection in the room's group, on every
	// instance, without closing the underlying connections.
	EvictRoom(ctx context.Context, roomID string) error
}

// SyncService is the room session coordinator: one handler per inbound event,
// mutating the presence store and fanning results out to the room.
type SyncService interface {
	// HandleConnect is the gateway's online-tracking hook, run after a
	// connection authenticates.
	HandleConnect(ctx context.Context, c *hub.Client) error

	// HandleJoinRoom grants first-time membership and announces it.
	HandleJoinRoom(ctx context.Context, c *hub.Client, roomID, nickname string) error

	// HandleEnterRoom rebinds a reconnecting member; it never creates membership.
	HandleEnterRoom(ctx context.Context, c *hub.Client, roomID, nickname string) error

	// HandleLeaveRoom removes the caller from the room; a leaving host tears
	// the whole room session down.
	HandleLeaveRoom(ctx context.Context, c *hub.Client, roomID string) error

	// HandleRoomMessage persists and broadcasts a chat message.
	HandleRoomMessage(ctx context.Context, c *hub.Client, roomID, content, messageType string) error

	// HandleVideoPlay processes a host play command.
	HandleVideoPlay(ctx context.Context, c *hub.Client, roomID string, currentTime float64) error

	// HandleVideoPause processes a host pause command.
	HandleVideoPause(ctx context.Context, c *hub.Client, roomID string, currentTime float64) error

	// HandleVideoSync records the host's periodic position heartbeat.
	HandleVideoSync(ctx context.Context, c *hub.Client, roomID string, currentTime float64) error

	// HandleDisconnect runs the implicit-leave cleanup for a dropped
	// connection. It must be safe to run more than once.
	HandleDisconnect(ctx context.Context, c *hub.Client) error

	// RoomPresence returns the live membership snapshot for a room.
	RoomPresence(ctx context.Context, roomID string) (*domain.RoomPresenceInfo, error)

	// RoomPlayback returns the stored playback snapshot with its extrapolated
	// position, or nil when the room has no playback session.
	RoomPlayback(ctx context.Context, roomID string) (*domain.PlaybackInfo, error)

	// MessageHistory returns the most recent chat messages for a room.
	MessageHistory(ctx context.Context, roomID string, limit int) ([]domain.RoomMessage, error)
}
