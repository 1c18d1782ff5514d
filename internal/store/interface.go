package store

import (
	"context"

	"github.com/ekdbss/onairmate-sync/internal/domain"
)

// PresenceRepository is the fast shared store for live room state: membership
// sets, user connection bindings, reverse user->room sets, and per-room video
// playback snapshots. It is the source of truth for "currently in the room",
// distinct from the relational participant history.
type PresenceRepository interface {
	// AddMember adds a user to a room's live membership set.
	AddMember(ctx context.Context, roomID, userID string) error

	// RemoveMember removes a user from a room's live membership set.
	RemoveMember(ctx context.Context, roomID, userID string) error

	// IsMember reports whether a user is in a room's live membership set.
	IsMember(ctx context.Context, roomID, userID string) (bool, error)

	// Members returns the user IDs currently in a room.
	Members(ctx context.Context, roomID string) ([]string, error)

	// MemberCount returns the live participant count for a room.
	MemberCount(ctx context.Context, roomID string) (int, error)

	// PurgeRoom removes the room's membership set and video state, and clears
	// the room from every member's reverse room set. Safe to call twice.
	PurgeRoom(ctx context.Context, roomID string) error

	// BindConnection records userID -> connID. A new binding silently
	// supersedes the previous one (one live connection per user).
	BindConnection(ctx context.Context, userID, connID string) error

	// Connection returns the live connection handle for a user, or "" if none.
	Connection(ctx context.Context, userID string) (string, error)

	// UnbindConnection deletes the binding only if it still holds connID,
	// so a stale connection's cleanup cannot clear a newer binding.
	// Returns whether a binding was removed.
	UnbindConnection(ctx context.Context, userID, connID string) (bool, error)

	// AddUserRoom records roomID in the user's reverse room set.
	AddUserRoom(ctx context.Context, userID, roomID string) error

	// RemoveUserRoom removes roomID from the user's reverse room set.
	RemoveUserRoom(ctx context.Context, userID, roomID string) error

	// UserRooms returns the rooms the user is currently bound to.
	UserRooms(ctx context.Context, userID string) ([]string, error)

	// SetOnline marks a user as online.
	SetOnline(ctx context.Context, userID string) error

	// SetOffline marks a user as offline.
	SetOffline(ctx context.Context, userID string) error

	// SetVideoState writes the full playback snapshot for a room.
	SetVideoState(ctx context.Context, state *domain.PlaybackState) error

	// GetVideoState returns the playback snapshot for a room, or nil if absent.
	GetVideoState(ctx context.Context, roomID string) (*domain.PlaybackState, error)

	// UpdateVideoTime updates only the stored time and timestamp (host heartbeat).
	UpdateVideoTime(ctx context.Context, roomID string, timeSeconds, updatedAt int64) error

	// DeleteVideoState removes the playback snapshot for a room.
	DeleteVideoState(ctx context.Context, roomID string) error

	// Close closes the store connection.
	Close() error
}
