package service

import (
	"context"
	"errors"

	"github.com/ekdbss/onairmate-sync/internal/domain"
	"github.com/ekdbss/onairmate-sync/internal/repository"
	"github.com/ekdbss/onairmate-sync/internal/store"
)

// MembershipAuthority answers the two different membership questions the
// coordinator asks: role comes from the relational room record; "currently in
// the room" comes from the presence store, which tracks live socket sessions
// rather than historical participation rows.
type MembershipAuthority struct {
	rooms    repository.RoomRepository
	presence store.PresenceRepository
}

// NewMembershipAuthority creates a new membership authority.
func NewMembershipAuthority(rooms repository.RoomRepository, presence store.PresenceRepository) *MembershipAuthority {
	return &MembershipAuthority{rooms: rooms, presence: presence}
}

// ResolveRole resolves a user's role in a room against the room record.
// Returns domain.ErrRoomNotFound when the room is missing or inactive.
func (a *MembershipAuthority) ResolveRole(ctx context.Context, roomID, userID string) (domain.Role, *domain.Room, error) {
	room, err := a.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return domain.RoleNone, nil, domain.ErrRoomNotFound
		}
		return domain.RoleNone, nil, err
	}

	if room.HostUserID == userID {
		return domain.RoleHost, room, nil
	}
	return domain.RoleParticipant, room, nil
}

// IsRoomMember reports whether the user is currently in the room's live
// membership set.
func (a *MembershipAuthority) IsRoomMember(ctx context.Context, roomID, userID string) (bool, error) {
	return a.presence.IsMember(ctx, roomID, userID)
}
