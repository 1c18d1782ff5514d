package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ekdbss/onairmate-sync/internal/domain"
)

func TestResolveRole(t *testing.T) {
	ctx := context.Background()

	repo := &fakeRoomRepo{rooms: map[string]*domain.Room{
		"r1":   {ID: "r1", HostUserID: "42", IsActive: true},
		"dead": {ID: "dead", HostUserID: "42", IsActive: false},
	}}
	authority := NewMembershipAuthority(repo, newFakePresence())

	tests := []struct {
		name    string
		roomID  string
		userID  string
		want    domain.Role
		wantErr error
	}{
		{name: "host", roomID: "r1", userID: "42", want: domain.RoleHost},
		{name: "participant", roomID: "r1", userID: "7", want: domain.RoleParticipant},
		{name: "unknown room", roomID: "ghost", userID: "42", want: domain.RoleNone, wantErr: domain.ErrRoomNotFound},
		{name: "inactive room", roomID: "dead", userID: "42", want: domain.RoleNone, wantErr: domain.ErrRoomNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, room, err := authority.ResolveRole(ctx, tt.roomID, tt.userID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ResolveRole() error = %v, want %v", err, tt.wantErr)
			}
			if role != tt.want {
				t.Errorf("ResolveRole() role = %q, want %q", role, tt.want)
			}
			if err == nil && room == nil {
				t.Error("ResolveRole() must return the room record on success")
			}
		})
	}
}
