package store

import "testing"

func TestKeyBuilders(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{roomMembersKey("r1"), "sync:room:r1:members"},
		{roomVideoKey("r1"), "sync:room:r1:video"},
		{userConnKey("42"), "sync:user:42:conn"},
		{userRoomsKey("42"), "sync:user:42:rooms"},
		{onlineUsersKey, "sync:online_users"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("key = %q, want %q", tt.got, tt.want)
		}
	}
}
