package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodeFor(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrMissingField, CodeMissingField},
		{ErrNotAuthenticated, CodeNotAuthenticated},
		{ErrNotARoomMember, CodeNotARoomMember},
		{ErrNotHost, CodeNotHost},
		{ErrRoomNotFound, CodeRoomNotFound},
		{ErrRoomFull, CodeRoomFull},
		{ErrStoreFailure, CodeOperationFailed},
		{errors.New("anything else"), CodeOperationFailed},
		{fmt.Errorf("wrapped: %w", ErrRoomFull), CodeRoomFull},
	}

	for _, tt := range tests {
		if got := CodeFor(tt.err); got != tt.want {
			t.Errorf("CodeFor(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
