package domain

import "errors"

// Error codes delivered to clients in ErrorEvent payloads.
const (
	CodeMissingField     = "MISSING_FIELD"
	CodeNotAuthenticated = "NOT_AUTHENTICATED"
	CodeNotARoomMember   = "NOT_A_ROOM_MEMBER"
	CodeNotHost          = "NOT_HOST"
	CodeRoomNotFound     = "ROOM_NOT_FOUND"
	CodeRoomFull         = "ROOM_FULL"
	CodeBadRequest       = "BAD_REQUEST"
	CodeOperationFailed  = "OPERATION_FAILED"
)

// Sentinel errors for the room session coordinator.
var (
	ErrMissingField     = errors.New("required field is missing")
	ErrNotAuthenticated = errors.New("connection is not authenticated")
	ErrNotARoomMember   = errors.New("user is not a member of the room")
	ErrNotHost          = errors.New("user is not the host of the room")
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomFull         = errors.New("room is at capacity")
	ErrStoreFailure     = errors.New("presence store operation failed")
)

// CodeFor maps a coordinator error to its client-facing code.
func CodeFor(err error) string {
	switch {
	case errors.Is(err, ErrMissingField):
		return CodeMissingField
	case errors.Is(err, ErrNotAuthenticated):
		return CodeNotAuthenticated
	case errors.Is(err, ErrNotARoomMember):
		return CodeNotARoomMember
	case errors.Is(err, ErrNotHost):
		return CodeNotHost
	case errors.Is(err, ErrRoomNotFound):
		return CodeRoomNotFound
	case errors.Is(err, ErrRoomFull):
		return CodeRoomFull
	default:
		return CodeOperationFailed
	}
}
