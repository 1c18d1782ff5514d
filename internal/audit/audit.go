package audit

import (
	"context"

	"github.com/ekdbss/onairmate-sync/pkg/log"
)

// Audit actions for the realtime sync backend.
const (
	ActionRoomTeardown = "room.teardown"
	ActionRoomEvict    = "room.evict"
	ActionUserOnline   = "user.online"
	ActionUserOffline  = "user.offline"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action, userID, roomID, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(log.FieldRoomID, roomID).
		Msg(msg)
}
