package pubsub

import "fmt"

// Channel naming conventions for the realtime sync backend.
const (
	// Per-room event channel carrying everything a room's members observe:
	// membership changes, chat messages, playback transitions, evictions.
	ChannelRoomEvents = "sync:room:%s:events"

	// Pattern every server instance subscribes to.
	PatternRoomEvents = "sync:room:*:events"
)

// RoomEventsChannel returns the channel name for a single room's events.
func RoomEventsChannel(roomID string) string {
	return fmt.Sprintf(ChannelRoomEvents, roomID)
}

// Event types carried on room channels. Broadcast events mirror the
// WebSocket event names so subscribers can forward them verbatim;
// Evict is consumed by each instance rather than forwarded.
const (
	EventUserJoined  = "userJoined"
	EventUserLeft    = "userLeft"
	EventRoomMessage = "receiveRoomMessage"
	EventVideoPlay   = "video:play"
	EventVideoPause  = "video:pause"
	EventEvict       = "evictRoom"
)
