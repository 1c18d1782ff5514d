package pubsub

import (
	"context"

	"github.com/ekdbss/onairmate-sync/pkg/pubsub"
)

// RedisBroadcaster publishes room events to the shared Redis fabric so every
// server instance (including this one) delivers them to its local room group.
// Nothing is written to local connections directly; the subscriber does that.
type RedisBroadcaster struct {
	bus pubsub.Publisher
}

// NewRedisBroadcaster creates a broadcaster over the shared event bus.
func NewRedisBroadcaster(bus pubsub.Publisher) *RedisBroadcaster {
	return &RedisBroadcaster{bus: bus}
}

// BroadcastToRoom publishes a room-scoped event. The payload must already be
// a complete client-facing event (carrying its own type field); subscribers
// forward it verbatim.
func (b *RedisBroadcaster) BroadcastToRoom(ctx context.Context, roomID, eventType string, payload interface{}) error {
	event, err := pubsub.NewEvent(eventType, roomID, payload)
	if err != nil {
		return err
	}
	return b.bus.Publish(ctx, pubsub.RoomEventsChannel(roomID), event)
}

// EvictRoom publishes a forced-eviction marker. Each instance detaches its
// local connections from the room group on receipt; the event itself is not
// forwarded to clients.
func (b *RedisBroadcaster) EvictRoom(ctx context.Context, roomID string) error {
	event, err := pubsub.NewEvent(pubsub.EventEvict, roomID, struct{}{})
	if err != nil {
		return err
	}
	return b.bus.Publish(ctx, pubsub.RoomEventsChannel(roomID), event)
}
