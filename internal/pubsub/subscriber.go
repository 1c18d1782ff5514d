package pubsub

import (
	"context"
	"time"

	"github.com/ekdbss/onairmate-sync/internal/hub"
	pkglog "github.com/ekdbss/onairmate-sync/pkg/log"
	"github.com/ekdbss/onairmate-sync/pkg/pubsub"
)

// Subscriber listens on the shared room-events pattern and delivers each
// event to this instance's local room group. Eviction markers are consumed
// here instead of being forwarded.
type Subscriber struct {
	bus    pubsub.Subscriber
	hub    *hub.Hub
	doneCh chan struct{}
}

// NewSubscriber creates a new room-events subscriber for this instance.
func NewSubscriber(bus pubsub.Subscriber, h *hub.Hub) *Subscriber {
	return &Subscriber{
		bus:    bus,
		hub:    h,
		doneCh: make(chan struct{}),
	}
}

// Done returns a channel that is closed when Run() exits.
func (s *Subscriber) Done() <-chan struct{} { return s.doneCh }

// Run subscribes to the room-events pattern and fans events out to the local
// hub until ctx is done. Reconnects when the subscription drops.
func (s *Subscriber) Run(ctx context.Context) {
	defer close(s.doneCh)
	l := pkglog.L()

	for {
		if err := s.runSubscription(ctx); err != nil && ctx.Err() == nil {
			l.Warn().Err(err).Msg("room events subscription error, reconnecting in 2s")
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
				continue
			}
		}
		if ctx.Err() != nil {
			return
		}
		// Subscription channel closed without a context cancel; resubscribe.
		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
}

func (s *Subscriber) runSubscription(ctx context.Context) error {
	events, err := s.bus.SubscribePattern(ctx, pubsub.PatternRoomEvents)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			s.handleEvent(event)
		}
	}
}

func (s *Subscriber) handleEvent(event *pubsub.Event) {
	if event.RoomID == "" {
		return
	}

	if event.Type == pubsub.EventEvict {
		s.hub.EvictRoom(event.RoomID, "")
		l := pkglog.L()
		l.Info().Str(pkglog.FieldRoomID, event.RoomID).Msg("room evicted by remote event")
		return
	}

	s.hub.BroadcastRawToRoom(event.RoomID, event.Payload, "")
}
