package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/ekdbss/onairmate-sync/internal/config"
	"github.com/ekdbss/onairmate-sync/internal/hub"
	"github.com/ekdbss/onairmate-sync/pkg/pubsub"
)

// fakeBus feeds a fixed event channel to the subscriber.
type fakeBus struct {
	events chan *pubsub.Event
}

func (f *fakeBus) Subscribe(ctx context.Context, channel string) (<-chan *pubsub.Event, error) {
	return f.events, nil
}

func (f *fakeBus) SubscribePattern(ctx context.Context, pattern string) (<-chan *pubsub.Event, error) {
	return f.events, nil
}

func (f *fakeBus) Unsubscribe(ctx context.Context, channel string) error { return nil }

func TestSubscriberForwardsRoomEvents(t *testing.T) {
	h := hub.NewHub(config.WebSocketConfig{})
	go h.Run()
	defer h.Stop()

	client := hub.NewClient("c1", h, nil, config.WebSocketConfig{})
	h.JoinRoom(client, "r1")

	bus := &fakeBus{events: make(chan *pubsub.Event, 4)}
	sub := NewSubscriber(bus, h)

	ctx, cancel := context.WithCancel(context.Background())
	go sub.Run(ctx)

	event, err := pubsub.NewEvent(pubsub.EventRoomMessage, "r1", map[string]string{"type": "receiveRoomMessage"})
	if err != nil {
		t.Fatalf("NewEvent() error = %v", err)
	}
	bus.events <- event

	select {
	case data := <-client.Send:
		if string(data) != string(event.Payload) {
			t.Errorf("forwarded payload = %s, want verbatim %s", data, event.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("event was not forwarded to the local room group")
	}

	cancel()
	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("subscriber did not stop on context cancel")
	}
}

func TestSubscriberConsumesEvictionMarker(t *testing.T) {
	h := hub.NewHub(config.WebSocketConfig{})
	go h.Run()
	defer h.Stop()

	client := hub.NewClient("c1", h, nil, config.WebSocketConfig{})
	h.JoinRoom(client, "r1")

	bus := &fakeBus{events: make(chan *pubsub.Event, 4)}
	sub := NewSubscriber(bus, h)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sub.Run(ctx)

	event, err := pubsub.NewEvent(pubsub.EventEvict, "r1", struct{}{})
	if err != nil {
		t.Fatalf("NewEvent() error = %v", err)
	}
	bus.events <- event

	deadline := time.After(time.Second)
	for h.RoomClientCount("r1") != 0 {
		select {
		case <-deadline:
			t.Fatal("room group was not evicted")
		case <-time.After(10 * time.Millisecond):
		}
	}

	// The marker itself must not reach clients.
	select {
	case data := <-client.Send:
		t.Errorf("eviction marker leaked to client: %s", data)
	default:
	}
}
