package pubsub

import "testing"

func TestEventPayloadRoundTrip(t *testing.T) {
	type payload struct {
		UserID string `json:"userId"`
		Count  int    `json:"count"`
	}

	event, err := NewEvent(EventUserJoined, "r1", payload{UserID: "42", Count: 3})
	if err != nil {
		t.Fatalf("NewEvent() error = %v", err)
	}
	if event.Type != EventUserJoined || event.RoomID != "r1" {
		t.Errorf("event = %+v", event)
	}
	if event.Timestamp.IsZero() {
		t.Error("NewEvent() must stamp the event")
	}

	var got payload
	if err := event.UnmarshalPayload(&got); err != nil {
		t.Fatalf("UnmarshalPayload() error = %v", err)
	}
	if got.UserID != "42" || got.Count != 3 {
		t.Errorf("payload = %+v", got)
	}
}

func TestRoomEventsChannel(t *testing.T) {
	if got := RoomEventsChannel("abc"); got != "sync:room:abc:events" {
		t.Errorf("RoomEventsChannel() = %q", got)
	}
}
