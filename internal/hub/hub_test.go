package hub

import (
	"testing"
	"time"

	"github.com/ekdbss/onairmate-sync/internal/config"
)

func testClient(id string, h *Hub) *Client {
	return NewClient(id, h, nil, config.WebSocketConfig{})
}

func TestRoomGroupMembership(t *testing.T) {
	h := NewHub(config.WebSocketConfig{})

	a := testClient("a", h)
	b := testClient("b", h)

	h.JoinRoom(a, "r1")
	h.JoinRoom(b, "r1")
	if n := h.RoomClientCount("r1"); n != 2 {
		t.Fatalf("RoomClientCount = %d, want 2", n)
	}

	h.LeaveRoom(a, "r1")
	if n := h.RoomClientCount("r1"); n != 1 {
		t.Fatalf("RoomClientCount after leave = %d, want 1", n)
	}

	// Leaving a room you are not in is harmless.
	h.LeaveRoom(a, "r1")
	if n := h.RoomClientCount("r1"); n != 1 {
		t.Fatalf("RoomClientCount after duplicate leave = %d, want 1", n)
	}
}

func TestEvictRoom(t *testing.T) {
	h := NewHub(config.WebSocketConfig{})

	a := testClient("a", h)
	b := testClient("b", h)
	c := testClient("c", h)
	h.JoinRoom(a, "r1")
	h.JoinRoom(b, "r1")
	h.JoinRoom(c, "r1")

	h.EvictRoom("r1", "b")
	if n := h.RoomClientCount("r1"); n != 1 {
		t.Fatalf("RoomClientCount after evict = %d, want only the excluded client", n)
	}

	h.EvictRoom("r1", "")
	if n := h.RoomClientCount("r1"); n != 0 {
		t.Fatalf("RoomClientCount after full evict = %d, want 0", n)
	}

	// Evicting an unknown room is a no-op.
	h.EvictRoom("ghost", "")
}

func TestBroadcastAfterStopDoesNotBlock(t *testing.T) {
	h := NewHub(config.WebSocketConfig{})
	h.Stop()

	// Push past the broadcast buffer; with the event loop gone these must
	// still return instead of blocking forever.
	for i := 0; i < cap(h.broadcast)+8; i++ {
		if err := h.BroadcastToRoom("r1", map[string]string{"type": "x"}, ""); err != nil {
			t.Fatalf("BroadcastToRoom() error = %v", err)
		}
		h.BroadcastRawToRoom("r1", []byte("x"), "")
	}

	c := testClient("a", h)
	done := make(chan struct{})
	go func() {
		h.removeClient(c)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("removeClient blocked after Stop")
	}
}

func TestSendMessageDropsWhenBufferFull(t *testing.T) {
	h := NewHub(config.WebSocketConfig{})
	c := testClient("a", h)

	// Fill the buffered send channel.
	for i := 0; i < cap(c.Send); i++ {
		c.Send <- []byte("x")
	}

	// One more queues nowhere but must not block or error.
	if err := c.SendMessage(map[string]string{"type": "pong"}); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if len(c.Send) != cap(c.Send) {
		t.Fatalf("send buffer length = %d, want still %d", len(c.Send), cap(c.Send))
	}
}
