package hub

import (
	"encoding/json"
	"sync"

	"github.com/ekdbss/onairmate-sync/internal/config"
	"github.com/ekdbss/onairmate-sync/pkg/log"
)

// Hub owns every live connection on this instance and the per-room broadcast
// groups. It is handed to the coordinator at construction; there is no global
// connection singleton.
type Hub struct {
	clients    map[string]*Client            // clientID -> client
	rooms      map[string]map[string]*Client // roomID -> clientID -> client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *RoomMessage
	done       chan struct{}
	mu         sync.RWMutex
	config     config.WebSocketConfig
}

// RoomMessage is a payload addressed to every connection in one room group.
type RoomMessage struct {
	RoomID  string
	Message []byte
	Exclude string // client ID to exclude
}

func NewHub(cfg config.WebSocketConfig) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *RoomMessage, 256),
		done:       make(chan struct{}),
		config:     cfg,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			l := log.L()
			l.Debug().Str(log.FieldConnID, client.ID).Msg("client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				for roomID, roomClients := range h.rooms {
					delete(roomClients, client.ID)
					if len(roomClients) == 0 {
						delete(h.rooms, roomID)
					}
				}
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()
			l := log.L()
			l.Debug().Str(log.FieldConnID, client.ID).Msg("client unregistered")

		case msg := <-h.broadcast:
			h.mu.RLock()
			if roomClients, ok := h.rooms[msg.RoomID]; ok {
				for clientID, client := range roomClients {
					if clientID == msg.Exclude {
						continue
					}
					select {
					case client.Send <- msg.Message:
					default:
						go h.removeClient(client)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// JoinRoom binds a connection to a room's broadcast group.
func (h *Hub) JoinRoom(client *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[string]*Client)
	}
	h.rooms[roomID][client.ID] = client
	l := log.L()
	l.Info().Str(log.FieldConnID, client.ID).Str(log.FieldRoomID, roomID).Msg("client joined room group")
}

// LeaveRoom removes a connection from a room's broadcast group.
func (h *Hub) LeaveRoom(client *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if roomClients, ok := h.rooms[roomID]; ok {
		delete(roomClients, client.ID)
		if len(roomClients) == 0 {
			delete(h.rooms, roomID)
		}
	}
	l := log.L()
	l.Info().Str(log.FieldConnID, client.ID).Str(log.FieldRoomID, roomID).Msg("client left room group")
}

// EvictRoom detaches every connection in the room's group, except excludeID.
// Connections stay open; they just stop receiving room traffic.
func (h *Hub) EvictRoom(roomID, excludeID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	roomClients, ok := h.rooms[roomID]
	if !ok {
		return
	}
	for clientID := range roomClients {
		if clientID == excludeID {
			continue
		}
		delete(roomClients, clientID)
	}
	if len(roomClients) == 0 {
		delete(h.rooms, roomID)
	}
	l := log.L()
	l.Info().Str(log.FieldRoomID, roomID).Msg("room group evicted")
}

// BroadcastToRoom sends a message to every local connection in the room group.
func (h *Hub) BroadcastToRoom(roomID string, message interface{}, exclude string) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	select {
	case h.broadcast <- &RoomMessage{RoomID: roomID, Message: data, Exclude: exclude}:
	case <-h.done:
	}
	return nil
}

// BroadcastRawToRoom sends raw bytes to every local connection in the room group.
func (h *Hub) BroadcastRawToRoom(roomID string, data []byte, exclude string) {
	select {
	case h.broadcast <- &RoomMessage{RoomID: roomID, Message: data, Exclude: exclude}:
	case <-h.done:
	}
}

// RoomClientCount returns the number of local connections in a room group.
func (h *Hub) RoomClientCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if roomClients, ok := h.rooms[roomID]; ok {
		return len(roomClients)
	}
	return 0
}

func (h *Hub) removeClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Stop terminates the event loop and closes every connection. Pump goroutines
// exit on their own once the underlying sockets close.
func (h *Hub) Stop() {
	close(h.done)

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, client := range h.clients {
		client.Conn.Close()
	}
	h.clients = make(map[string]*Client)
	h.rooms = make(map[string]map[string]*Client)
}
