package domain

// WebSocket event types from client.
const (
	EvtJoinRoom    = "joinRoom"
	EvtEnterRoom   = "enterRoom"
	EvtLeaveRoom   = "leaveRoom"
	EvtSendMessage = "sendRoomMessage"
	EvtVideoPlay   = "video:play"
	EvtVideoPause  = "video:pause"
	EvtVideoSync   = "video:sync"
	EvtPing        = "ping"
)

// WebSocket event types to client.
const (
	EvtRoomEnterSuccess = "roomEnterSuccess"
	EvtUserJoined       = "userJoined"
	EvtUserLeft         = "userLeft"
	EvtReceiveMessage   = "receiveRoomMessage"
	EvtError            = "error"
	EvtPong             = "pong"
)

// BaseEvent is the envelope shared by all WebSocket messages.
type BaseEvent struct {
	Type string `json:"type"`
}

// Client -> Server events

// JoinRoomEvent requests first-time membership in a room.
type JoinRoomEvent struct {
	Type     string `json:"type"`
	RoomID   string `json:"roomId"`
	Nickname string `json:"nickname"`
}

// EnterRoomEvent rebinds a reconnecting member to a room it already belongs to.
type EnterRoomEvent struct {
	Type     string `json:"type"`
	RoomID   string `json:"roomId"`
	Nickname string `json:"nickname"`
}

// LeaveRoomEvent removes the caller from a room.
type LeaveRoomEvent struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}

// SendMessageEvent posts a chat message to a room.
type SendMessageEvent struct {
	Type        string `json:"type"`
	RoomID      string `json:"roomId"`
	Content     string `json:"content"`
	MessageType string `json:"messageType"`
}

// VideoControlEvent carries host playback commands (play, pause, sync).
type VideoControlEvent struct {
	Type        string  `json:"type"`
	RoomID      string  `json:"roomId"`
	CurrentTime float64 `json:"currentTime"`
}

// Server -> Client events

// RoomEnterSuccessEvent confirms a join or enter, carrying the resolved role.
type RoomEnterSuccessEvent struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
	Role   Role   `json:"role"`
}

// UserJoinedEvent is broadcast to a room when membership grows.
type UserJoinedEvent struct {
	Type             string `json:"type"`
	RoomID           string `json:"roomId"`
	UserID           string `json:"userId"`
	Nickname         string `json:"nickname"`
	ParticipantCount int    `json:"participantCount"`
}

// UserLeftEvent is broadcast to a room when membership shrinks.
type UserLeftEvent struct {
	Type             string   `json:"type"`
	RoomID           string   `json:"roomId"`
	UserID           string   `json:"userId"`
	Role             Role     `json:"role"`
	RoomParticipants []string `json:"roomParticipants"`
	ParticipantCount int      `json:"participantCount"`
}

// ReceiveMessageEvent is broadcast to a room after a chat message persists.
type ReceiveMessageEvent struct {
	Type    string      `json:"type"`
	Message RoomMessage `json:"message"`
}

// VideoStateEvent is broadcast on host play/pause, and sent directly to a
// (re)joining participant as a video:sync with the extrapolated position.
type VideoStateEvent struct {
	Type        string  `json:"type"`
	RoomID      string  `json:"roomId"`
	CurrentTime float64 `json:"currentTime"`
	IsPlaying   bool    `json:"isPlaying"`
	UpdatedAt   int64   `json:"updatedAt"` // epoch millis, for client-side extrapolation
}

// ErrorEvent is delivered only to the connection that caused it.
type ErrorEvent struct {
	Type    string `json:"type"`
	Context string `json:"context"` // the inbound event that failed
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewErrorEvent creates an error event for the given inbound event context.
func NewErrorEvent(context, code, message string) *ErrorEvent {
	return &ErrorEvent{
		Type:    EvtError,
		Context: context,
		Code:    code,
		Message: message,
	}
}
