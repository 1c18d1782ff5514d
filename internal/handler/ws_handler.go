package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ekdbss/onairmate-sync/internal/auth"
	"github.com/ekdbss/onairmate-sync/internal/config"
	"github.com/ekdbss/onairmate-sync/internal/domain"
	"github.com/ekdbss/onairmate-sync/internal/hub"
	"github.com/ekdbss/onairmate-sync/internal/service"
	"github.com/ekdbss/onairmate-sync/pkg/log"
	"github.com/ekdbss/onairmate-sync/pkg/response"
)

// WSHandler is the connection gateway: it authenticates the upgrade request,
// starts the pumps, and dispatches inbound events to the coordinator.
type WSHandler struct {
	hub      *hub.Hub
	service  service.SyncService
	verifier auth.Verifier
	wsConfig config.WebSocketConfig
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WebSocket gateway.
func NewWSHandler(h *hub.Hub, svc service.SyncService, verifier auth.Verifier, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		hub:      h,
		service:  svc,
		verifier: verifier,
		wsConfig: wsCfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for now
			},
		},
	}
}

// HandleWebSocket handles authentication, upgrade, and connection setup.
// Authentication runs before the upgrade so an invalid credential never gets
// a socket.
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	l := log.Ctx(r.Context())

	identity, err := h.verifier.Verify(bearerToken(r))
	if err != nil {
		response.Unauthorized(w, "authentication failed")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), h.hub, conn, h.wsConfig)
	client.UserID = identity.UserID
	client.Nickname = identity.Nickname

	h.hub.Register(client)

	ctx := context.Background()
	if err := h.service.HandleConnect(ctx, client); err != nil {
		l.Error().Err(err).Str(log.FieldUserID, client.UserID).Msg("connect hook failed")
	}

	l.Info().
		Str(log.FieldConnID, client.ID).
		Str(log.FieldUserID, client.UserID).
		Msg("websocket connected")

	go client.WritePump()
	go func() {
		client.ReadPump(h.handleMessage)
		h.onDisconnect(client)
	}()
}

// bearerToken pulls the credential from the Authorization header or, for
// browser WebSocket clients that cannot set headers, the token query param.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

func (h *WSHandler) handleMessage(c *hub.Client, message []byte) {
	ctx := context.Background()
	l := log.L()

	var base domain.BaseEvent
	if err := json.Unmarshal(message, &base); err != nil {
		c.SendMessage(domain.NewErrorEvent("", domain.CodeBadRequest, "invalid message format"))
		return
	}

	switch base.Type {
	case domain.EvtJoinRoom:
		var evt domain.JoinRoomEvent
		if err := json.Unmarshal(message, &evt); err != nil {
			c.SendMessage(domain.NewErrorEvent(base.Type, domain.CodeBadRequest, "invalid joinRoom event"))
			return
		}
		if err := h.service.HandleJoinRoom(ctx, c, evt.RoomID, evt.Nickname); err != nil {
			l.Error().Err(err).Str(log.FieldEvent, base.Type).Msg("join handler error")
		}

	case domain.EvtEnterRoom:
		var evt domain.EnterRoomEvent
		if err := json.Unmarshal(message, &evt); err != nil {
			c.SendMessage(domain.NewErrorEvent(base.Type, domain.CodeBadRequest, "invalid enterRoom event"))
			return
		}
		if err := h.service.HandleEnterRoom(ctx, c, evt.RoomID, evt.Nickname); err != nil {
			l.Error().Err(err).Str(log.FieldEvent, base.Type).Msg("enter handler error")
		}

	case domain.EvtLeaveRoom:
		var evt domain.LeaveRoomEvent
		if err := json.Unmarshal(message, &evt); err != nil {
			c.SendMessage(domain.NewErrorEvent(base.Type, domain.CodeBadRequest, "invalid leaveRoom event"))
			return
		}
		if err := h.service.HandleLeaveRoom(ctx, c, evt.RoomID); err != nil {
			l.Error().Err(err).Str(log.FieldEvent, base.Type).Msg("leave handler error")
		}

	case domain.EvtSendMessage:
		var evt domain.SendMessageEvent
		if err := json.Unmarshal(message, &evt); err != nil {
			c.SendMessage(domain.NewErrorEvent(base.Type, domain.CodeBadRequest, "invalid sendRoomMessage event"))
			return
		}
		if evt.MessageType == "" {
			evt.MessageType = string(domain.MessageGeneral)
		}
		if err := h.service.HandleRoomMessage(ctx, c, evt.RoomID, evt.Content, evt.MessageType); err != nil {
			l.Error().Err(err).Str(log.FieldEvent, base.Type).Msg("message handler error")
		}

	case domain.EvtVideoPlay:
		var evt domain.VideoControlEvent
		if err := json.Unmarshal(message, &evt); err != nil {
			c.SendMessage(domain.NewErrorEvent(base.Type, domain.CodeBadRequest, "invalid video:play event"))
			return
		}
		if err := h.service.HandleVideoPlay(ctx, c, evt.RoomID, evt.CurrentTime); err != nil {
			l.Error().Err(err).Str(log.FieldEvent, base.Type).Msg("play handler error")
		}

	case domain.EvtVideoPause:
		var evt domain.VideoControlEvent
		if err := json.Unmarshal(message, &evt); err != nil {
			c.SendMessage(domain.NewErrorEvent(base.Type, domain.CodeBadRequest, "invalid video:pause event"))
			return
		}
		if err := h.service.HandleVideoPause(ctx, c, evt.RoomID, evt.CurrentTime); err != nil {
			l.Error().Err(err).Str(log.FieldEvent, base.Type).Msg("pause handler error")
		}

	case domain.EvtVideoSync:
		var evt domain.VideoControlEvent
		if err := json.Unmarshal(message, &evt); err != nil {
			c.SendMessage(domain.NewErrorEvent(base.Type, domain.CodeBadRequest, "invalid video:sync event"))
			return
		}
		if err := h.service.HandleVideoSync(ctx, c, evt.RoomID, evt.CurrentTime); err != nil {
			l.Error().Err(err).Str(log.FieldEvent, base.Type).Msg("sync handler error")
		}

	case domain.EvtPing:
		c.SendMessage(domain.BaseEvent{Type: domain.EvtPong})

	default:
		c.SendMessage(domain.NewErrorEvent(base.Type, domain.CodeBadRequest, "unknown event type: "+base.Type))
	}
}

// onDisconnect runs once per connection, after its read pump exits.
func (h *WSHandler) onDisconnect(c *hub.Client) {
	ctx := context.Background()
	l := log.L()
	if err := h.service.HandleDisconnect(ctx, c); err != nil {
		l.Error().Err(err).
			Str(log.FieldConnID, c.ID).
			Str(log.FieldUserID, c.UserID).
			Msg("disconnect cleanup error")
	}
	l.Info().
		Str(log.FieldConnID, c.ID).
		Str(log.FieldUserID, c.UserID).
		Msg("websocket disconnected")
}
