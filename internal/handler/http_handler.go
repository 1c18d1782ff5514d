package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ekdbss/onairmate-sync/internal/domain"
	"github.com/ekdbss/onairmate-sync/internal/service"
	"github.com/ekdbss/onairmate-sync/pkg/log"
	"github.com/ekdbss/onairmate-sync/pkg/response"
)

// HTTPHandler serves the read-only room state API.
type HTTPHandler struct {
	service service.SyncService
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(svc service.SyncService) *HTTPHandler {
	return &HTTPHandler{service: svc}
}

// RegisterRoutes mounts the API on the given router.
func (h *HTTPHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/rooms/{room_id}/presence", h.GetPresence).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{room_id}/playback", h.GetPlayback).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{room_id}/messages", h.GetMessages).Methods(http.MethodGet)
}

// GetPresence handles GET /api/v1/rooms/{room_id}/presence
func (h *HTTPHandler) GetPresence(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["room_id"]
	if roomID == "" {
		response.BadRequest(w, "room_id is required")
		return
	}

	info, err := h.service.RoomPresence(r.Context(), roomID)
	if err != nil {
		l := log.Ctx(r.Context())
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("presence query failed")
		response.InternalError(w, "failed to get room presence")
		return
	}

	response.Success(w, info)
}

// PlaybackResponse is the API shape for a room's playback snapshot.
type PlaybackResponse struct {
	RoomID      string  `json:"roomId"`
	IsPlaying   bool    `json:"isPlaying"`
	CurrentTime float64 `json:"currentTime"`
	UpdatedAt   int64   `json:"updatedAt"`
}

// GetPlayback handles GET /api/v1/rooms/{room_id}/playback
func (h *HTTPHandler) GetPlayback(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["room_id"]
	if roomID == "" {
		response.BadRequest(w, "room_id is required")
		return
	}

	info, err := h.service.RoomPlayback(r.Context(), roomID)
	if err != nil {
		l := log.Ctx(r.Context())
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("playback query failed")
		response.InternalError(w, "failed to get room playback")
		return
	}
	if info == nil {
		response.NotFound(w, "no playback session for room")
		return
	}

	response.Success(w, PlaybackResponse{
		RoomID:      roomID,
		IsPlaying:   info.State.IsPlaying(),
		CurrentTime: info.Position,
		UpdatedAt:   info.State.UpdatedAt,
	})
}

// GetMessages handles GET /api/v1/rooms/{room_id}/messages?limit=N
func (h *HTTPHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["room_id"]
	if roomID == "" {
		response.BadRequest(w, "room_id is required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.BadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	messages, err := h.service.MessageHistory(r.Context(), roomID, limit)
	if err != nil {
		l := log.Ctx(r.Context())
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("message history query failed")
		response.InternalError(w, "failed to get room messages")
		return
	}
	if messages == nil {
		messages = []domain.RoomMessage{}
	}

	response.Success(w, messages)
}

// HealthCheck handles GET /health
func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]string{"status": "ok"})
}
