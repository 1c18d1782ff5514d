package service

import (
	"context"
	"errors"
	"time"

	"github.com/ekdbss/onairmate-sync/internal/audit"
	"github.com/ekdbss/onairmate-sync/internal/domain"
	"github.com/ekdbss/onairmate-sync/internal/hub"
	"github.com/ekdbss/onairmate-sync/internal/repository"
	"github.com/ekdbss/onairmate-sync/internal/store"
	"github.com/ekdbss/onairmate-sync/internal/stream"
	"github.com/ekdbss/onairmate-sync/pkg/log"
)

type syncService struct {
	hub         *hub.Hub
	presence    store.PresenceRepository
	rooms       repository.RoomRepository
	messages    repository.MessageRepository
	membership  *MembershipAuthority
	broadcaster Broadcaster
	producer    stream.MessageProducer
}

// NewSyncService creates the room session coordinator.
func NewSyncService(
	h *hub.Hub,
	presence store.PresenceRepository,
	rooms repository.RoomRepository,
	messages repository.MessageRepository,
	broadcaster Broadcaster,
	producer stream.MessageProducer,
) SyncService {
	return &syncService{
		hub:         h,
		presence:    presence,
		rooms:       rooms,
		messages:    messages,
		membership:  NewMembershipAuthority(rooms, presence),
		broadcaster: broadcaster,
		producer:    producer,
	}
}

// reject delivers an error event to the requesting connection only. Errors
// are never broadcast.
func (s *syncService) reject(c *hub.Client, evtContext string, err error) error {
	return c.SendMessage(domain.NewErrorEvent(evtContext, domain.CodeFor(err), err.Error()))
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// HandleConnect records the user's connection binding and marks them online.
// A reconnect silently supersedes the previous binding; the stale one is
// cleared by its own disconnect handler, conditionally.
func (s *syncService) HandleConnect(ctx context.Context, c *hub.Client) error {
	l := log.Ctx(ctx)

	if err := s.presence.BindConnection(ctx, c.UserID, c.ID); err != nil {
		l.Error().Err(err).Str(log.FieldUserID, c.UserID).Msg("failed to bind connection")
		return err
	}
	if err := s.presence.SetOnline(ctx, c.UserID); err != nil {
		l.Error().Err(err).Str(log.FieldUserID, c.UserID).Msg("failed to mark user online")
	}

	audit.Log(ctx, audit.ActionUserOnline, c.UserID, "", "user connected")
	return nil
}

func (s *syncService) HandleJoinRoom(ctx context.Context, c *hub.Client, roomID, nickname string) error {
	l := log.Ctx(ctx)

	if roomID == "" || nickname == "" {
		return s.reject(c, domain.EvtJoinRoom, domain.ErrMissingField)
	}

	role, room, err := s.membership.ResolveRole(ctx, roomID, c.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			return s.reject(c, domain.EvtJoinRoom, domain.ErrRoomNotFound)
		}
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("role resolution failed")
		return s.reject(c, domain.EvtJoinRoom, domain.ErrStoreFailure)
	}

	if role == domain.RoleParticipant && room.MaxParticipants > 0 {
		// A duplicate join from an existing member does not grow the room.
		already, err := s.presence.IsMember(ctx, roomID, c.UserID)
		if err != nil {
			l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("membership lookup failed")
			return s.reject(c, domain.EvtJoinRoom, domain.ErrStoreFailure)
		}
		if !already {
			count, err := s.presence.MemberCount(ctx, roomID)
			if err != nil {
				l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to read member count")
				return s.reject(c, domain.EvtJoinRoom, domain.ErrStoreFailure)
			}
			if count >= room.MaxParticipants {
				return s.reject(c, domain.EvtJoinRoom, domain.ErrRoomFull)
			}
		}
	}

	s.hub.JoinRoom(c, roomID)

	if err := s.presence.AddMember(ctx, roomID, c.UserID); err != nil {
		s.hub.LeaveRoom(c, roomID)
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to add member to presence store")
		return s.reject(c, domain.EvtJoinRoom, domain.ErrStoreFailure)
	}
	if err := s.presence.AddUserRoom(ctx, c.UserID, roomID); err != nil {
		// Membership and the reverse set move together; undo the half that
		// committed so no orphaned entry survives the rejection.
		if rerr := s.presence.RemoveMember(ctx, roomID, c.UserID); rerr != nil {
			l.Error().Err(rerr).Str(log.FieldRoomID, roomID).Msg("failed to roll back membership")
		}
		s.hub.LeaveRoom(c, roomID)
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to record reverse room set")
		return s.reject(c, domain.EvtJoinRoom, domain.ErrStoreFailure)
	}

	count, err := s.presence.MemberCount(ctx, roomID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to read member count after join")
	}

	if err := s.broadcaster.BroadcastToRoom(ctx, roomID, domain.EvtUserJoined, &domain.UserJoinedEvent{
		Type:             domain.EvtUserJoined,
		RoomID:           roomID,
		UserID:           c.UserID,
		Nickname:         nickname,
		ParticipantCount: count,
	}); err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to broadcast userJoined")
	}

	if err := c.SendMessage(&domain.RoomEnterSuccessEvent{
		Type:   domain.EvtRoomEnterSuccess,
		RoomID: roomID,
		Role:   role,
	}); err != nil {
		l.Error().Err(err).Msg("failed to send roomEnterSuccess")
	}

	if role == domain.RoleHost {
		s.initHostPlayback(ctx, roomID, room.StartTimeSeconds)
	} else {
		s.sendPlaybackSync(ctx, c, roomID)
	}

	l.Info().
		Str(log.FieldUserID, c.UserID).
		Str(log.FieldRoomID, roomID).
		Str(log.FieldRole, string(role)).
		Msg("user joined room")
	return nil
}

func (s *syncService) HandleEnterRoom(ctx context.Context, c *hub.Client, roomID, nickname string) error {
	l := log.Ctx(ctx)

	if roomID == "" || nickname == "" {
		return s.reject(c, domain.EvtEnterRoom, domain.ErrMissingField)
	}

	// Enter only rebinds; membership must already exist in the presence store.
	isMember, err := s.membership.IsRoomMember(ctx, roomID, c.UserID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("membership lookup failed")
		return s.reject(c, domain.EvtEnterRoom, domain.ErrStoreFailure)
	}
	if !isMember {
		return s.reject(c, domain.EvtEnterRoom, domain.ErrNotARoomMember)
	}

	role, room, err := s.membership.ResolveRole(ctx, roomID, c.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			return s.reject(c, domain.EvtEnterRoom, domain.ErrRoomNotFound)
		}
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("role resolution failed")
		return s.reject(c, domain.EvtEnterRoom, domain.ErrStoreFailure)
	}

	s.hub.JoinRoom(c, roomID)

	if err := c.SendMessage(&domain.RoomEnterSuccessEvent{
		Type:   domain.EvtRoomEnterSuccess,
		RoomID: roomID,
		Role:   role,
	}); err != nil {
		l.Error().Err(err).Msg("failed to send roomEnterSuccess")
	}

	if role == domain.RoleHost {
		s.resumeHostPlayback(ctx, roomID, room.StartTimeSeconds)
	} else {
		s.sendPlaybackSync(ctx, c, roomID)
	}

	l.Info().
		Str(log.FieldUserID, c.UserID).
		Str(log.FieldRoomID, roomID).
		Str(log.FieldRole, string(role)).
		Msg("user re-entered room")
	return nil
}

// initHostPlayback seeds the playback session at the room's bookmarked start
// offset. A failure here is logged, never fatal to the join.
func (s *syncService) initHostPlayback(ctx context.Context, roomID string, startSeconds int64) {
	l := log.Ctx(ctx)
	now := nowMillis()

	state := &domain.PlaybackState{
		RoomID:      roomID,
		Status:      domain.PlaybackPlaying,
		TimeSeconds: startSeconds,
		UpdatedAt:   now,
	}
	if err := s.presence.SetVideoState(ctx, state); err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to initialize playback state")
		return
	}

	// Baseline play event; observers seek from the sync sent on their own join.
	if err := s.broadcaster.BroadcastToRoom(ctx, roomID, domain.EvtVideoPlay, &domain.VideoStateEvent{
		Type:        domain.EvtVideoPlay,
		RoomID:      roomID,
		CurrentTime: 0,
		IsPlaying:   true,
		UpdatedAt:   now,
	}); err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to broadcast playback baseline")
	}
}

// resumeHostPlayback restarts playback at the extrapolated position instead
// of the start offset, and announces the resumed position to the room.
func (s *syncService) resumeHostPlayback(ctx context.Context, roomID string, startSeconds int64) {
	l := log.Ctx(ctx)

	stored, err := s.presence.GetVideoState(ctx, roomID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to read playback state on host re-entry")
		return
	}

	now := time.Now()
	recovered := ExtrapolatePosition(stored, now)
	if stored == nil {
		// Expired playback session: fall back to the bookmarked start offset.
		recovered = float64(startSeconds)
	}

	state := &domain.PlaybackState{
		RoomID:      roomID,
		Status:      domain.PlaybackPlaying,
		TimeSeconds: int64(recovered),
		UpdatedAt:   now.UnixMilli(),
	}
	if err := s.presence.SetVideoState(ctx, state); err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to resume playback state")
		return
	}

	if err := s.broadcaster.BroadcastToRoom(ctx, roomID, domain.EvtVideoPlay, &domain.VideoStateEvent{
		Type:        domain.EvtVideoPlay,
		RoomID:      roomID,
		CurrentTime: recovered,
		IsPlaying:   true,
		UpdatedAt:   state.UpdatedAt,
	}); err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to broadcast resumed playback")
	}
}

// sendPlaybackSync sends the extrapolated position to the (re)joining
// connection only. No broadcast.
func (s *syncService) sendPlaybackSync(ctx context.Context, c *hub.Client, roomID string) {
	l := log.Ctx(ctx)

	stored, err := s.presence.GetVideoState(ctx, roomID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to read playback state")
		return
	}
	if stored == nil {
		return
	}

	pos := ExtrapolatePosition(stored, time.Now())
	if err := c.SendMessage(&domain.VideoStateEvent{
		Type:        domain.EvtVideoSync,
		RoomID:      roomID,
		CurrentTime: pos,
		IsPlaying:   stored.IsPlaying(),
		UpdatedAt:   stored.UpdatedAt,
	}); err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to send playback sync")
	}
}

func (s *syncService) HandleLeaveRoom(ctx context.Context, c *hub.Client, roomID string) error {
	if roomID == "" {
		return s.reject(c, domain.EvtLeaveRoom, domain.ErrMissingField)
	}
	return s.leaveRoom(ctx, c, roomID)
}

// leaveRoom is shared by explicit leaves and disconnect cleanup. The host
// path tears the whole room session down; the cascade is guarded by the room
// record still existing, so a duplicate run is a no-op.
func (s *syncService) leaveRoom(ctx context.Context, c *hub.Client, roomID string) error {
	l := log.Ctx(ctx)

	role, _, err := s.membership.ResolveRole(ctx, roomID, c.UserID)
	if err != nil {
		// Room record already gone: the cascade ran elsewhere. Clean up
		// whatever is left for this user, without broadcasting.
		role = domain.RoleNone
	}

	s.hub.LeaveRoom(c, roomID)

	if role == domain.RoleHost {
		return s.teardownRoom(ctx, c, roomID)
	}

	if err := s.presence.RemoveMember(ctx, roomID, c.UserID); err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to remove member from presence store")
		return s.reject(c, domain.EvtLeaveRoom, domain.ErrStoreFailure)
	}
	if err := s.presence.RemoveUserRoom(ctx, c.UserID, roomID); err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to clear reverse room set")
	}

	if role == domain.RoleNone {
		return nil
	}

	members, err := s.presence.Members(ctx, roomID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to read members after leave")
		members = []string{}
	}

	if err := s.broadcaster.BroadcastToRoom(ctx, roomID, domain.EvtUserLeft, &domain.UserLeftEvent{
		Type:             domain.EvtUserLeft,
		RoomID:           roomID,
		UserID:           c.UserID,
		Role:             domain.RoleParticipant,
		RoomParticipants: members,
		ParticipantCount: len(members),
	}); err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to broadcast userLeft")
	}

	l.Info().Str(log.FieldUserID, c.UserID).Str(log.FieldRoomID, roomID).Msg("user left room")
	return nil
}

// teardownRoom runs the host-leave cascade: purge all room state, pause the
// video for everyone, announce the departure, and detach the remaining
// connections. Mutations commit before anything is broadcast.
func (s *syncService) teardownRoom(ctx context.Context, c *hub.Client, roomID string) error {
	l := log.Ctx(ctx)

	if err := s.presence.RemoveUserRoom(ctx, c.UserID, roomID); err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to clear host reverse room set")
	}
	if err := s.presence.PurgeRoom(ctx, roomID); err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to purge room presence")
		return s.reject(c, domain.EvtLeaveRoom, domain.ErrStoreFailure)
	}

	now := nowMillis()
	if err := s.broadcaster.BroadcastToRoom(ctx, roomID, domain.EvtVideoPause, &domain.VideoStateEvent{
		Type:        domain.EvtVideoPause,
		RoomID:      roomID,
		CurrentTime: 0,
		IsPlaying:   false,
		UpdatedAt:   now,
	}); err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to broadcast teardown pause")
	}

	if err := s.broadcaster.BroadcastToRoom(ctx, roomID, domain.EvtUserLeft, &domain.UserLeftEvent{
		Type:             domain.EvtUserLeft,
		RoomID:           roomID,
		UserID:           c.UserID,
		Role:             domain.RoleHost,
		RoomParticipants: []string{},
		ParticipantCount: 0,
	}); err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to broadcast host userLeft")
	}

	if err := s.broadcaster.EvictRoom(ctx, roomID); err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to evict room connections")
	}

	audit.Log(ctx, audit.ActionRoomTeardown, c.UserID, roomID, "host left, room session ended")
	return nil
}

func (s *syncService) HandleRoomMessage(ctx context.Context, c *hub.Client, roomID, content, messageType string) error {
	l := log.Ctx(ctx)

	if roomID == "" || content == "" {
		return s.reject(c, domain.EvtSendMessage, domain.ErrMissingField)
	}
	if !domain.ValidMessageType(messageType) {
		return c.SendMessage(domain.NewErrorEvent(domain.EvtSendMessage, domain.CodeBadRequest, "invalid message type"))
	}

	isMember, err := s.membership.IsRoomMember(ctx, roomID, c.UserID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("membership lookup failed")
		return s.reject(c, domain.EvtSendMessage, domain.ErrStoreFailure)
	}
	if !isMember {
		return s.reject(c, domain.EvtSendMessage, domain.ErrNotARoomMember)
	}

	msg := &domain.RoomMessage{
		RoomID:      roomID,
		UserID:      c.UserID,
		Nickname:    c.Nickname,
		Content:     content,
		MessageType: domain.MessageType(messageType),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to persist room message")
		return s.reject(c, domain.EvtSendMessage, domain.ErrStoreFailure)
	}

	// Export to the history pipeline; never blocks the chat path.
	if err := s.producer.ProduceMessage(ctx, msg); err != nil {
		l.Warn().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to export message to stream")
	}

	if err := s.broadcaster.BroadcastToRoom(ctx, roomID, domain.EvtReceiveMessage, &domain.ReceiveMessageEvent{
		Type:    domain.EvtReceiveMessage,
		Message: *msg,
	}); err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to broadcast room message")
	}

	return nil
}

func (s *syncService) HandleVideoPlay(ctx context.Context, c *hub.Client, roomID string, currentTime float64) error {
	return s.setPlayback(ctx, c, roomID, domain.EvtVideoPlay, domain.PlaybackPlaying, currentTime)
}

func (s *syncService) HandleVideoPause(ctx context.Context, c *hub.Client, roomID string, currentTime float64) error {
	return s.setPlayback(ctx, c, roomID, domain.EvtVideoPause, domain.PlaybackPaused, currentTime)
}

// setPlayback applies a host play/pause command. The caller must be the
// current host, re-checked per event; anything else is a silent no-op so
// stale or duplicate client state never errors.
func (s *syncService) setPlayback(ctx context.Context, c *hub.Client, roomID, eventType string, status domain.PlaybackStatus, currentTime float64) error {
	l := log.Ctx(ctx)

	if roomID == "" {
		return s.reject(c, eventType, domain.ErrMissingField)
	}

	if !s.isCurrentHost(ctx, roomID, c.UserID) {
		l.Debug().Str(log.FieldUserID, c.UserID).Str(log.FieldRoomID, roomID).Str(log.FieldEvent, eventType).Msg("playback command from non-host ignored")
		return nil
	}

	now := nowMillis()
	state := &domain.PlaybackState{
		RoomID:      roomID,
		Status:      status,
		TimeSeconds: int64(currentTime),
		UpdatedAt:   now,
	}
	if err := s.presence.SetVideoState(ctx, state); err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to write playback state")
		return s.reject(c, eventType, domain.ErrStoreFailure)
	}

	if err := s.broadcaster.BroadcastToRoom(ctx, roomID, eventType, &domain.VideoStateEvent{
		Type:        eventType,
		RoomID:      roomID,
		CurrentTime: currentTime,
		IsPlaying:   status == domain.PlaybackPlaying,
		UpdatedAt:   now,
	}); err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to broadcast playback event")
	}

	return nil
}

func (s *syncService) HandleVideoSync(ctx context.Context, c *hub.Client, roomID string, currentTime float64) error {
	l := log.Ctx(ctx)

	if roomID == "" {
		return s.reject(c, domain.EvtVideoSync, domain.ErrMissingField)
	}

	if !s.isCurrentHost(ctx, roomID, c.UserID) {
		l.Debug().Str(log.FieldUserID, c.UserID).Str(log.FieldRoomID, roomID).Msg("sync heartbeat from non-host ignored")
		return nil
	}

	// Heartbeat only refreshes the stored position; nothing is broadcast.
	if err := s.presence.UpdateVideoTime(ctx, roomID, int64(currentTime), nowMillis()); err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to update playback time")
		return s.reject(c, domain.EvtVideoSync, domain.ErrStoreFailure)
	}
	return nil
}

func (s *syncService) isCurrentHost(ctx context.Context, roomID, userID string) bool {
	role, _, err := s.membership.ResolveRole(ctx, roomID, userID)
	if err != nil {
		return false
	}
	return role == domain.RoleHost
}

// HandleDisconnect clears the connection binding and runs the implicit-leave
// path for every room the user is still bound to. The unbind is conditional
// and comes first: a socket whose binding was superseded by a reconnect owns
// nothing anymore, so its cleanup must not touch the live session's rooms.
// Running it again for the same connection finds nothing to do.
func (s *syncService) HandleDisconnect(ctx context.Context, c *hub.Client) error {
	l := log.Ctx(ctx)

	removed, err := s.presence.UnbindConnection(ctx, c.UserID, c.ID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, c.UserID).Msg("failed to unbind connection")
		return err
	}
	if !removed {
		l.Debug().
			Str(log.FieldConnID, c.ID).
			Str(log.FieldUserID, c.UserID).
			Msg("stale disconnect, binding superseded by a newer connection")
		return nil
	}

	rooms, err := s.presence.UserRooms(ctx, c.UserID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, c.UserID).Msg("failed to read user rooms on disconnect")
		rooms = nil
	}

	for _, roomID := range rooms {
		if err := s.leaveRoom(ctx, c, roomID); err != nil {
			l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("disconnect cleanup failed for room")
		}
	}

	if err := s.presence.SetOffline(ctx, c.UserID); err != nil {
		l.Error().Err(err).Str(log.FieldUserID, c.UserID).Msg("failed to mark user offline")
	}
	audit.Log(ctx, audit.ActionUserOffline, c.UserID, "", "user disconnected")

	return nil
}

func (s *syncService) RoomPresence(ctx context.Context, roomID string) (*domain.RoomPresenceInfo, error) {
	members, err := s.presence.Members(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return &domain.RoomPresenceInfo{
		RoomID:           roomID,
		ParticipantCount: len(members),
		MemberUserIDs:    members,
	}, nil
}

func (s *syncService) RoomPlayback(ctx context.Context, roomID string) (*domain.PlaybackInfo, error) {
	state, err := s.presence.GetVideoState(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, nil
	}
	return &domain.PlaybackInfo{
		State:    state,
		Position: ExtrapolatePosition(state, time.Now()),
	}, nil
}

func (s *syncService) MessageHistory(ctx context.Context, roomID string, limit int) ([]domain.RoomMessage, error) {
	return s.messages.ListByRoom(ctx, roomID, limit)
}
