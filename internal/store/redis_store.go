package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ekdbss/onairmate-sync/internal/domain"
)

// RedisConfig holds Redis connection configuration for the presence store.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// redisStore implements PresenceRepository using Redis.
type redisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis-backed presence repository.
func NewRedisStore(cfg RedisConfig) (PresenceRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisStore{client: client}, nil
}

// NewRedisStoreWithClient wraps an existing client, sharing the connection
// pool with the pub/sub fabric.
func NewRedisStoreWithClient(client *redis.Client) PresenceRepository {
	return &redisStore{client: client}
}

// Redis key patterns:
// sync:room:{room_id}:members   SET<user_id>   - users currently in the room
// sync:room:{room_id}:video     HASH           - playback snapshot
//   - status: "playing" | "paused"
//   - time: integer seconds
//   - updated_at: epoch millis
// sync:user:{user_id}:conn      STRING<conn_id> - live connection binding
// sync:user:{user_id}:rooms     SET<room_id>    - reverse room lookup
// sync:online_users             SET<user_id>    - users with a live connection

func roomMembersKey(roomID string) string {
	return fmt.Sprintf("sync:room:%s:members", roomID)
}

func roomVideoKey(roomID string) string {
	return fmt.Sprintf("sync:room:%s:video", roomID)
}

func userConnKey(userID string) string {
	return fmt.Sprintf("sync:user:%s:conn", userID)
}

func userRoomsKey(userID string) string {
	return fmt.Sprintf("sync:user:%s:rooms", userID)
}

const onlineUsersKey = "sync:online_users"

// unbindScript deletes a user's connection binding only when it still holds
// the disconnecting handle, so a reconnect that superseded the binding is
// left untouched.
var unbindScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (s *redisStore) AddMember(ctx context.Context, roomID, userID string) error {
	return s.client.SAdd(ctx, roomMembersKey(roomID), userID).Err()
}

func (s *redisStore) RemoveMember(ctx context.Context, roomID, userID string) error {
	return s.client.SRem(ctx, roomMembersKey(roomID), userID).Err()
}

func (s *redisStore) IsMember(ctx context.Context, roomID, userID string) (bool, error) {
	return s.client.SIsMember(ctx, roomMembersKey(roomID), userID).Result()
}

func (s *redisStore) Members(ctx context.Context, roomID string) ([]string, error) {
	return s.client.SMembers(ctx, roomMembersKey(roomID)).Result()
}

func (s *redisStore) MemberCount(ctx context.Context, roomID string) (int, error) {
	n, err := s.client.SCard(ctx, roomMembersKey(roomID)).Result()
	return int(n), err
}

func (s *redisStore) PurgeRoom(ctx context.Context, roomID string) error {
	members, err := s.client.SMembers(ctx, roomMembersKey(roomID)).Result()
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	for _, userID := range members {
		pipe.SRem(ctx, userRoomsKey(userID), roomID)
	}
	pipe.Del(ctx, roomMembersKey(roomID))
	pipe.Del(ctx, roomVideoKey(roomID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *redisStore) BindConnection(ctx context.Context, userID, connID string) error {
	return s.client.Set(ctx, userConnKey(userID), connID, 0).Err()
}

func (s *redisStore) Connection(ctx context.Context, userID string) (string, error) {
	val, err := s.client.Get(ctx, userConnKey(userID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

func (s *redisStore) UnbindConnection(ctx context.Context, userID, connID string) (bool, error) {
	n, err := unbindScript.Run(ctx, s.client, []string{userConnKey(userID)}, connID).Int()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *redisStore) AddUserRoom(ctx context.Context, userID, roomID string) error {
	return s.client.SAdd(ctx, userRoomsKey(userID), roomID).Err()
}

func (s *redisStore) RemoveUserRoom(ctx context.Context, userID, roomID string) error {
	return s.client.SRem(ctx, userRoomsKey(userID), roomID).Err()
}

func (s *redisStore) UserRooms(ctx context.Context, userID string) ([]string, error) {
	return s.client.SMembers(ctx, userRoomsKey(userID)).Result()
}

func (s *redisStore) SetOnline(ctx context.Context, userID string) error {
	return s.client.SAdd(ctx, onlineUsersKey, userID).Err()
}

func (s *redisStore) SetOffline(ctx context.Context, userID string) error {
	return s.client.SRem(ctx, onlineUsersKey, userID).Err()
}

func (s *redisStore) SetVideoState(ctx context.Context, state *domain.PlaybackState) error {
	return s.client.HSet(ctx, roomVideoKey(state.RoomID), map[string]interface{}{
		"status":     string(state.Status),
		"time":       strconv.FormatInt(state.TimeSeconds, 10),
		"updated_at": strconv.FormatInt(state.UpdatedAt, 10),
	}).Err()
}

func (s *redisStore) GetVideoState(ctx context.Context, roomID string) (*domain.PlaybackState, error) {
	result, err := s.client.HGetAll(ctx, roomVideoKey(roomID)).Result()
	if err != nil {
		return nil, err
	}

	// No hash means no playback session for the room.
	if len(result) == 0 {
		return nil, nil
	}

	state := &domain.PlaybackState{
		RoomID: roomID,
		Status: domain.PlaybackStatus(result["status"]),
	}
	if t, err := strconv.ParseInt(result["time"], 10, 64); err == nil {
		state.TimeSeconds = t
	}
	if ts, err := strconv.ParseInt(result["updated_at"], 10, 64); err == nil {
		state.UpdatedAt = ts
	}

	return state, nil
}

func (s *redisStore) UpdateVideoTime(ctx context.Context, roomID string, timeSeconds, updatedAt int64) error {
	return s.client.HSet(ctx, roomVideoKey(roomID), map[string]interface{}{
		"time":       strconv.FormatInt(timeSeconds, 10),
		"updated_at": strconv.FormatInt(updatedAt, 10),
	}).Err()
}

func (s *redisStore) DeleteVideoState(ctx context.Context, roomID string) error {
	return s.client.Del(ctx, roomVideoKey(roomID)).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
