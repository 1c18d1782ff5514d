package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ekdbss/onairmate-sync/internal/domain"
	"github.com/ekdbss/onairmate-sync/pkg/log"
)

// GormMessageRepository implements MessageRepository using GORM.
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GORM-based message repository.
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// Create persists a message and fills in its ID and timestamp.
func (r *GormMessageRepository) Create(ctx context.Context, msg *domain.RoomMessage) error {
	l := log.Ctx(ctx)

	model := &domain.RoomMessageModel{
		ID:          uuid.New().String(),
		RoomID:      msg.RoomID,
		UserID:      msg.UserID,
		Nickname:    msg.Nickname,
		Content:     msg.Content,
		MessageType: string(msg.MessageType),
	}

	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldRoomID, msg.RoomID).Msg("failed to create room message in db")
		return result.Error
	}

	msg.ID = model.ID
	msg.CreatedAt = model.CreatedAt
	return nil
}

// ListByRoom returns the most recent messages for a room, newest first.
func (r *GormMessageRepository) ListByRoom(ctx context.Context, roomID string, limit int) ([]domain.RoomMessage, error) {
	l := log.Ctx(ctx)

	if limit < 1 {
		limit = 50
	}

	var models []domain.RoomMessageModel
	result := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at DESC").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldRoomID, roomID).Msg("failed to list room messages from db")
		return nil, result.Error
	}

	messages := make([]domain.RoomMessage, len(models))
	for i, model := range models {
		messages[i] = *model.ToDomain()
	}
	return messages, nil
}
