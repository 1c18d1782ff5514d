package domain

import (
	"time"

	"gorm.io/gorm"
)

// RoomModel is the GORM model for the rooms table.
type RoomModel struct {
	ID               string `gorm:"type:varchar(36);primaryKey"`
	HostUserID       string `gorm:"type:varchar(36);index;not null"`
	Title            string `gorm:"type:varchar(200);not null"`
	IsActive         bool   `gorm:"index;not null;default:true"`
	MaxParticipants  int    `gorm:"not null;default:8"`
	StartTimeSeconds int64  `gorm:"not null;default:0"`
	CreatedAt        time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for RoomModel.
func (RoomModel) TableName() string {
	return "rooms"
}

// ToDomain converts RoomModel to domain Room.
func (m *RoomModel) ToDomain() *Room {
	return &Room{
		ID:               m.ID,
		HostUserID:       m.HostUserID,
		Title:            m.Title,
		IsActive:         m.IsActive,
		MaxParticipants:  m.MaxParticipants,
		StartTimeSeconds: m.StartTimeSeconds,
		CreatedAt:        m.CreatedAt,
	}
}

// RoomMessageModel is the GORM model for the room_messages table.
type RoomMessageModel struct {
	ID          string `gorm:"type:varchar(36);primaryKey"`
	RoomID      string `gorm:"type:varchar(36);index;not null"`
	UserID      string `gorm:"type:varchar(36);index;not null"`
	Nickname    string `gorm:"type:varchar(50);not null"`
	Content     string `gorm:"type:text;not null"`
	MessageType string `gorm:"type:varchar(20);not null;default:'general'"`
	CreatedAt   time.Time
}

// TableName specifies the table name for RoomMessageModel.
func (RoomMessageModel) TableName() string {
	return "room_messages"
}

// ToDomain converts RoomMessageModel to domain RoomMessage.
func (m *RoomMessageModel) ToDomain() *RoomMessage {
	return &RoomMessage{
		ID:          m.ID,
		RoomID:      m.RoomID,
		UserID:      m.UserID,
		Nickname:    m.Nickname,
		Content:     m.Content,
		MessageType: MessageType(m.MessageType),
		CreatedAt:   m.CreatedAt,
	}
}
