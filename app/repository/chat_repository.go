package repository

import (
	"github.com/StreamPilotHQ/StreamPilot/app/models"
	"gorm.io/gorm"
)

// chatRepository implements the ChatRepository interface
type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new chat repository instance
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

// CreateMessage appends a chat message
func (r *chatRepository) CreateMessage(msg *models.ChatMessage) error {
	return r.db.Create(msg).Error
}

// GetHistory returns the messages of a session in conversation order
func (r *chatRepository) GetHistory(userID uint, sessionID string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var messages []models.ChatMessage
	err := r.db.Where("user_id = ? AND session_id = ?", userID, sessionID).
		Order("created_at ASC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}
