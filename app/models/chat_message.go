package models

import "time"

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one turn in an assistant conversation. CreditsUsed is zero
// for user turns and the chat cost for assistant turns.
type ChatMessage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index:idx_chat_messages_user_session" json:"user_id"`
	SessionID   string    `gorm:"type:varchar(64);not null;index:idx_chat_messages_user_session" json:"session_id"`
	Role        string    `gorm:"type:varchar(20);not null" json:"role"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	CreditsUsed int64     `gorm:"not null;default:0" json:"credits_used"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
