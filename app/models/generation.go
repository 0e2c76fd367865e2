package models

import "time"

const (
	GenerationStatusProcessing = "processing"
	GenerationStatusCompleted  = "completed"
)

// Generation records a content/video generation job and what it cost.
type Generation struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Type        string    `gorm:"type:varchar(50);not null" json:"type"`
	Prompt      string    `gorm:"type:text" json:"prompt"`
	ResultURL   string    `gorm:"type:varchar(500)" json:"result_url"`
	CreditsUsed int64     `gorm:"not null" json:"credits_used"`
	Status      string    `gorm:"type:varchar(20);not null;default:'completed'" json:"status"`
	Metadata    string    `gorm:"type:text" json:"metadata"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
