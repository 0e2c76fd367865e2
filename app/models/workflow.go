package models

import "time"

// Workflow is a saved automation recipe: when the trigger fires, run the
// stored actions. Actions are kept as the JSON the client submitted.
type Workflow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Name        string    `gorm:"type:varchar(200);not null" json:"name"`
	TriggerType string    `gorm:"type:varchar(50);not null" json:"trigger_type"`
	Actions     string    `gorm:"type:text;not null" json:"actions"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
