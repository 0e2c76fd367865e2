package models

import (
	"time"
)

const (
	StreamStatusIdle  = "idle"
	StreamStatusLive  = "live"
	StreamStatusEnded = "ended"
)

// Stream is one broadcast configuration. Starting and stopping a stream emits
// stream.started / stream.stopped webhook events for the owning account.
type Stream struct {
	ID          string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	Title       string     `gorm:"type:varchar(200);not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Platforms   string     `gorm:"type:varchar(255);not null;default:''" json:"platforms"`
	Status      string     `gorm:"type:varchar(20);not null;default:'idle';index" json:"status"`
	ViewersPeak int        `gorm:"not null;default:0" json:"viewers_peak"`
	TotalViews  int        `gorm:"not null;default:0" json:"total_views"`
	StartedAt   *time.Time `gorm:"type:timestamp;default:null" json:"started_at,omitempty"`
	EndedAt     *time.Time `gorm:"type:timestamp;default:null" json:"ended_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
