package models

import "time"

// StreamMetric is one broadcast health sample reported by the streaming
// client. Samples are append-only; the stream row carries the derived peak.
type StreamMetric struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StreamID  string    `gorm:"type:varchar(36);not null;index" json:"stream_id"`
	FPS       int       `gorm:"not null;default:0" json:"fps"`
	Bitrate   int       `gorm:"not null;default:0" json:"bitrate"`
	Viewers   int       `gorm:"not null;default:0" json:"viewers"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
