package repository

import (
	"github.com/StreamPilotHQ/StreamPilot/app/models"
	"gorm.io/gorm"
)

// streamRepository implements the StreamRepository interface
type streamRepository struct {
	db *gorm.DB
}

// NewStreamRepository creates a new stream repository instance
func NewStreamRepository(db *gorm.DB) StreamRepository {
	return &streamRepository{db: db}
}

// Create creates a new stream
func (r *streamRepository) Create(stream *models.Stream) error {
	return r.db.Create(stream).Error
}

// GetByID retrieves a stream by its ID
func (r *streamRepository) GetByID(id string) (*models.Stream, error) {
	var stream models.Stream
	err := r.db.Where("id = ?", id).First(&stream).Error
	if err != nil {
		return nil, err
	}
	return &stream, nil
}

// GetByIDAndUser retrieves a stream only if it is owned by the given user
func (r *streamRepository) GetByIDAndUser(id string, userID uint) (*models.Stream, error) {
	var stream models.Stream
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&stream).Error
	if err != nil {
		return nil, err
	}
	return &stream, nil
}

// ListByUser returns a user's streams, newest first, optionally filtered by status
func (r *streamRepository) ListByUser(userID uint, status string, limit int) ([]models.Stream, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query := r.db.Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var streams []models.Stream
	err := query.Order("created_at DESC").Limit(limit).Find(&streams).Error
	return streams, err
}

// Update updates an existing stream
func (r *streamRepository) Update(stream *models.Stream) error {
	return r.db.Save(stream).Error
}

// RecordMetrics appends one health sample and folds it into the stream's
// aggregates. The viewer peak only ever moves up.
func (r *streamRepository) RecordMetrics(metric *models.StreamMetric) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(metric).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Stream{}).
			Where("id = ? AND viewers_peak < ?", metric.StreamID, metric.Viewers).
			UpdateColumn("viewers_peak", metric.Viewers).Error; err != nil {
			return err
		}
		return tx.Model(&models.Stream{}).
			Where("id = ?", metric.StreamID).
			UpdateColumn("total_views", gorm.Expr("total_views + 1")).Error
	})
}
