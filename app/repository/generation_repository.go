package repository

import (
	"github.com/StreamPilotHQ/StreamPilot/app/models"
	"gorm.io/gorm"
)

// generationRepository implements the GenerationRepository interface
type generationRepository struct {
	db *gorm.DB
}

// NewGenerationRepository creates a new generation repository instance
func NewGenerationRepository(db *gorm.DB) GenerationRepository {
	return &generationRepository{db: db}
}

// Create records a generation job
func (r *generationRepository) Create(gen *models.Generation) error {
	return r.db.Create(gen).Error
}

// ListByUser returns a user's generation jobs, newest first
func (r *generationRepository) ListByUser(userID uint, limit int) ([]models.Generation, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var gens []models.Generation
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&gens).Error
	return gens, err
}
