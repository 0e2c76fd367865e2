package repository

import (
	"github.com/StreamPilotHQ/StreamPilot/app/models"
	"gorm.io/gorm"
)

// workflowRepository implements the WorkflowRepository interface
type workflowRepository struct {
	db *gorm.DB
}

// NewWorkflowRepository creates a new workflow repository instance
func NewWorkflowRepository(db *gorm.DB) WorkflowRepository {
	return &workflowRepository{db: db}
}

// Create stores a new automation workflow
func (r *workflowRepository) Create(workflow *models.Workflow) error {
	return r.db.Create(workflow).Error
}

// ListByUser returns a user's workflows, newest first
func (r *workflowRepository) ListByUser(userID uint) ([]models.Workflow, error) {
	var workflows []models.Workflow
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&workflows).Error
	return workflows, err
}
