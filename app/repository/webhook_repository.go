package repository

import (
	"time"

	"github.com/StreamPilotHQ/StreamPilot/app/models"
	"gorm.io/gorm"
)

// webhookRepository implements the WebhookRepository interface
type webhookRepository struct {
	db *gorm.DB
}

// NewWebhookRepository creates a new webhook repository instance
func NewWebhookRepository(db *gorm.DB) WebhookRepository {
	return &webhookRepository{db: db}
}

// CreateEndpoint creates a new subscriber endpoint
func (r *webhookRepository) CreateEndpoint(endpoint *models.WebhookEndpoint) error {
	return r.db.Create(endpoint).Error
}

// GetEndpointByID retrieves an endpoint by its ID
func (r *webhookRepository) GetEndpointByID(id uint) (*models.WebhookEndpoint, error) {
	var endpoint models.WebhookEndpoint
	err := r.db.First(&endpoint, id).Error
	if err != nil {
		return nil, err
	}
	return &endpoint, nil
}

// ListEndpointsByUser returns all endpoints owned by a user, newest first
func (r *webhookRepository) ListEndpointsByUser(userID uint) ([]models.WebhookEndpoint, error) {
	var endpoints []models.WebhookEndpoint
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&endpoints).Error
	return endpoints, err
}

// FindActiveSubscribers returns the active endpoints of a user subscribed to
// the given event type. The subscribed-events set is a JSON column, so the
// event membership check happens here rather than in SQL; the active filter
// keeps the scanned set small.
func (r *webhookRepository) FindActiveSubscribers(userID uint, event models.EventType) ([]models.WebhookEndpoint, error) {
	var endpoints []models.WebhookEndpoint
	err := r.db.Where("user_id = ? AND active = ?", userID, true).Find(&endpoints).Error
	if err != nil {
		return nil, err
	}

	matched := make([]models.WebhookEndpoint, 0, len(endpoints))
	for _, e := range endpoints {
		if e.SubscribedTo(event) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

// UpdateEndpoint updates an existing endpoint
func (r *webhookRepository) UpdateEndpoint(endpoint *models.WebhookEndpoint) error {
	return r.db.Save(endpoint).Error
}

// DeleteEndpoint removes an endpoint by ID
func (r *webhookRepository) DeleteEndpoint(id uint) error {
	return r.db.Delete(&models.WebhookEndpoint{}, id).Error
}

// TouchLastTriggered updates the last successful delivery timestamp
func (r *webhookRepository) TouchLastTriggered(endpointID uint) error {
	now := time.Now()
	return r.db.Model(&models.WebhookEndpoint{}).
		Where("id = ?", endpointID).
		UpdateColumn("last_triggered_at", now).Error
}

// CreateDelivery appends a delivery attempt record
func (r *webhookRepository) CreateDelivery(delivery *models.WebhookDelivery) error {
	return r.db.Create(delivery).Error
}

// ListDeliveriesByEndpoint returns recent delivery attempts, newest first
func (r *webhookRepository) ListDeliveriesByEndpoint(endpointID uint, limit int) ([]models.WebhookDelivery, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var deliveries []models.WebhookDelivery
	err := r.db.Where("endpoint_id = ?", endpointID).
		Order("attempted_at DESC").
		Limit(limit).
		Find(&deliveries).Error
	return deliveries, err
}
