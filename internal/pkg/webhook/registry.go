package webhook

import (
	"errors"

	"gorm.io/gorm"

	"github.com/StreamPilotHQ/StreamPilot/app/models"
	"github.com/StreamPilotHQ/StreamPilot/app/repository"
)

var (
	ErrEndpointNotFound = errors.New("webhook endpoint not found")
	ErrForbidden        = errors.New("webhook endpoint not owned by account")
	ErrNoEvents         = errors.New("at least one event type required")
)

// Registry manages subscriber endpoints. The secret is generated here exactly
// once per endpoint and handed back only from Register; every later read goes
// through the model's json:"-" field and stays hidden.
type Registry struct {
	repo repository.WebhookRepository
}

// NewRegistry creates a registry on the given repository.
func NewRegistry(repo repository.WebhookRepository) *Registry {
	return &Registry{repo: repo}
}

// Register creates an endpoint for the owner and returns it together with the
// plaintext secret. The secret is not retrievable afterwards.
func (r *Registry) Register(ownerID uint, url string, events []models.EventType) (*models.WebhookEndpoint, string, error) {
	if len(events) == 0 {
		return nil, "", ErrNoEvents
	}

	secret, err := GenerateSecret()
	if err != nil {
		return nil, "", err
	}

	endpoint := &models.WebhookEndpoint{
		UserID: ownerID,
		URL:    url,
		Secret: secret,
		Events: events,
		Active: true,
	}
	if err := endpoint.Validate(); err != nil {
		return nil, "", err
	}
	if err := r.repo.CreateEndpoint(endpoint); err != nil {
		return nil, "", err
	}
	return endpoint, secret, nil
}

// UpdateParams carries the optional fields of an endpoint update; nil means
// leave unchanged.
type UpdateParams struct {
	URL    *string
	Events []models.EventType
	Active *bool
}

// Update modifies an endpoint owned by ownerID. The secret is immutable.
func (r *Registry) Update(id, ownerID uint, params UpdateParams) (*models.WebhookEndpoint, error) {
	endpoint, err := r.getOwned(id, ownerID)
	if err != nil {
		return nil, err
	}

	if params.URL != nil {
		endpoint.URL = *params.URL
	}
	if params.Events != nil {
		if len(params.Events) == 0 {
			return nil, ErrNoEvents
		}
		endpoint.Events = params.Events
	}
	if params.Active != nil {
		endpoint.Active = *params.Active
	}

	if err := endpoint.Validate(); err != nil {
		return nil, err
	}
	if err := r.repo.UpdateEndpoint(endpoint); err != nil {
		return nil, err
	}
	return endpoint, nil
}

// Delete removes an endpoint owned by ownerID.
func (r *Registry) Delete(id, ownerID uint) error {
	if _, err := r.getOwned(id, ownerID); err != nil {
		return err
	}
	return r.repo.DeleteEndpoint(id)
}

// ListByOwner returns all endpoints of an account, newest first.
func (r *Registry) ListByOwner(ownerID uint) ([]models.WebhookEndpoint, error) {
	return r.repo.ListEndpointsByUser(ownerID)
}

// ListDeliveries returns recent delivery attempts for an owned endpoint.
func (r *Registry) ListDeliveries(id, ownerID uint, limit int) ([]models.WebhookDelivery, error) {
	if _, err := r.getOwned(id, ownerID); err != nil {
		return nil, err
	}
	return r.repo.ListDeliveriesByEndpoint(id, limit)
}

func (r *Registry) getOwned(id, ownerID uint) (*models.WebhookEndpoint, error) {
	endpoint, err := r.repo.GetEndpointByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEndpointNotFound
		}
		return nil, err
	}
	if endpoint.UserID != ownerID {
		return nil, ErrForbidden
	}
	return endpoint, nil
}
