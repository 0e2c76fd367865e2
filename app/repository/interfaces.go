package repository

import (
	"github.com/StreamPilotHQ/StreamPilot/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for account-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
}

// WebhookRepository defines the interface for webhook endpoint and delivery
// record operations
type WebhookRepository interface {
	CreateEndpoint(endpoint *models.WebhookEndpoint) error
	GetEndpointByID(id uint) (*models.WebhookEndpoint, error)
	ListEndpointsByUser(userID uint) ([]models.WebhookEndpoint, error)
	FindActiveSubscribers(userID uint, event models.EventType) ([]models.WebhookEndpoint, error)
	UpdateEndpoint(endpoint *models.WebhookEndpoint) error
	DeleteEndpoint(id uint) error
	TouchLastTriggered(endpointID uint) error
	CreateDelivery(delivery *models.WebhookDelivery) error
	ListDeliveriesByEndpoint(endpointID uint, limit int) ([]models.WebhookDelivery, error)
}

// StreamRepository defines the interface for stream lifecycle operations
type StreamRepository interface {
	Create(stream *models.Stream) error
	GetByID(id string) (*models.Stream, error)
	GetByIDAndUser(id string, userID uint) (*models.Stream, error)
	ListByUser(userID uint, status string, limit int) ([]models.Stream, error)
	Update(stream *models.Stream) error
	RecordMetrics(metric *models.StreamMetric) error
}

// ChatRepository defines the interface for chat history operations
type ChatRepository interface {
	CreateMessage(msg *models.ChatMessage) error
	GetHistory(userID uint, sessionID string, limit int) ([]models.ChatMessage, error)
}

// GenerationRepository defines the interface for generation job records
type GenerationRepository interface {
	Create(gen *models.Generation) error
	ListByUser(userID uint, limit int) ([]models.Generation, error)
}

// WorkflowRepository defines the interface for automation workflow storage
type WorkflowRepository interface {
	Create(workflow *models.Workflow) error
	ListByUser(userID uint) ([]models.Workflow, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User       UserRepository
	Webhook    WebhookRepository
	Stream     StreamRepository
	Chat       ChatRepository
	Generation GenerationRepository
	Workflow   WorkflowRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:       NewUserRepository(db),
		Webhook:    NewWebhookRepository(db),
		Stream:     NewStreamRepository(db),
		Chat:       NewChatRepository(db),
		Generation: NewGenerationRepository(db),
		Workflow:   NewWorkflowRepository(db),
	}
}
