package webhook

import (
	"sync"

	"github.com/StreamPilotHQ/StreamPilot/app/repository"
	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/env"
)

var (
	globalDispatcher *Dispatcher
	dispatcherOnce   sync.Once
)

// GetDispatcher returns the global dispatcher (singleton). Worker and queue
// sizes come from the environment with sane defaults.
func GetDispatcher() *Dispatcher {
	dispatcherOnce.Do(func() {
		workers := env.GetEnvInt("WEBHOOK_WORKERS", DefaultWorkers)
		queueSize := env.GetEnvInt("WEBHOOK_QUEUE_SIZE", DefaultQueueSize)

		repo := repository.GetGlobalFactory().GetWebhookRepository()
		globalDispatcher = NewDispatcher(repo, workers, queueSize)
	})
	return globalDispatcher
}
