package webhook

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/StreamPilotHQ/StreamPilot/app/models"
	"github.com/StreamPilotHQ/StreamPilot/app/repository"
	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/metrics"
)

const (
	DefaultWorkers   = 4
	DefaultQueueSize = 256

	// deliveryTimeout bounds one outbound POST including connect and body read.
	deliveryTimeout = 10 * time.Second

	// maxResponseBody caps what gets copied into the delivery record.
	maxResponseBody = 1000
)

// Event is one notification to fan out to an account's subscribers.
type Event struct {
	AccountID  uint
	Type       models.EventType
	Payload    map[string]interface{}
	OccurredAt time.Time
}

// envelope is the wire body: {"event","data","timestamp"}.
type envelope struct {
	Event     string                 `json:"event"`
	Data      map[string]interface{} `json:"data"`
	Timestamp string                 `json:"timestamp"`
}

// Dispatcher delivers events to subscriber endpoints asynchronously. Emit
// enqueues and returns; a fixed pool of workers drains the bounded queue,
// fans out to each matching endpoint concurrently, and appends one delivery
// record per attempt. When the queue is full the event is rejected and
// counted rather than delivered late at the cost of blocking the caller.
// Delivery is single best-effort: no retries, no dead-letter queue.
type Dispatcher struct {
	repo    repository.WebhookRepository
	client  *http.Client
	queue   chan Event
	workers int
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewDispatcher creates a dispatcher with its own HTTP client.
func NewDispatcher(repo repository.WebhookRepository, workers, queueSize int) *Dispatcher {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	return &Dispatcher{
		repo:    repo,
		client:  &http.Client{Timeout: deliveryTimeout},
		queue:   make(chan Event, queueSize),
		workers: workers,
		stopCh:  make(chan struct{}),
	}
}

// Start starts the delivery workers.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return
	}

	d.running = true
	log.Infof("[Webhook] Starting %d delivery workers", d.workers)

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
}

// Stop stops the delivery workers. In-flight deliveries finish; queued events
// that no worker picked up before shutdown are dropped.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return
	}

	log.Info("[Webhook] Stopping delivery workers...")
	close(d.stopCh)
	d.running = false
	d.wg.Wait()
	log.Info("[Webhook] All delivery workers stopped")
}

// Emit schedules delivery of an event to the account's subscribers and
// returns immediately. A full queue rejects the event.
func (d *Dispatcher) Emit(accountID uint, eventType models.EventType, payload map[string]interface{}) {
	ev := Event{
		AccountID:  accountID,
		Type:       eventType,
		Payload:    payload,
		OccurredAt: time.Now(),
	}

	select {
	case d.queue <- ev:
	default:
		log.Warnf("[Webhook] Dispatch queue full, dropping %s event for account %d", eventType, accountID)
		metrics.WebhookQueueDrops.Inc()
	}
}

// worker drains the event queue until stopped.
func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	log.Infof("[Webhook] Worker %d started", id)

	for {
		select {
		case <-d.stopCh:
			log.Infof("[Webhook] Worker %d stopping", id)
			return
		case ev := <-d.queue:
			d.process(ev)
		}
	}
}

// process looks up the event's subscribers and delivers to each concurrently.
// One endpoint failing or stalling never affects the others.
func (d *Dispatcher) process(ev Event) {
	endpoints, err := d.repo.FindActiveSubscribers(ev.AccountID, ev.Type)
	if err != nil {
		log.Errorf("[Webhook] Subscriber lookup failed for account %d event %s: %v", ev.AccountID, ev.Type, err)
		return
	}
	if len(endpoints) == 0 {
		return
	}

	body, err := json.Marshal(envelope{
		Event:     string(ev.Type),
		Data:      ev.Payload,
		Timestamp: ev.OccurredAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		log.Errorf("[Webhook] Failed to marshal %s event payload: %v", ev.Type, err)
		return
	}

	var wg sync.WaitGroup
	for i := range endpoints {
		endpoint := endpoints[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.deliver(&endpoint, ev.Type, body)
		}()
	}
	wg.Wait()
}

// deliver performs one signed POST and records the outcome. Transport errors
// are recorded with the sentinel status and the error text as response body.
func (d *Dispatcher) deliver(endpoint *models.WebhookEndpoint, eventType models.EventType, body []byte) {
	record := models.WebhookDelivery{
		EndpointID: endpoint.ID,
		EventType:  eventType,
	}

	req, err := http.NewRequest(http.MethodPost, endpoint.URL, bytes.NewReader(body))
	if err != nil {
		record.HTTPStatus = models.DeliveryStatusFailed
		record.ResponseBody = truncate(err.Error(), maxResponseBody)
		d.finish(&record, false)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", Sign(body, endpoint.Secret))
	req.Header.Set("X-Webhook-Event", string(eventType))

	resp, err := d.client.Do(req)
	if err != nil {
		log.Warnf("[Webhook] Delivery to endpoint %d failed: %v", endpoint.ID, err)
		record.HTTPStatus = models.DeliveryStatusFailed
		record.ResponseBody = truncate(err.Error(), maxResponseBody)
		d.finish(&record, false)
		return
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	record.HTTPStatus = resp.StatusCode
	record.ResponseBody = string(respBody)

	success := record.Succeeded()
	if success {
		if err := d.repo.TouchLastTriggered(endpoint.ID); err != nil {
			log.Errorf("[Webhook] Failed to update last_triggered_at for endpoint %d: %v", endpoint.ID, err)
		}
	}
	d.finish(&record, success)
}

func (d *Dispatcher) finish(record *models.WebhookDelivery, success bool) {
	if err := d.repo.CreateDelivery(record); err != nil {
		log.Errorf("[Webhook] Failed to record delivery for endpoint %d: %v", record.EndpointID, err)
	}
	if success {
		metrics.WebhookDeliveries.WithLabelValues("delivered").Inc()
	} else {
		metrics.WebhookDeliveries.WithLabelValues("failed").Inc()
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
