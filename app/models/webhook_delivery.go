package models

import "time"

// DeliveryStatusFailed is the sentinel HTTP status recorded when a delivery
// could not be attempted at all (connection refused, timeout, bad URL).
const DeliveryStatusFailed = 0

// WebhookDelivery is one append-only delivery attempt record. It exists for
// observability; nothing reads it to drive retries.
type WebhookDelivery struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	EndpointID   uint      `gorm:"not null;index:idx_webhook_deliveries_endpoint_attempted" json:"endpoint_id"`
	EventType    EventType `gorm:"type:varchar(50);not null" json:"event_type"`
	HTTPStatus   int       `gorm:"not null" json:"http_status"`
	ResponseBody string    `gorm:"type:varchar(1000)" json:"response_body"`
	AttemptedAt  time.Time `gorm:"autoCreateTime;index:idx_webhook_deliveries_endpoint_attempted" json:"attempted_at"`
}

// Succeeded reports whether the attempt got a 2xx response.
func (d *WebhookDelivery) Succeeded() bool {
	return d.HTTPStatus >= 200 && d.HTTPStatus < 300
}
