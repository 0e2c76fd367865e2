package models

import "time"

const (
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Payment records a processed payment-provider notification. The unique index
// on (provider, provider_payment_id) is what makes crediting idempotent:
// replaying the same provider event inserts zero rows and therefore credits
// nothing.
type Payment struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            uint      `gorm:"not null;index" json:"user_id"`
	Provider          string    `gorm:"type:varchar(20);not null;index:ux_payments_provider_payment,unique,priority:1" json:"provider"`
	ProviderPaymentID string    `gorm:"type:varchar(191);not null;index:ux_payments_provider_payment,unique,priority:2" json:"provider_payment_id"`
	AmountCents       int64     `gorm:"not null" json:"amount_cents"`
	CreditsPurchased  int64     `gorm:"not null" json:"credits_purchased"`
	Status            string    `gorm:"type:varchar(20);not null;default:'completed'" json:"status"`
	CreatedAt         time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
