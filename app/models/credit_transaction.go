package models

import "time"

// TransactionKind classifies a ledger entry. The set is closed; anything else
// is rejected before it reaches the database.
type TransactionKind string

const (
	TxKindPurchase          TransactionKind = "purchase"
	TxKindChat              TransactionKind = "chat"
	TxKindContentGeneration TransactionKind = "content_generation"
	TxKindVideoGeneration   TransactionKind = "video_generation"
	TxKindRepurpose         TransactionKind = "repurpose"
	TxKindSEO               TransactionKind = "seo"
	TxKindSocialPublish     TransactionKind = "social_publish"
	TxKindRefund            TransactionKind = "refund"
	TxKindAdminAdjustment   TransactionKind = "admin_adjustment"
)

// Valid reports whether k is a known transaction kind.
func (k TransactionKind) Valid() bool {
	switch k {
	case TxKindPurchase, TxKindChat, TxKindContentGeneration, TxKindVideoGeneration,
		TxKindRepurpose, TxKindSEO, TxKindSocialPublish, TxKindRefund, TxKindAdminAdjustment:
		return true
	}
	return false
}

// CreditTransaction is an immutable ledger entry. Delta is negative for debits
// and positive for credits; for every account the sum of deltas equals the
// current balance on the users row.
type CreditTransaction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"not null;index:idx_credit_transactions_user_created" json:"user_id"`
	Delta       int64           `gorm:"not null" json:"delta"`
	Kind        TransactionKind `gorm:"type:varchar(50);not null;index" json:"kind"`
	Description string          `gorm:"type:varchar(255)" json:"description"`
	CreatedAt   time.Time       `gorm:"autoCreateTime;index:idx_credit_transactions_user_created" json:"created_at"`
}
