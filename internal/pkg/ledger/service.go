package ledger

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/StreamPilotHQ/StreamPilot/app/models"
	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/metrics"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidKind         = errors.New("unknown transaction kind")
)

// Result describes a committed balance mutation.
type Result struct {
	NewBalance int64 `json:"new_balance"`
	TxID       uint  `json:"tx_id"`
}

// Service owns the account balance and its transaction log. Every mutation is
// one database transaction containing the balance write and the log append, so
// the two can never diverge. Mutations on different accounts run fully in
// parallel; the conditional UPDATE on the balance row is the only per-account
// serialization point.
type Service struct {
	db *gorm.DB
}

// NewService creates a ledger service on the given database handle.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Debit withdraws amount credits from the account and appends the matching
// transaction record. The balance check and the deduction are a single
// conditional UPDATE, so two concurrent debits can never overdraw the account:
// whichever loses the race sees zero affected rows and fails with
// ErrInsufficientCredits.
func (s *Service) Debit(ctx context.Context, accountID uint, amount int64, kind models.TransactionKind, description string) (*Result, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}

	var result *Result
	err := s.withRetry(func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.User{}).
				Where("id = ? AND credits >= ?", accountID, amount).
				UpdateColumn("credits", gorm.Expr("credits - ?", amount))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// Zero rows means either the account does not exist or the
				// balance is too low; tell them apart inside the same tx.
				var count int64
				if err := tx.Model(&models.User{}).Where("id = ?", accountID).Count(&count).Error; err != nil {
					return err
				}
				if count == 0 {
					return ErrAccountNotFound
				}
				return ErrInsufficientCredits
			}

			txRecord := models.CreditTransaction{
				UserID:      accountID,
				Delta:       -amount,
				Kind:        kind,
				Description: description,
			}
			if err := tx.Create(&txRecord).Error; err != nil {
				return err
			}

			balance, err := readBalance(tx, accountID)
			if err != nil {
				return err
			}
			result = &Result{NewBalance: balance, TxID: txRecord.ID}
			return nil
		})
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInsufficientCredits):
			metrics.LedgerRejections.WithLabelValues("insufficient_credits").Inc()
		case errors.Is(err, ErrAccountNotFound):
			metrics.LedgerRejections.WithLabelValues("account_not_found").Inc()
		}
		return nil, err
	}

	metrics.CreditTransactions.WithLabelValues(string(kind)).Inc()
	return result, nil
}

// Credit adds amount credits to the account and appends the matching
// transaction record. It fails only when the account does not exist.
func (s *Service) Credit(ctx context.Context, accountID uint, amount int64, kind models.TransactionKind, description string) (*Result, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}

	var result *Result
	err := s.withRetry(func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			r, err := applyCredit(tx, accountID, amount, kind, description)
			if err != nil {
				return err
			}
			result = r
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			metrics.LedgerRejections.WithLabelValues("account_not_found").Inc()
		}
		return nil, err
	}

	metrics.CreditTransactions.WithLabelValues(string(kind)).Inc()
	return result, nil
}

// CreditFromPayment credits a purchased package exactly once per provider
// payment id. The payments row insert and the balance mutation share one
// database transaction; a duplicate notification inserts zero rows and leaves
// the balance untouched. The returned bool reports whether credits were
// applied by this call.
func (s *Service) CreditFromPayment(ctx context.Context, accountID uint, provider, providerPaymentID string, amountCents, credits int64) (*Result, bool, error) {
	if credits <= 0 {
		return nil, false, ErrInvalidAmount
	}

	var (
		result  *Result
		applied bool
	)
	err := s.withRetry(func() error {
		applied = false
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			payment := models.Payment{
				UserID:            accountID,
				Provider:          provider,
				ProviderPaymentID: providerPaymentID,
				AmountCents:       amountCents,
				CreditsPurchased:  credits,
				Status:            models.PaymentStatusCompleted,
			}
			res := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{
					{Name: "provider"},
					{Name: "provider_payment_id"},
				},
				DoNothing: true,
			}).Create(&payment)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// Already processed; report the current balance unchanged.
				balance, err := readBalance(tx, accountID)
				if err != nil {
					return err
				}
				result = &Result{NewBalance: balance}
				return nil
			}

			r, err := applyCredit(tx, accountID, credits, models.TxKindPurchase, "Credit pack purchased")
			if err != nil {
				return err
			}
			result = r
			applied = true
			return nil
		})
	})
	if err != nil {
		return nil, false, err
	}
	if applied {
		metrics.CreditTransactions.WithLabelValues(string(models.TxKindPurchase)).Inc()
	}
	return result, applied, nil
}

// GetBalance returns the current credit balance of the account.
func (s *Service) GetBalance(ctx context.Context, accountID uint) (int64, error) {
	var user models.User
	err := s.db.WithContext(ctx).Select("credits").First(&user, accountID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrAccountNotFound
		}
		return 0, err
	}
	return user.Credits, nil
}

// ListTransactions returns the account's transaction log, most recent first.
// beforeID restarts the listing below a previous page's oldest id; zero means
// start from the top.
func (s *Service) ListTransactions(ctx context.Context, accountID uint, limit int, beforeID uint) ([]models.CreditTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", accountID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrAccountNotFound
	}

	query := s.db.WithContext(ctx).Where("user_id = ?", accountID)
	if beforeID > 0 {
		query = query.Where("id < ?", beforeID)
	}
	var transactions []models.CreditTransaction
	err := query.Order("id DESC").Limit(limit).Find(&transactions).Error
	return transactions, err
}

// ListPayments returns the account's processed payments, most recent first.
func (s *Service) ListPayments(ctx context.Context, accountID uint, limit int) ([]models.Payment, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", accountID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrAccountNotFound
	}

	var payments []models.Payment
	err := s.db.WithContext(ctx).Where("user_id = ?", accountID).
		Order("id DESC").Limit(limit).Find(&payments).Error
	return payments, err
}

// withRetry runs one atomic unit and retries it a single time on storage
// errors. Business rejections pass through untouched.
func (s *Service) withRetry(unit func() error) error {
	err := unit()
	if err == nil || isBusinessError(err) {
		return err
	}
	log.Warnf("[Ledger] atomic unit failed, retrying once: %v", err)
	return unit()
}

func isBusinessError(err error) bool {
	return errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrInsufficientCredits) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidKind)
}

func applyCredit(tx *gorm.DB, accountID uint, amount int64, kind models.TransactionKind, description string) (*Result, error) {
	res := tx.Model(&models.User{}).
		Where("id = ?", accountID).
		UpdateColumn("credits", gorm.Expr("credits + ?", amount))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrAccountNotFound
	}

	txRecord := models.CreditTransaction{
		UserID:      accountID,
		Delta:       amount,
		Kind:        kind,
		Description: description,
	}
	if err := tx.Create(&txRecord).Error; err != nil {
		return nil, err
	}

	balance, err := readBalance(tx, accountID)
	if err != nil {
		return nil, err
	}
	return &Result{NewBalance: balance, TxID: txRecord.ID}, nil
}

func readBalance(tx *gorm.DB, accountID uint) (int64, error) {
	var user models.User
	if err := tx.Select("credits").First(&user, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrAccountNotFound
		}
		return 0, err
	}
	return user.Credits, nil
}
