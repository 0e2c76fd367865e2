package ledger

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/StreamPilotHQ/StreamPilot/app/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "ledger_test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// One connection serializes transactions the way the production MySQL
	// row lock does, so the conditional UPDATE semantics stay testable.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.CreditTransaction{}, &models.Payment{}))
	return db
}

func createAccount(t *testing.T, db *gorm.DB, credits int64) uint {
	t.Helper()

	user := models.User{
		Name:    "tester",
		Email:   "tester@example.com",
		Role:    models.ROLE_USER,
		Status:  models.STATUS_ACTIVE,
		Credits: credits,
	}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

func TestDebitAndCreditFlow(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	accountID := createAccount(t, db, 10)

	result, err := svc.Debit(ctx, accountID, 4, models.TxKindChat, "AI chat message")
	require.NoError(t, err)
	assert.Equal(t, int64(6), result.NewBalance)
	assert.NotZero(t, result.TxID)

	result, err = svc.Credit(ctx, accountID, 5, models.TxKindRefund, "refund")
	require.NoError(t, err)
	assert.Equal(t, int64(11), result.NewBalance)

	balance, err := svc.GetBalance(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, int64(11), balance)

	// The transaction log must always reconcile with the balance column.
	var deltaSum int64
	require.NoError(t, db.Model(&models.CreditTransaction{}).
		Where("user_id = ?", accountID).
		Select("COALESCE(SUM(delta), 0)").Scan(&deltaSum).Error)
	assert.Equal(t, balance, 10+deltaSum)
}

func TestDebitInsufficientCredits(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	accountID := createAccount(t, db, 3)

	_, err := svc.Debit(ctx, accountID, 5, models.TxKindContentGeneration, "too expensive")
	assert.ErrorIs(t, err, ErrInsufficientCredits)

	// Balance untouched, no transaction appended.
	balance, err := svc.GetBalance(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), balance)

	var count int64
	require.NoError(t, db.Model(&models.CreditTransaction{}).Where("user_id = ?", accountID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestMutationValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	accountID := createAccount(t, db, 10)

	_, err := svc.Debit(ctx, accountID, 0, models.TxKindChat, "")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Debit(ctx, accountID, -2, models.TxKindChat, "")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Debit(ctx, accountID, 1, models.TransactionKind("bogus"), "")
	assert.ErrorIs(t, err, ErrInvalidKind)

	_, err = svc.Debit(ctx, 9999, 1, models.TxKindChat, "")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, err = svc.Credit(ctx, 9999, 1, models.TxKindPurchase, "")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, err = svc.GetBalance(ctx, 9999)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	accountID := createAccount(t, db, 5)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Debit(ctx, accountID, 3, models.TxKindSEO, "race")
		}(i)
	}
	wg.Wait()

	// Exactly one of the two concurrent debits wins; the loser sees the
	// insufficient-credits rejection, never a negative balance.
	var succeeded, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, ErrInsufficientCredits):
			rejected++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)

	balance, err := svc.GetBalance(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), balance)
}

func TestCreditFromPaymentIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	accountID := createAccount(t, db, 0)

	result, applied, err := svc.CreditFromPayment(ctx, accountID, "streampay", "pi_123", 999, 100)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, int64(100), result.NewBalance)

	// Replaying the same provider payment id changes nothing.
	result, applied, err = svc.CreditFromPayment(ctx, accountID, "streampay", "pi_123", 999, 100)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, int64(100), result.NewBalance)

	var paymentCount, txCount int64
	require.NoError(t, db.Model(&models.Payment{}).Count(&paymentCount).Error)
	require.NoError(t, db.Model(&models.CreditTransaction{}).Where("user_id = ?", accountID).Count(&txCount).Error)
	assert.Equal(t, int64(1), paymentCount)
	assert.Equal(t, int64(1), txCount)

	// A different payment id from the same provider credits again.
	result, applied, err = svc.CreditFromPayment(ctx, accountID, "streampay", "pi_456", 3999, 500)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, int64(600), result.NewBalance)
}

func TestCreditFromPaymentUnknownAccount(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	accountID := createAccount(t, db, 0)
	_, applied, err := svc.CreditFromPayment(ctx, accountID, "streampay", "pi_789", 999, 100)
	require.NoError(t, err)
	require.True(t, applied)

	// Fresh payment for a missing account.
	_, _, err = svc.CreditFromPayment(ctx, 9999, "streampay", "pi_790", 999, 100)
	assert.ErrorIs(t, err, ErrAccountNotFound)

	// Duplicate payment id paired with a missing account takes the
	// short-circuit path and still reports the account, not a raw storage
	// error.
	_, _, err = svc.CreditFromPayment(ctx, 9999, "streampay", "pi_789", 999, 100)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestListPayments(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	accountID := createAccount(t, db, 0)
	_, _, err := svc.CreditFromPayment(ctx, accountID, "streampay", "pi_a", 999, 100)
	require.NoError(t, err)
	_, _, err = svc.CreditFromPayment(ctx, accountID, "streampay", "pi_b", 3999, 500)
	require.NoError(t, err)

	payments, err := svc.ListPayments(ctx, accountID, 10)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, "pi_b", payments[0].ProviderPaymentID)
	assert.Equal(t, "pi_a", payments[1].ProviderPaymentID)
	assert.Equal(t, int64(500), payments[0].CreditsPurchased)

	_, err = svc.ListPayments(ctx, 9999, 10)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestListTransactionsCursor(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	accountID := createAccount(t, db, 10)
	for i := 0; i < 5; i++ {
		_, err := svc.Debit(ctx, accountID, 1, models.TxKindChat, "turn")
		require.NoError(t, err)
	}

	page, err := svc.ListTransactions(ctx, accountID, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Greater(t, page[0].ID, page[1].ID)

	next, err := svc.ListTransactions(ctx, accountID, 10, page[1].ID)
	require.NoError(t, err)
	require.Len(t, next, 3)
	for _, tx := range next {
		assert.Less(t, tx.ID, page[1].ID)
		assert.Equal(t, int64(-1), tx.Delta)
	}

	_, err = svc.ListTransactions(ctx, 9999, 10, 0)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}
