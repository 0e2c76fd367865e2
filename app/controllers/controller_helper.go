package controllers

import (
	"sync"

	"github.com/gofiber/fiber/v2"

	"github.com/StreamPilotHQ/StreamPilot/app/models"
	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/assistant"
	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/database"
	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/ledger"
	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/webhook"
)

var (
	ledgerOnce sync.Once
	ledgerSvc  *ledger.Service

	assistantMu     sync.RWMutex
	assistantClient assistant.Client
)

// Ledger returns the shared ledger service bound to the global database
// handle.
func Ledger() *ledger.Service {
	ledgerOnce.Do(func() {
		ledgerSvc = ledger.NewService(database.GetDB())
	})
	return ledgerSvc
}

// SetLedger overrides the shared ledger service. Used by tests.
func SetLedger(s *ledger.Service) {
	ledgerOnce.Do(func() {})
	ledgerSvc = s
}

// Assistant returns the configured assistant client, building the default
// HTTP client on first use.
func Assistant() assistant.Client {
	assistantMu.RLock()
	client := assistantClient
	assistantMu.RUnlock()
	if client != nil {
		return client
	}

	assistantMu.Lock()
	defer assistantMu.Unlock()
	if assistantClient == nil {
		assistantClient = assistant.NewHTTPClient()
	}
	return assistantClient
}

// SetAssistant overrides the assistant client. Used by tests.
func SetAssistant(client assistant.Client) {
	assistantMu.Lock()
	assistantClient = client
	assistantMu.Unlock()
}

// paymentRequired renders the insufficient-funds response for metered routes.
func paymentRequired(c *fiber.Ctx, required, current int64) error {
	return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
		"error":    "insufficient_credits",
		"message":  "Not enough credits for this action",
		"required": required,
		"current":  current,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "bad_request",
		"message": message,
	})
}

func notFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error":   "not_found",
		"message": message,
	})
}

func internalError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "internal_server_error",
		"message": message,
	})
}

// emitCreditsChanged publishes a balance change to the account's webhook
// subscribers. Best effort; the ledger write has already committed.
func emitCreditsChanged(accountID uint, delta int64, kind models.TransactionKind, newBalance int64) {
	webhook.GetDispatcher().Emit(accountID, models.EventCreditsChanged, map[string]interface{}{
		"account_id":  accountID,
		"delta":       delta,
		"kind":        string(kind),
		"new_balance": newBalance,
	})
}
