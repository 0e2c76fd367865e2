package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/accountcontext"
	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/ledger"
)

// HandleGetCredits returns the caller's current credit balance.
func HandleGetCredits(c *fiber.Ctx) error {
	accountID := accountcontext.AccountID(c)

	balance, err := Ledger().GetBalance(c.Context(), accountID)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return notFound(c, "Account not found")
		}
		return internalError(c, "Failed to load balance")
	}

	return c.JSON(fiber.Map{
		"account_id": accountID,
		"credits":    balance,
	})
}

// HandleListCreditTransactions returns the caller's transaction log, most
// recent first. Query params: limit (default 50, max 100) and before (an id
// from a previous page).
func HandleListCreditTransactions(c *fiber.Ctx) error {
	accountID := accountcontext.AccountID(c)

	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	beforeID, _ := strconv.ParseUint(c.Query("before", "0"), 10, 32)

	transactions, err := Ledger().ListTransactions(c.Context(), accountID, limit, uint(beforeID))
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return notFound(c, "Account not found")
		}
		return internalError(c, "Failed to load transactions")
	}

	var nextBefore uint
	if len(transactions) > 0 {
		nextBefore = transactions[len(transactions)-1].ID
	}

	return c.JSON(fiber.Map{
		"transactions": transactions,
		"next_before":  nextBefore,
	})
}
