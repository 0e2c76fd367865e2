package middleware

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/StreamPilotHQ/StreamPilot/app/models"
	"github.com/StreamPilotHQ/StreamPilot/app/repository"
	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/accountcontext"
)

// Header carrying the account id resolved by the upstream identity service.
// By the time a request reaches this service the edge has already verified
// credentials; we only load the account and attach it to the request.
const AccountHeader = "X-Account-ID"

// AccountContextMiddleware resolves the caller's account for every request
// and stores an AccountContext in the request locals. Requests without the
// header stay anonymous; protected routes reject those via RequireAccount.
func AccountContextMiddleware(c *fiber.Ctx) error {
	raw := strings.TrimSpace(c.Get(AccountHeader))
	if raw == "" {
		accountcontext.Set(c, accountcontext.AccountContext{Resolved: false})
		return c.Next()
	}

	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "invalid_account",
			"message": "Account header is not a valid account id",
		})
	}

	user, err := repository.GetGlobalFactory().GetUserRepository().GetByID(uint(id))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unknown_account",
			"message": "Account does not exist",
		})
	}

	if user.Status != models.STATUS_ACTIVE {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "account_disabled",
			"message": "Account is not active",
		})
	}

	accountcontext.Set(c, accountcontext.AccountContext{
		AccountID: user.ID,
		Name:      user.Name,
		Role:      user.Role,
		Resolved:  true,
	})

	return c.Next()
}

// RequireAccount guards routes that need a resolved account.
func RequireAccount(c *fiber.Ctx) error {
	if !accountcontext.IsResolved(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "Account identification required",
		})
	}
	return c.Next()
}
