package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/StreamPilotHQ/StreamPilot/app/models"
	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/accountcontext"
	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/payments"
)

// HandleListPackages returns the purchasable credit bundles.
func HandleListPackages(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"packages": payments.Packages()})
}

type createIntentRequest struct {
	PackageID string `json:"package_id"`
}

// HandleCreatePaymentIntent opens a checkout with the external processor for
// the chosen package. Credits are granted only once the processor's signed
// notification arrives.
func HandleCreatePaymentIntent(c *fiber.Ctx) error {
	accountID := accountcontext.AccountID(c)

	var req createIntentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	pkg, ok := payments.FindPackage(req.PackageID)
	if !ok {
		return badRequest(c, "Invalid package type")
	}

	intent, err := payments.NewProvider().CreateIntent(accountID, pkg)
	if err != nil {
		log.Errorf("[Payments] intent creation failed: %v", err)
		return internalError(c, "Failed to create payment intent")
	}

	return c.JSON(intent)
}

// HandleListPaymentHistory returns the caller's processed payments, most
// recent first.
func HandleListPaymentHistory(c *fiber.Ctx) error {
	accountID := accountcontext.AccountID(c)

	history, err := Ledger().ListPayments(c.Context(), accountID, c.QueryInt("limit", 50))
	if err != nil {
		log.Errorf("[Payments] failed to list payments for account %d: %v", accountID, err)
		return internalError(c, "Failed to fetch payment history")
	}

	return c.JSON(fiber.Map{"payments": history})
}

// HandlePaymentNotification processes the processor's signed callback. A
// succeeded notification credits the purchased package exactly once per
// provider payment id; replays are acknowledged without a balance change.
// This route sits outside the identity middleware; the HMAC signature is the
// authentication.
func HandlePaymentNotification(c *fiber.Ctx) error {
	body := c.Body()

	if !payments.VerifyNotificationSignature(body, c.Get("X-Payment-Signature")) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_signature",
			"message": "Notification signature verification failed",
		})
	}

	notification, err := payments.ParseNotification(body)
	if err != nil {
		return badRequest(c, "Malformed notification")
	}

	switch notification.Type {
	case payments.NotificationSucceeded:
		data := notification.Data
		result, applied, err := Ledger().CreditFromPayment(
			c.Context(), data.AccountID, payments.ProviderName, data.PaymentID, data.Amount, data.Credits)
		if err != nil {
			log.Errorf("[Payments] failed to credit payment %s: %v", data.PaymentID, err)
			return internalError(c, "Notification processing failed")
		}
		if applied {
			log.Infof("[Payments] payment %s credited account %d with %d credits", data.PaymentID, data.AccountID, data.Credits)
			emitCreditsChanged(data.AccountID, data.Credits, models.TxKindPurchase, result.NewBalance)
		} else {
			log.Infof("[Payments] payment %s already processed, skipping", data.PaymentID)
		}

	case payments.NotificationFailed:
		log.Warnf("[Payments] payment %s failed for account %d", notification.Data.PaymentID, notification.Data.AccountID)

	default:
		log.Infof("[Payments] unhandled notification type: %s", notification.Type)
	}

	return c.JSON(fiber.Map{"received": true})
}
