package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/StreamPilotHQ/StreamPilot/app/models"
	"github.com/StreamPilotHQ/StreamPilot/app/repository"
	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/accountcontext"
	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/webhook"
)

func webhookRegistry() *webhook.Registry {
	return webhook.NewRegistry(repository.GetGlobalFactory().GetWebhookRepository())
}

type registerWebhookRequest struct {
	URL    string   `json:"url"`
	Events []string `json:"events"`
}

// HandleRegisterWebhook creates a webhook endpoint for the caller. The
// response carries the signing secret exactly once; it cannot be retrieved
// again.
func HandleRegisterWebhook(c *fiber.Ctx) error {
	accountID := accountcontext.AccountID(c)

	var req registerWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.URL == "" {
		return badRequest(c, "Missing url")
	}

	events, ok := models.ParseEventTypes(req.Events)
	if !ok {
		return badRequest(c, "Unknown event type")
	}

	endpoint, secret, err := webhookRegistry().Register(accountID, req.URL, events)
	if err != nil {
		if errors.Is(err, webhook.ErrNoEvents) {
			return badRequest(c, "At least one event type required")
		}
		return internalError(c, "Failed to register webhook")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"webhook": endpoint,
		"secret":  secret,
	})
}

// HandleListWebhooks returns the caller's webhook endpoints, secrets omitted.
func HandleListWebhooks(c *fiber.Ctx) error {
	endpoints, err := webhookRegistry().ListByOwner(accountcontext.AccountID(c))
	if err != nil {
		return internalError(c, "Failed to list webhooks")
	}
	return c.JSON(fiber.Map{"webhooks": endpoints})
}

type updateWebhookRequest struct {
	URL    *string  `json:"url"`
	Events []string `json:"events"`
	Active *bool    `json:"active"`
}

// HandleUpdateWebhook modifies the caller's endpoint. Absent fields are left
// unchanged; the secret is immutable.
func HandleUpdateWebhook(c *fiber.Ctx) error {
	accountID := accountcontext.AccountID(c)
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return badRequest(c, "Invalid webhook id")
	}

	var req updateWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	params := webhook.UpdateParams{URL: req.URL, Active: req.Active}
	if req.Events != nil {
		events, ok := models.ParseEventTypes(req.Events)
		if !ok {
			return badRequest(c, "Unknown event type")
		}
		params.Events = events
	}

	endpoint, err := webhookRegistry().Update(uint(id), accountID, params)
	if err != nil {
		return webhookError(c, err, "Failed to update webhook")
	}

	return c.JSON(fiber.Map{"webhook": endpoint})
}

// HandleDeleteWebhook removes the caller's endpoint.
func HandleDeleteWebhook(c *fiber.Ctx) error {
	accountID := accountcontext.AccountID(c)
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return badRequest(c, "Invalid webhook id")
	}

	if err := webhookRegistry().Delete(uint(id), accountID); err != nil {
		return webhookError(c, err, "Failed to delete webhook")
	}

	return c.JSON(fiber.Map{"deleted": true})
}

// HandleListWebhookDeliveries returns recent delivery attempts for the
// caller's endpoint, newest first.
func HandleListWebhookDeliveries(c *fiber.Ctx) error {
	accountID := accountcontext.AccountID(c)
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return badRequest(c, "Invalid webhook id")
	}

	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	deliveries, err := webhookRegistry().ListDeliveries(uint(id), accountID, limit)
	if err != nil {
		return webhookError(c, err, "Failed to list deliveries")
	}

	return c.JSON(fiber.Map{"deliveries": deliveries})
}

func webhookError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, webhook.ErrEndpointNotFound):
		return notFound(c, "Webhook not found")
	case errors.Is(err, webhook.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "forbidden",
			"message": "Webhook belongs to another account",
		})
	case errors.Is(err, webhook.ErrNoEvents):
		return badRequest(c, "At least one event type required")
	default:
		return internalError(c, fallback)
	}
}
