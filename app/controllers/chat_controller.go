package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/StreamPilotHQ/StreamPilot/app/models"
	"github.com/StreamPilotHQ/StreamPilot/app/repository"
	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/accountcontext"
	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/assistant"
	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/ledger"
)

const chatCost int64 = 1

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// HandleChat runs one assistant conversation turn. The turn costs one credit,
// debited after the assistant replies; both sides of the exchange are
// persisted to the session history.
func HandleChat(c *fiber.Ctx) error {
	accountID := accountcontext.AccountID(c)

	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Message == "" || req.SessionID == "" {
		return badRequest(c, "Missing message or session_id")
	}

	// Reject before calling the assistant when the balance clearly cannot
	// cover the turn. The debit below still decides authoritatively.
	balance, err := Ledger().GetBalance(c.Context(), accountID)
	if err != nil {
		return internalError(c, "Failed to load balance")
	}
	if balance < chatCost {
		return paymentRequired(c, chatCost, balance)
	}

	chatRepo := repository.GetGlobalFactory().GetChatRepository()
	stored, err := chatRepo.GetHistory(accountID, req.SessionID, 50)
	if err != nil {
		return internalError(c, "Failed to load chat history")
	}

	history := make([]assistant.Message, 0, len(stored))
	for _, m := range stored {
		history = append(history, assistant.Message{Role: m.Role, Content: m.Content})
	}

	reply, err := Assistant().Chat(c.Context(), history, req.Message)
	if err != nil {
		log.Errorf("[Chat] assistant call failed: %v", err)
		return internalError(c, "Chat request failed")
	}

	result, err := Ledger().Debit(c.Context(), accountID, chatCost, models.TxKindChat, "AI chat message")
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientCredits) {
			current, _ := Ledger().GetBalance(c.Context(), accountID)
			return paymentRequired(c, chatCost, current)
		}
		return internalError(c, "Failed to charge for chat")
	}

	if err := chatRepo.CreateMessage(&models.ChatMessage{
		UserID:    accountID,
		SessionID: req.SessionID,
		Role:      models.ChatRoleUser,
		Content:   req.Message,
	}); err != nil {
		log.Errorf("[Chat] failed to persist user turn: %v", err)
	}
	if err := chatRepo.CreateMessage(&models.ChatMessage{
		UserID:      accountID,
		SessionID:   req.SessionID,
		Role:        models.ChatRoleAssistant,
		Content:     reply,
		CreditsUsed: chatCost,
	}); err != nil {
		log.Errorf("[Chat] failed to persist assistant turn: %v", err)
	}

	emitCreditsChanged(accountID, -chatCost, models.TxKindChat, result.NewBalance)

	return c.JSON(fiber.Map{
		"message":           reply,
		"credits_remaining": result.NewBalance,
		"timestamp":         time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleChatHistory returns the stored turns of one chat session, oldest
// first.
func HandleChatHistory(c *fiber.Ctx) error {
	accountID := accountcontext.AccountID(c)
	sessionID := c.Params("session_id")
	if sessionID == "" {
		return badRequest(c, "Missing session_id")
	}

	messages, err := repository.GetGlobalFactory().GetChatRepository().GetHistory(accountID, sessionID, 100)
	if err != nil {
		return internalError(c, "Failed to fetch chat history")
	}

	return c.JSON(fiber.Map{"messages": messages})
}
