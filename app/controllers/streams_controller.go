package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/StreamPilotHQ/StreamPilot/app/models"
	"github.com/StreamPilotHQ/StreamPilot/app/repository"
	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/accountcontext"
	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/webhook"
)

type createStreamRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Platforms   []string `json:"platforms"`
}

// HandleCreateStream provisions a broadcast configuration in idle state.
func HandleCreateStream(c *fiber.Ctx) error {
	accountID := accountcontext.AccountID(c)

	var req createStreamRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Title == "" {
		return badRequest(c, "Title is required")
	}
	if len(req.Platforms) == 0 {
		req.Platforms = []string{"youtube", "twitch"}
	}

	stream := models.Stream{
		ID:          uuid.New().String(),
		UserID:      accountID,
		Title:       req.Title,
		Description: req.Description,
		Platforms:   strings.Join(req.Platforms, ","),
		Status:      models.StreamStatusIdle,
	}
	if err := repository.GetGlobalFactory().GetStreamRepository().Create(&stream); err != nil {
		return internalError(c, "Failed to create stream")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"stream": stream})
}

// HandleStartStream flips an idle stream live and notifies the owner's
// webhook subscribers.
func HandleStartStream(c *fiber.Ctx) error {
	accountID := accountcontext.AccountID(c)
	id := c.Params("id")

	repo := repository.GetGlobalFactory().GetStreamRepository()
	stream, err := repo.GetByIDAndUser(id, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Stream not found")
		}
		return internalError(c, "Failed to load stream")
	}

	if stream.Status != models.StreamStatusIdle {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "invalid_state",
			"message": "Stream is not idle",
		})
	}

	now := time.Now().UTC()
	stream.Status = models.StreamStatusLive
	stream.StartedAt = &now
	if err := repo.Update(stream); err != nil {
		return internalError(c, "Failed to start stream")
	}

	webhook.GetDispatcher().Emit(accountID, models.EventStreamStarted, map[string]interface{}{
		"stream_id": stream.ID,
		"title":     stream.Title,
		"platforms": stream.Platforms,
	})

	return c.JSON(fiber.Map{"stream": stream})
}

// HandleStopStream ends a live stream and notifies the owner's webhook
// subscribers.
func HandleStopStream(c *fiber.Ctx) error {
	accountID := accountcontext.AccountID(c)
	id := c.Params("id")

	repo := repository.GetGlobalFactory().GetStreamRepository()
	stream, err := repo.GetByIDAndUser(id, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Stream not found")
		}
		return internalError(c, "Failed to load stream")
	}

	if stream.Status != models.StreamStatusLive {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "invalid_state",
			"message": "Stream is not live",
		})
	}

	now := time.Now().UTC()
	stream.Status = models.StreamStatusEnded
	stream.EndedAt = &now
	if err := repo.Update(stream); err != nil {
		return internalError(c, "Failed to stop stream")
	}

	webhook.GetDispatcher().Emit(accountID, models.EventStreamStopped, map[string]interface{}{
		"stream_id":    stream.ID,
		"title":        stream.Title,
		"viewers_peak": stream.ViewersPeak,
	})

	return c.JSON(fiber.Map{"stream": stream})
}

type streamMetricsRequest struct {
	FPS     int `json:"fps"`
	Bitrate int `json:"bitrate"`
	Viewers int `json:"viewers"`
}

// HandleRecordStreamMetrics stores a health sample reported by the streaming
// client and raises the stream's viewer peak when the sample exceeds it.
func HandleRecordStreamMetrics(c *fiber.Ctx) error {
	accountID := accountcontext.AccountID(c)
	id := c.Params("id")

	var req streamMetricsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Viewers < 0 || req.FPS < 0 || req.Bitrate < 0 {
		return badRequest(c, "Metric values must not be negative")
	}

	repo := repository.GetGlobalFactory().GetStreamRepository()
	if _, err := repo.GetByIDAndUser(id, accountID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Stream not found")
		}
		return internalError(c, "Failed to load stream")
	}

	metric := models.StreamMetric{
		StreamID: id,
		FPS:      req.FPS,
		Bitrate:  req.Bitrate,
		Viewers:  req.Viewers,
	}
	if err := repo.RecordMetrics(&metric); err != nil {
		return internalError(c, "Failed to save metrics")
	}

	return c.JSON(fiber.Map{"success": true})
}

// HandleGetStream returns one of the caller's streams.
func HandleGetStream(c *fiber.Ctx) error {
	accountID := accountcontext.AccountID(c)

	stream, err := repository.GetGlobalFactory().GetStreamRepository().GetByIDAndUser(c.Params("id"), accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Stream not found")
		}
		return internalError(c, "Failed to load stream")
	}

	return c.JSON(fiber.Map{"stream": stream})
}

// HandleListStreams returns the caller's streams, newest first. The status
// query param filters by lifecycle state.
func HandleListStreams(c *fiber.Ctx) error {
	accountID := accountcontext.AccountID(c)
	status := c.Query("status")

	streams, err := repository.GetGlobalFactory().GetStreamRepository().ListByUser(accountID, status, 50)
	if err != nil {
		return internalError(c, "Failed to list streams")
	}

	return c.JSON(fiber.Map{"streams": streams})
}
