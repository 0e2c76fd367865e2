package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/StreamPilotHQ/StreamPilot/app/controllers"
	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/cache"
	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/middleware"
	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/ratelimit"
)

type ApiRouter struct {
	limiter *ratelimit.Limiter
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{
		limiter: ratelimit.NewLimiter(ratelimit.NewRedisCounterStore(cache.GetClient()), ratelimit.DefaultGroups()),
	}
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	// Account resolution runs before rate limiting so that limits key on the
	// account where one is present.
	app.Use(middleware.AccountContextMiddleware)

	api := app.Group("/api", ratelimit.Middleware(h.limiter, ratelimit.GroupGeneral))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "StreamPilot API",
		})
	})

	v1 := api.Group("/v1")

	// The notification route authenticates via HMAC, not the account header.
	v1.Post("/payments/notify", controllers.HandlePaymentNotification)
	v1.Get("/payments/packages", controllers.HandleListPackages)

	authed := v1.Group("", middleware.RequireAccount)

	authed.Get("/user/credits", controllers.HandleGetCredits)
	authed.Get("/user/credits/transactions", controllers.HandleListCreditTransactions)

	chat := authed.Group("/chat", ratelimit.Middleware(h.limiter, ratelimit.GroupChat))
	chat.Post("/", controllers.HandleChat)
	chat.Get("/history/:session_id", controllers.HandleChatHistory)

	automation := authed.Group("/automation", ratelimit.Middleware(h.limiter, ratelimit.GroupGeneration))
	automation.Post("/content/generate", controllers.HandleGenerateContent)
	automation.Post("/content/video", controllers.HandleGenerateVideo)
	automation.Post("/content/repurpose", controllers.HandleRepurposeContent)
	automation.Post("/seo/optimize", controllers.HandleOptimizeSEO)
	automation.Post("/social/publish", controllers.HandlePublishSocial)
	automation.Get("/generations", controllers.HandleListGenerations)
	automation.Post("/workflows/create", controllers.HandleCreateWorkflow)
	automation.Get("/workflows", controllers.HandleListWorkflows)

	authed.Post("/payments/intent", controllers.HandleCreatePaymentIntent)
	authed.Get("/payments/history", controllers.HandleListPaymentHistory)

	authed.Post("/webhooks", controllers.HandleRegisterWebhook)
	authed.Get("/webhooks", controllers.HandleListWebhooks)
	authed.Put("/webhooks/:id", controllers.HandleUpdateWebhook)
	authed.Delete("/webhooks/:id", controllers.HandleDeleteWebhook)
	authed.Get("/webhooks/:id/deliveries", controllers.HandleListWebhookDeliveries)

	authed.Post("/streams", controllers.HandleCreateStream)
	authed.Get("/streams", controllers.HandleListStreams)
	authed.Get("/streams/:id", controllers.HandleGetStream)
	authed.Post("/streams/:id/start", controllers.HandleStartStream)
	authed.Post("/streams/:id/stop", controllers.HandleStopStream)
	authed.Post("/streams/:id/metrics", controllers.HandleRecordStreamMetrics)
}
