package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/StreamPilotHQ/StreamPilot/app/repository"
	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/cache"
	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/database"
	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/env"
	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/metrics"
	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/router"
	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/webhook"
)

func main() {
	app := NewApplication()

	// metrics on its own listener, never rate limited
	go metrics.Serve(fmt.Sprintf(":%s", env.GetEnv("METRICS_PORT", "9090")))

	// drain the webhook queue on shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		webhook.GetDispatcher().Stop()
		_ = app.Shutdown()
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	repository.InitializeFactory(database.GetDB())
	webhook.GetDispatcher().Start()

	// Find the correct base path
	basePath := ""
	for _, path := range []string{"./", "../../", "../../../"} {
		if _, err := os.Stat(path + "public"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}
	if basePath == "" {
		panic("Could not find project root directory")
	}

	app := fiber.New(fiber.Config{
		AppName: "StreamPilot",
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: basePath + "public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	// ROUTER
	router.InstallRouter(app)

	return app
}
