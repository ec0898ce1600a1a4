package router

import (
	"masterlist-web/internal/bootstrap"
	"masterlist-web/internal/config"
	"masterlist-web/internal/handler"

	"github.com/gofiber/fiber/v2"
)

func Setup(app *fiber.App, components *bootstrap.Components, enqueuer handler.TaskEnqueuer, cfg *config.Config) {
	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"app":     cfg.AppName,
			"backend": cfg.MasterlistBackend,
		})
	})

	// API routes (JSON)
	api := app.Group("/api/v1")
	SetupAPIRoutes(api, components, enqueuer, cfg)
}
