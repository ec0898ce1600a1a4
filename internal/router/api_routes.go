package router

import (
	"masterlist-web/internal/bootstrap"
	"masterlist-web/internal/config"
	"masterlist-web/internal/handler"
	"masterlist-web/internal/worker"

	"github.com/gofiber/fiber/v2"
)

// SetupAPIRoutes registers the JSON API. enqueuer may be nil, which turns
// background validation and submission off.
func SetupAPIRoutes(
	router fiber.Router,
	components *bootstrap.Components,
	enqueuer handler.TaskEnqueuer,
	cfg *config.Config,
) {
	// Initialize handlers
	importHandler := handler.NewImportHandler(components.Imports, enqueuer, handler.TaskFactory{
		Validate: worker.NewValidateTask,
		Submit:   worker.NewSubmitTask,
	}, cfg)
	masterDataHandler := handler.NewMasterDataHandler(components.MasterData, components.Processes, components.Excel)

	router.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "status": "ok"})
	})

	// Import session routes
	imports := router.Group("/imports")
	imports.Get("/", importHandler.List)
	imports.Get("/export", importHandler.Export)
	imports.Post("/:entity", importHandler.Upload)
	imports.Get("/:code", importHandler.Get)
	imports.Delete("/:code", importHandler.Discard)
	imports.Put("/:code/rows/:row/cells/:col", importHandler.EditCell)
	imports.Post("/:code/rows/:row/revalidate", importHandler.Revalidate)
	imports.Get("/:code/error-report", importHandler.ErrorReport)
	imports.Post("/:code/submit", importHandler.Submit)

	// Templates
	router.Get("/templates/:entity", masterDataHandler.Template)

	// Master data routes
	router.Get("/items", masterDataHandler.ListItems)
	router.Get("/boms", masterDataHandler.ListBoMs)
	router.Get("/processes", masterDataHandler.ListProcesses)
	router.Post("/processes", masterDataHandler.CreateProcess)
	router.Get("/process-steps", masterDataHandler.ListProcessSteps)
	router.Post("/process-steps", masterDataHandler.CreateProcessStep)
	router.Get("/pending-setup", masterDataHandler.PendingSetup)
}
