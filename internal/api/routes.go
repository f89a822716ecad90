package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bilgisen/picreel/internal/app"
	"github.com/bilgisen/picreel/internal/middleware"
)

// NewServer returns a Fiber app configured with the picreel error handling.
func NewServer(a *app.App) *fiber.App {
	cfg := a.Config
	return fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		BodyLimit:    int(cfg.MaxUploadSize),
		ErrorHandler: middleware.NewErrorHandler(StatusFor),
	})
}

// SetupRoutes configures all the routes for the application
func SetupRoutes(server *fiber.App, a *app.App) {
	h := NewHandlers(a)

	server.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := server.Group("/api/v1")
	api.Get("/health", h.HealthCheck)

	images := api.Group("/images")
	{
		images.Get("", h.ListImages)
		images.Post("", h.CreateImage)
		images.Get("/pending/count", h.CountPending)
		images.Post("/bulk-delete", h.BulkDeleteImages)
		images.Get("/:id", h.GetImage)
		images.Get("/:id/raw", h.GetImageRaw)
		images.Patch("/:id", h.UpdateImage)
		images.Delete("/:id", h.DeleteImage)
	}

	sel := api.Group("/selection")
	{
		sel.Get("", h.GetSelection)
		sel.Post("", h.AddToSelection)
		sel.Delete("", h.ClearSelection)
		sel.Delete("/:id", h.RemoveFromSelection)
	}

	gen := api.Group("/generate")
	{
		gen.Post("/article", h.GenerateArticle)
		gen.Post("/video", h.GenerateVideo)
	}

	jobs := api.Group("/jobs")
	{
		jobs.Get("", h.ListJobs)
		jobs.Get("/:id", h.GetJob)
		jobs.Delete("/:id", h.CancelJob)
	}

	exports := api.Group("/exports")
	{
		exports.Get("", h.ListExports)
		exports.Get("/:id", h.GetExport)
		exports.Get("/:id/download", h.DownloadExport)
		exports.Delete("/:id", h.DeleteExport)
	}

	api.Post("/publish", middleware.AdminOnly(a.Config.AdminAPIKey), h.Publish)

	// 404 Handler
	server.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
		})
	})
}
