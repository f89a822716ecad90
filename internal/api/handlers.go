package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/bilgisen/picreel/internal/app"
	"github.com/bilgisen/picreel/internal/encode"
	"github.com/bilgisen/picreel/internal/generate"
	"github.com/bilgisen/picreel/internal/logger"
	"github.com/bilgisen/picreel/internal/publish"
	"github.com/bilgisen/picreel/internal/selection"
	"github.com/bilgisen/picreel/internal/speech"
	"github.com/bilgisen/picreel/internal/storage"
	"github.com/bilgisen/picreel/internal/store"
)

// Version is reported by the health endpoint.
var Version = "dev"

type Handlers struct {
	app     *app.App
	log     zerolog.Logger
	started time.Time
}

func NewHandlers(a *app.App) *Handlers {
	return &Handlers{app: a, log: logger.For("api"), started: time.Now()}
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, storage.ErrNotFound),
		errors.Is(err, generate.ErrJobNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, generate.ErrBusy),
		errors.Is(err, selection.ErrDuplicate):
		return fiber.StatusConflict
	case errors.Is(err, encode.ErrUnsupportedFormat):
		return fiber.StatusNotImplemented
	case errors.Is(err, speech.ErrProviderUnconfigured),
		errors.Is(err, publish.ErrNoSink):
		return fiber.StatusServiceUnavailable
	}
	return 0
}

// HealthCheck handles GET /api/v1/health
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	pending, err := h.app.Images.CountPending(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status":    "ok",
		"version":   Version,
		"time":      time.Now().Format(time.RFC3339),
		"uptime":    time.Since(h.started).Round(time.Second).String(),
		"pending":   pending,
		"selected":  h.app.Selection.Len(),
		"narration": h.app.Config.TTSEnabled,
	})
}

// selectionOr returns ids when given, otherwise the current selection.
func (h *Handlers) selectionOr(ids []string) []string {
	if len(ids) > 0 {
		return ids
	}
	return h.app.Selection.IDs()
}
