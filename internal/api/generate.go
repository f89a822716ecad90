package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/picreel/internal/generate"
	"github.com/bilgisen/picreel/internal/middleware"
	"github.com/bilgisen/picreel/internal/models"
)

type generateArticleRequest struct {
	IDs []string `json:"ids" validate:"omitempty,dive,required"`
}

type generateVideoRequest struct {
	IDs         []string `json:"ids" validate:"omitempty,dive,required"`
	Orientation string   `json:"orientation" validate:"omitempty,oneof=landscape portrait"`
}

func nothingSelected(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "skipped",
		"message": "No images selected",
	})
}

// GenerateArticle handles POST /api/v1/generate/article
func (h *Handlers) GenerateArticle(c *fiber.Ctx) error {
	var req generateArticleRequest
	if err := middleware.Bind(c, &req); err != nil {
		return err
	}

	job, err := h.app.Jobs.StartArticle(h.selectionOr(req.IDs))
	if err != nil {
		return err
	}
	if job == nil {
		return nothingSelected(c)
	}
	return c.Status(fiber.StatusAccepted).JSON(job)
}

// GenerateVideo handles POST /api/v1/generate/video
func (h *Handlers) GenerateVideo(c *fiber.Ctx) error {
	var req generateVideoRequest
	if err := middleware.Bind(c, &req); err != nil {
		return err
	}

	// empty means the configured default
	orientation, err := models.ParseOrientation(req.Orientation, "")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	job, err := h.app.Jobs.StartVideo(generate.VideoRequest{
		IDs:         h.selectionOr(req.IDs),
		Orientation: orientation,
	})
	if err != nil {
		return err
	}
	if job == nil {
		return nothingSelected(c)
	}
	h.log.Info().Str("job_id", job.ID).Int("items", len(job.Items)).Msg("video job started")
	return c.Status(fiber.StatusAccepted).JSON(job)
}

// ListJobs handles GET /api/v1/jobs
func (h *Handlers) ListJobs(c *fiber.Ctx) error {
	jobs := h.app.Jobs.List()
	return c.JSON(fiber.Map{
		"total": len(jobs),
		"items": jobs,
	})
}

// GetJob handles GET /api/v1/jobs/:id
func (h *Handlers) GetJob(c *fiber.Ctx) error {
	job, err := h.app.Jobs.Get(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(job)
}

// CancelJob handles DELETE /api/v1/jobs/:id
func (h *Handlers) CancelJob(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.app.Jobs.Cancel(id); err != nil {
		return err
	}
	job, err := h.app.Jobs.Get(id)
	if err != nil {
		return err
	}
	return c.JSON(job)
}
