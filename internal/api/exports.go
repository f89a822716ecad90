package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/picreel/internal/middleware"
	"github.com/bilgisen/picreel/internal/models"
)

type pageQuery struct {
	Page     int `query:"page"`
	PageSize int `query:"page_size"`
}

type publishRequest struct {
	IDs []string `json:"ids" validate:"omitempty,dive,required"`
}

// ListExports handles GET /api/v1/exports
func (h *Handlers) ListExports(c *fiber.Ctx) error {
	var q pageQuery
	if err := middleware.BindQuery(c, &q); err != nil {
		return err
	}
	if q.Page < 1 {
		q.Page = 1
	}
	switch {
	case q.PageSize > 100:
		q.PageSize = 100
	case q.PageSize <= 0:
		q.PageSize = 20
	}

	items, err := h.app.Exports.List(c.UserContext(), q.Page, q.PageSize)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*models.Export{}
	}
	return c.JSON(fiber.Map{
		"page":      q.Page,
		"page_size": q.PageSize,
		"total":     len(items),
		"items":     items,
	})
}

// GetExport handles GET /api/v1/exports/:id
func (h *Handlers) GetExport(c *fiber.Ctx) error {
	exp, err := h.app.Exports.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(exp)
}

// DownloadExport handles GET /api/v1/exports/:id/download
func (h *Handlers) DownloadExport(c *fiber.Ctx) error {
	exp, err := h.app.Exports.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if err := c.Download(exp.FilePath, exp.FileName); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, exp.MimeType)
	return nil
}

// DeleteExport handles DELETE /api/v1/exports/:id
func (h *Handlers) DeleteExport(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.app.Exports.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status": "deleted",
		"id":     id,
	})
}

// Publish handles POST /api/v1/publish. Published images leave the selection.
func (h *Handlers) Publish(c *fiber.Ctx) error {
	var req publishRequest
	if err := middleware.Bind(c, &req); err != nil {
		return err
	}

	ids := h.selectionOr(req.IDs)
	if len(ids) == 0 {
		return nothingSelected(c)
	}

	res, err := h.app.Publisher.Publish(c.UserContext(), ids)
	if res != nil {
		for _, id := range res.ImageIDs {
			h.app.Selection.Remove(id)
		}
	}
	if err != nil {
		return err
	}
	return c.JSON(res)
}
