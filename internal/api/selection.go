package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/picreel/internal/middleware"
)

type selectRequest struct {
	ID string `json:"id" validate:"required"`
}

func (h *Handlers) selectionBody(c *fiber.Ctx) error {
	ids := h.app.Selection.IDs()
	return c.JSON(fiber.Map{
		"ids":   ids,
		"count": len(ids),
	})
}

// GetSelection handles GET /api/v1/selection
func (h *Handlers) GetSelection(c *fiber.Ctx) error {
	return h.selectionBody(c)
}

// AddToSelection handles POST /api/v1/selection
func (h *Handlers) AddToSelection(c *fiber.Ctx) error {
	var req selectRequest
	if err := middleware.Bind(c, &req); err != nil {
		return err
	}
	if _, err := h.app.Images.Get(c.UserContext(), req.ID); err != nil {
		return err
	}
	if err := h.app.Selection.Add(req.ID); err != nil {
		return err
	}
	return h.selectionBody(c)
}

// RemoveFromSelection handles DELETE /api/v1/selection/:id
func (h *Handlers) RemoveFromSelection(c *fiber.Ctx) error {
	if !h.app.Selection.Remove(c.Params("id")) {
		return fiber.NewError(fiber.StatusNotFound, "Image is not selected")
	}
	return h.selectionBody(c)
}

// ClearSelection handles DELETE /api/v1/selection
func (h *Handlers) ClearSelection(c *fiber.Ctx) error {
	h.app.Selection.Clear()
	return h.selectionBody(c)
}
