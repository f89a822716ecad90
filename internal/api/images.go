package api

import (
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/picreel/internal/middleware"
	"github.com/bilgisen/picreel/internal/models"
)

type listImagesQuery struct {
	Search string `query:"search" validate:"max=200"`
	State  string `query:"state" validate:"omitempty,oneof=pending published"`
}

type updateImageRequest struct {
	Caption *string `json:"caption" validate:"omitempty,max=5000"`
	State   *string `json:"state" validate:"omitempty,oneof=pending published"`
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm)
}

// formImage reads the uploaded "image" part. A missing part returns nil.
func formImage(c *fiber.Ctx) ([]byte, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid image upload: "+err.Error())
	}
	defer f.Close()
	return io.ReadAll(f)
}

// CreateImage handles POST /api/v1/images
func (h *Handlers) CreateImage(c *fiber.Ctx) error {
	data, err := formImage(c)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "An image file is required")
	}

	published, _ := strconv.ParseBool(c.FormValue("published", "false"))
	id, err := h.app.Images.Add(c.UserContext(), data, c.FormValue("caption"), published)
	if err != nil {
		return err
	}

	rec, err := h.app.Images.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	h.log.Info().Str("id", id).Int("size", rec.Size).Str("mime", rec.MimeType).Msg("image added")
	return c.Status(fiber.StatusCreated).JSON(rec)
}

// ListImages handles GET /api/v1/images
func (h *Handlers) ListImages(c *fiber.Ctx) error {
	var q listImagesQuery
	if err := middleware.BindQuery(c, &q); err != nil {
		return err
	}

	filter := models.ImageFilter{Search: q.Search}
	if q.State != "" {
		state, err := models.ParseImageState(q.State)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		filter.State = &state
	}

	items, err := h.app.Images.Query(c.UserContext(), filter)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*models.ImageRecord{}
	}
	return c.JSON(fiber.Map{
		"total": len(items),
		"items": items,
	})
}

// GetImage handles GET /api/v1/images/:id
func (h *Handlers) GetImage(c *fiber.Ctx) error {
	rec, err := h.app.Images.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(rec)
}

// GetImageRaw handles GET /api/v1/images/:id/raw
func (h *Handlers) GetImageRaw(c *fiber.Ctx) error {
	rec, err := h.app.Images.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, rec.MimeType)
	c.Set(fiber.HeaderCacheControl, "private, max-age=300")
	return c.Send(rec.ImageData)
}

// UpdateImage handles PATCH /api/v1/images/:id. Multipart bodies may replace
// the image itself.
func (h *Handlers) UpdateImage(c *fiber.Ctx) error {
	var req updateImageRequest
	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid multipart body: "+err.Error())
		}
		if v, ok := form.Value["caption"]; ok && len(v) > 0 {
			req.Caption = &v[0]
		}
		if v, ok := form.Value["state"]; ok && len(v) > 0 {
			req.State = &v[0]
		}
		if err := middleware.Validate(&req); err != nil {
			return err
		}
	} else if err := middleware.Bind(c, &req); err != nil {
		return err
	}

	upd := models.ImageUpdate{Caption: req.Caption}
	if req.State != nil {
		state, err := models.ParseImageState(*req.State)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		upd.State = &state
	}
	if isMultipart(c) {
		data, err := formImage(c)
		if err != nil {
			return err
		}
		upd.ImageData = data
	}

	rec, err := h.app.Images.Update(c.UserContext(), c.Params("id"), upd)
	if err != nil {
		return err
	}
	return c.JSON(rec)
}

// DeleteImage handles DELETE /api/v1/images/:id
func (h *Handlers) DeleteImage(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.app.Images.Delete(c.UserContext(), id); err != nil {
		return err
	}
	h.app.Selection.Remove(id)
	return c.JSON(fiber.Map{
		"status": "deleted",
		"id":     id,
	})
}

// BulkDeleteImages handles POST /api/v1/images/bulk-delete
func (h *Handlers) BulkDeleteImages(c *fiber.Ctx) error {
	var req bulkDeleteRequest
	if err := middleware.Bind(c, &req); err != nil {
		return err
	}

	n, err := h.app.Images.BulkDelete(c.UserContext(), req.IDs)
	if err != nil {
		return err
	}
	for _, id := range req.IDs {
		h.app.Selection.Remove(id)
	}
	return c.JSON(fiber.Map{
		"status":  "deleted",
		"deleted": n,
	})
}

// CountPending handles GET /api/v1/images/pending/count
func (h *Handlers) CountPending(c *fiber.Ctx) error {
	n, err := h.app.Images.CountPending(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"count": n})
}
