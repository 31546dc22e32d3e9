package http

import (
	"context"

	"encheres/internal/category/domain"
	"encheres/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// CategoryLister is the read side the listing endpoint needs.
type CategoryLister interface {
	ListAll(ctx context.Context) ([]*domain.Category, error)
}

// CategoryHandler serves the category list backing the search filter.
type CategoryHandler struct {
	categories CategoryLister
}

func NewCategoryHandler(categories CategoryLister) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

func (h *CategoryHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/api/categories", h.listCategories)
}

func (h *CategoryHandler) listCategories(c *fiber.Ctx) error {
	categories, err := h.categories.ListAll(c.Context())
	if err != nil {
		log.Error("failed to list categories", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "operation failed"})
	}
	out := make([]fiber.Map, 0, len(categories))
	for _, cat := range categories {
		out = append(out, fiber.Map{"id": cat.ID, "label": cat.Label})
	}
	return c.JSON(out)
}
