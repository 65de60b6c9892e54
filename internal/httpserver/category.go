package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/twotimesgi/cardtrader-assignment/internal/logging"
	"github.com/twotimesgi/cardtrader-assignment/internal/transport"
)

func (h *CatalogHTTP) GetCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.get_categories")

	categories, err := h.Svc.ListCategories(ctx)
	if err != nil {
		return respondError(l, "get_categories", err)
	}
	return c.JSON(http.StatusOK, categories)
}

func (h *CatalogHTTP) GetCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.get_category")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("get_category_failed", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id must be a valid UUID")
	}

	category, err := h.Svc.GetCategory(ctx, id)
	if err != nil {
		return respondError(l, "get_category", err)
	}
	return c.JSON(http.StatusOK, category)
}

// GetFilters returns the filter vocabulary of a category: per attribute,
// its type, required flag and the distinct values seen across products.
// Reads fail soft: an unknown category yields an empty list.
func (h *CatalogHTTP) GetFilters(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.get_filters")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("get_filters_failed", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id must be a valid UUID")
	}

	filters, err := h.Svc.ComputeFilters(ctx, id)
	if err != nil {
		return respondError(l, "get_filters", err)
	}
	return c.JSON(http.StatusOK, filters)
}

func (h *CatalogHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.create_category")

	var req transport.CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_category_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	category, err := h.Svc.CreateCategory(ctx, req)
	if err != nil {
		return respondError(l, "create_category", err)
	}

	l.Info("create_category_success", "category_id", category.ID)
	return c.JSON(http.StatusCreated, category)
}

// UpdateCategory applies a full schema edit. The attribute diff and the
// resulting unpublication of now-ineligible products happen in one
// atomic operation; the response reports how many products were
// unpublished.
func (h *CatalogHTTP) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.update_category")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("update_category_failed", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id must be a valid UUID")
	}

	var req transport.UpdateCategoryRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_category_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	category, unpublished, err := h.Svc.UpdateCategory(ctx, id, req)
	if err != nil {
		return respondError(l, "update_category", err)
	}

	l.Info("update_category_success", "category_id", id, "unpublished", unpublished)
	return c.JSON(http.StatusOK, echo.Map{
		"category":    category,
		"unpublished": unpublished,
	})
}

func (h *CatalogHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.delete_category")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("delete_category_failed", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id must be a valid UUID")
	}

	if err := h.Svc.DeleteCategory(ctx, id); err != nil {
		return respondError(l, "delete_category", err)
	}

	l.Info("delete_category_success", "category_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) AddAttribute(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.add_attribute")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("add_attribute_failed", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id must be a valid UUID")
	}

	var req transport.AttributeInput
	if err := c.Bind(&req); err != nil {
		l.Warn("add_attribute_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	attr, err := h.Svc.AddAttribute(ctx, id, req)
	if err != nil {
		return respondError(l, "add_attribute", err)
	}

	l.Info("add_attribute_success", "category_id", id, "attribute_id", attr.ID)
	return c.JSON(http.StatusCreated, attr)
}
