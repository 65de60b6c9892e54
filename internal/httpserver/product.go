package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/twotimesgi/cardtrader-assignment/internal/logging"
	"github.com/twotimesgi/cardtrader-assignment/internal/query"
	"github.com/twotimesgi/cardtrader-assignment/internal/service"
	"github.com/twotimesgi/cardtrader-assignment/internal/transport"
	"github.com/twotimesgi/cardtrader-assignment/internal/util"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

// GetProducts is the catalog browse endpoint: attribute filters arrive as
// attribute_<name>=<comma-separated values>, ordering as order_by, plus
// search, skip and take. Filter state is user-controlled and never
// errors; anything malformed is ignored by the parser.
func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	req := query.ParseFilterRequest(c.QueryParams())

	products, count, err := h.Svc.GetProducts(ctx, req)
	if err != nil {
		return respondError(l, "get_products", err)
	}

	l.Info("get_products_success", "count", count, "returned", len(products))
	return c.JSON(http.StatusOK, transport.ProductsResponse{Products: products, Count: count})
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("get_product_failed", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id must be a valid UUID")
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return respondError(l, "get_product", err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_product_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		return respondError(l, "create_product", err)
	}

	l.Info("create_product_success", "product_id", product.ID)
	return c.JSON(http.StatusCreated, product)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("delete_product_failed", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id must be a valid UUID")
	}

	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return respondError(l, "delete_product", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}

// SearchProducts serves the fuzzy quick-search backed by the external
// index, separate from the filtered browse path.
func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search_products")

	q := c.QueryParam("q")
	if q == "" {
		l.Warn("search_products_failed", "status", 400, "reason", "empty query")
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}

	skip := util.ParseIntDefault(c.QueryParam("skip"), 0)
	take := util.ParseIntDefault(c.QueryParam("take"), util.DefaultTake)
	skip, take = util.ClampSkipTake(skip, take)

	total, docs, err := h.Svc.SearchProducts(ctx, q, skip, take)
	if err != nil {
		return respondError(l, "search_products", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"total": total, "products": docs})
}
