package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Deps struct {
	CatalogHandler *CatalogHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	api := e.Group("/api")

	products := api.Group("/products")
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)
	products.POST("", d.CatalogHandler.CreateProduct)
	products.DELETE("/:id", d.CatalogHandler.DeleteProduct)

	categories := api.Group("/categories")
	categories.GET("", d.CatalogHandler.GetCategories)
	categories.GET("/:id", d.CatalogHandler.GetCategory)
	categories.GET("/:id/filters", d.CatalogHandler.GetFilters)
	categories.POST("", d.CatalogHandler.CreateCategory)
	categories.PUT("/:id", d.CatalogHandler.UpdateCategory)
	categories.DELETE("/:id", d.CatalogHandler.DeleteCategory)
	categories.POST("/:id/attributes", d.CatalogHandler.AddAttribute)
}
