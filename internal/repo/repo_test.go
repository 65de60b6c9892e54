package repo

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/twotimesgi/cardtrader-assignment/internal/models"
	"github.com/twotimesgi/cardtrader-assignment/internal/query"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	// One connection only: every pooled connection to :memory: would get
	// its own empty database.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, gdb.AutoMigrate(
		&models.Category{},
		&models.Attribute{},
		&models.Product{},
		&models.ProductAttributeValue{},
		&models.ProductImage{},
	))

	return &GormRepo{DB: gdb}
}

func seedCategory(t *testing.T, r *GormRepo, name string, attrs ...models.Attribute) (models.Category, map[string]models.Attribute) {
	t.Helper()

	category := models.Category{Name: name}
	require.NoError(t, r.DB.Create(&category).Error)

	byName := make(map[string]models.Attribute, len(attrs))
	for i := range attrs {
		attrs[i].CategoryID = category.ID
		require.NoError(t, r.DB.Create(&attrs[i]).Error)
		byName[attrs[i].Name] = attrs[i]
	}
	return category, byName
}

// seedProduct inserts a product and its attribute values directly, without
// going through CreateProduct, so tests can stage products that violate
// current schema rules (e.g. missing required values).
func seedProduct(t *testing.T, r *GormRepo, categoryID uuid.UUID, model, brand, price string, values map[uuid.UUID]string) models.Product {
	t.Helper()

	product := models.Product{
		CategoryID: categoryID,
		Model:      model,
		Brand:      brand,
		Price:      decimal.RequireFromString(price),
		Published:  true,
	}
	require.NoError(t, r.DB.Create(&product).Error)

	for attrID, value := range values {
		pav := models.ProductAttributeValue{ProductID: product.ID, AttributeID: attrID, Value: value}
		require.NoError(t, r.DB.Create(&pav).Error)
	}
	return product
}

func filterReq(categoryID *uuid.UUID) query.FilterRequest {
	return query.FilterRequest{
		CategoryID:       categoryID,
		OrderBy:          query.OrderNewest,
		Take:             50,
		AttributeFilters: map[string][]string{},
	}
}

func productIDs(products []models.Product) map[uuid.UUID]bool {
	ids := make(map[uuid.UUID]bool, len(products))
	for _, p := range products {
		ids[p.ID] = true
	}
	return ids
}
