package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/twotimesgi/cardtrader-assignment/internal/models"
	"github.com/twotimesgi/cardtrader-assignment/internal/repo"
	"github.com/twotimesgi/cardtrader-assignment/internal/transport"
)

func newTestService(t *testing.T) *CatalogService {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
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

	return &CatalogService{Repo: &repo.GormRepo{DB: gdb}}
}

func fieldNames(verr *ValidationError) []string {
	names := make([]string, len(verr.Fields))
	for i, f := range verr.Fields {
		names[i] = f.Field
	}
	return names
}

func TestCreateCategory_NameTooShort(t *testing.T) {
	s := newTestService(t)

	_, err := s.CreateCategory(context.Background(), transport.CreateCategoryRequest{Name: "A"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, fieldNames(verr), "Name")
}

func TestCreateCategory_DuplicateAttributeNamesNothingWritten(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.CreateCategory(ctx, transport.CreateCategoryRequest{
		Name: "Shoes",
		Attributes: []transport.AttributeInput{
			{Name: "Size"},
			{Name: " size "},
		},
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields[0].Message, "duplicate")

	categories, err := s.ListCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, categories)
}

func TestCreateCategory_TypeDefaultsToString(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	category, err := s.CreateCategory(ctx, transport.CreateCategoryRequest{
		Name: "Shoes",
		Attributes: []transport.AttributeInput{
			{Name: "size", Required: true},
			{Name: "length", Type: "NUMBER"},
		},
	})
	require.NoError(t, err)
	require.Len(t, category.Attributes, 2)

	byName := map[string]models.Attribute{}
	for _, a := range category.Attributes {
		byName[a.Name] = a
	}
	assert.Equal(t, models.AttributeString, byName["size"].Type)
	assert.True(t, byName["size"].Required)
	assert.Equal(t, models.AttributeNumber, byName["length"].Type)
}

func TestCreateCategory_InvalidTypeRejected(t *testing.T) {
	s := newTestService(t)

	_, err := s.CreateCategory(context.Background(), transport.CreateCategoryRequest{
		Name: "Shoes",
		Attributes: []transport.AttributeInput{
			{Name: "size", Type: "DATE"},
		},
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, fieldNames(verr), "Type")
}

func TestCreateProduct_MissingRequiredAttributeNamed(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	category, err := s.CreateCategory(ctx, transport.CreateCategoryRequest{
		Name: "Shoes",
		Attributes: []transport.AttributeInput{
			{Name: "size", Required: true},
		},
	})
	require.NoError(t, err)

	_, err = s.CreateProduct(ctx, transport.CreateProductRequest{
		Model:      "Air Max 90",
		Brand:      "Nike",
		Price:      decimal.RequireFromString("120.00"),
		CategoryID: category.ID.String(),
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Contains(t, verr.Fields[0].Message, `"size"`)
}

func TestCreateProduct_BadCategoryID(t *testing.T) {
	s := newTestService(t)

	_, err := s.CreateProduct(context.Background(), transport.CreateProductRequest{
		Model:      "Air Max 90",
		Brand:      "Nike",
		CategoryID: "not-a-uuid",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, fieldNames(verr), "CategoryID")
}

func TestUpdateCategory_TypeChangeReportedAsValidation(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	category, err := s.CreateCategory(ctx, transport.CreateCategoryRequest{
		Name: "Shoes",
		Attributes: []transport.AttributeInput{
			{Name: "size"},
		},
	})
	require.NoError(t, err)
	require.Len(t, category.Attributes, 1)

	_, _, err = s.UpdateCategory(ctx, category.ID, transport.UpdateCategoryRequest{
		Name: "Shoes",
		Attributes: []transport.AttributeInput{
			{ID: category.Attributes[0].ID.String(), Name: "size", Type: "NUMBER"},
		},
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateCategory_UnpublishedCountReturned(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	category, err := s.CreateCategory(ctx, transport.CreateCategoryRequest{
		Name: "Shoes",
		Attributes: []transport.AttributeInput{
			{Name: "size"},
		},
	})
	require.NoError(t, err)

	_, err = s.CreateProduct(ctx, transport.CreateProductRequest{
		Model:      "Air Max 90",
		Brand:      "Nike",
		Price:      decimal.RequireFromString("120.00"),
		CategoryID: category.ID.String(),
	})
	require.NoError(t, err)

	_, unpublished, err := s.UpdateCategory(ctx, category.ID, transport.UpdateCategoryRequest{
		Name: "Shoes",
		Attributes: []transport.AttributeInput{
			{ID: category.Attributes[0].ID.String(), Name: "size", Required: true},
		},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, unpublished)
}

func TestDeleteCategory_ConflictWhileProductsExist(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	category, err := s.CreateCategory(ctx, transport.CreateCategoryRequest{Name: "Shoes"})
	require.NoError(t, err)

	product, err := s.CreateProduct(ctx, transport.CreateProductRequest{
		Model:      "Air Max 90",
		Brand:      "Nike",
		Price:      decimal.RequireFromString("120.00"),
		CategoryID: category.ID.String(),
	})
	require.NoError(t, err)

	assert.ErrorIs(t, s.DeleteCategory(ctx, category.ID), ErrConflict)

	require.NoError(t, s.DeleteProduct(ctx, product.ID))
	require.NoError(t, s.DeleteCategory(ctx, category.ID))
}

func TestAddAttribute_DefaultsToOptionalString(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	category, err := s.CreateCategory(ctx, transport.CreateCategoryRequest{Name: "Shoes"})
	require.NoError(t, err)

	attr, err := s.AddAttribute(ctx, category.ID, transport.AttributeInput{Name: "color"})
	require.NoError(t, err)
	assert.Equal(t, models.AttributeString, attr.Type)
	assert.False(t, attr.Required)
}

func TestAddAttribute_DuplicateNameReportedAsValidation(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	category, err := s.CreateCategory(ctx, transport.CreateCategoryRequest{
		Name: "Shoes",
		Attributes: []transport.AttributeInput{
			{Name: "size"},
		},
	})
	require.NoError(t, err)

	_, err = s.AddAttribute(ctx, category.ID, transport.AttributeInput{Name: "SIZE"})
	assert.ErrorIs(t, err, ErrValidation)

	refreshed, err := s.GetCategory(ctx, category.ID)
	require.NoError(t, err)
	assert.Len(t, refreshed.Attributes, 1)
}

func TestSearchProducts_DisabledWithoutIndex(t *testing.T) {
	s := newTestService(t)

	_, _, err := s.SearchProducts(context.Background(), "air", 0, 10)
	assert.ErrorIs(t, err, ErrSearchDisabled)
}
