package repo

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/twotimesgi/cardtrader-assignment/internal/models"
	"github.com/twotimesgi/cardtrader-assignment/internal/query"
)

type NewProductAttribute struct {
	AttributeID uuid.UUID
	Value       string
}

type NewProduct struct {
	Model      string
	Brand      string
	Price      decimal.Decimal
	CategoryID uuid.UUID
	Attributes []NewProductAttribute
	Images     []string
}

// FindProducts resolves a filter request into the eligible page of
// products plus the total count of eligible rows. The predicate is built
// once and shared by the count and page queries so the two can never
// disagree.
func (r *GormRepo) FindProducts(ctx context.Context, req query.FilterRequest) ([]models.Product, int64, error) {
	var attrs []models.Attribute
	if req.CategoryID != nil {
		var err error
		attrs, err = r.ListAttributes(ctx, *req.CategoryID)
		if err != nil {
			return nil, 0, err
		}
	}

	cond, args := query.NewBuilder(attrs).Predicate(req).Build()

	var count int64
	err := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where(cond, args...).
		Count(&count).Error
	if err != nil {
		return nil, 0, err
	}

	items := make([]models.Product, 0, req.Take)
	err = r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where(cond, args...).
		Order(req.OrderClause()).
		Offset(req.Skip).
		Limit(req.Take).
		Preload("Attributes.Attribute").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}

	return items, count, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.DB.WithContext(ctx).
		Preload("Attributes.Attribute").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct inserts a product with its attribute values and images in
// one transaction. Every submitted attribute must belong to the target
// category, every required attribute needs a non-empty value, and values
// must conform to their attribute's declared type. Optional attributes
// with empty values are not stored.
func (r *GormRepo) CreateProduct(ctx context.Context, in NewProduct) (*models.Product, error) {
	var productID uuid.UUID

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.First(&category, "id = ?", in.CategoryID).Error; err != nil {
			return err
		}

		var attrs []models.Attribute
		if err := tx.Where("category_id = ?", in.CategoryID).Find(&attrs).Error; err != nil {
			return err
		}

		byID := make(map[uuid.UUID]models.Attribute, len(attrs))
		for _, a := range attrs {
			byID[a.ID] = a
		}

		supplied := make(map[uuid.UUID]string, len(in.Attributes))
		var foreign []uuid.UUID
		for _, a := range in.Attributes {
			if _, ok := byID[a.AttributeID]; !ok {
				foreign = append(foreign, a.AttributeID)
				continue
			}
			supplied[a.AttributeID] = a.Value
		}
		if len(foreign) > 0 {
			return &ForeignAttributesError{IDs: foreign}
		}

		var missing []string
		for _, attr := range attrs {
			if attr.Required && strings.TrimSpace(supplied[attr.ID]) == "" {
				missing = append(missing, attr.Name)
			}
		}
		if len(missing) > 0 {
			return &RequiredAttributesError{Missing: missing}
		}

		product := models.Product{
			CategoryID: in.CategoryID,
			Model:      in.Model,
			Brand:      in.Brand,
			Price:      in.Price,
			Published:  true,
		}
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		productID = product.ID

		for _, a := range in.Attributes {
			attr := byID[a.AttributeID]
			if !attr.Required && strings.TrimSpace(a.Value) == "" {
				continue
			}
			if err := validateTypedValue(attr, a.Value); err != nil {
				return err
			}
			pav := models.ProductAttributeValue{
				ProductID:   product.ID,
				AttributeID: a.AttributeID,
				Value:       a.Value,
			}
			if err := tx.Create(&pav).Error; err != nil {
				return err
			}
		}

		for i, url := range in.Images {
			img := models.ProductImage{ProductID: product.ID, URL: url, Position: i}
			if err := tx.Create(&img).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetProduct(ctx, productID)
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Product{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductAttributeValue{}).Error; err != nil {
			return err
		}
		return tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error
	})
}

// validateTypedValue checks a value against its attribute's declared type
// before it is stored. Stored text that cannot be interpreted later would
// silently fall out of every typed comparison.
func validateTypedValue(attr models.Attribute, value string) error {
	switch attr.Type {
	case models.AttributeNumber:
		if _, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err != nil {
			return &TypedValueError{Attribute: attr.Name, Value: value}
		}
	case models.AttributeBoolean:
		if value != "true" && value != "false" {
			return &TypedValueError{Attribute: attr.Name, Value: value}
		}
	}
	return nil
}
