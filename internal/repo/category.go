package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/twotimesgi/cardtrader-assignment/internal/models"
)

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := make([]models.Category, 0)
	err := r.DB.WithContext(ctx).Order("name ASC").Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *GormRepo) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := r.DB.WithContext(ctx).
		Preload("Attributes", func(db *gorm.DB) *gorm.DB { return db.Order("required DESC, name ASC") }).
		First(&category, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *GormRepo) CreateCategory(ctx context.Context, mut CategoryMutation) (*models.Category, error) {
	var categoryID uuid.UUID

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category := models.Category{Name: mut.Name}
		if err := tx.Create(&category).Error; err != nil {
			return err
		}
		categoryID = category.ID

		for _, change := range mut.Attributes {
			attr := models.Attribute{
				CategoryID: category.ID,
				Name:       change.Name,
				Type:       change.Type,
				Required:   change.Required,
			}
			if err := tx.Create(&attr).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetCategory(ctx, categoryID)
}

// DeleteCategory removes a category and cascades to its attributes and
// their values. Deletion is blocked while any product still references
// the category.
func (r *GormRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := lockForUpdate(tx).First(&category, "id = ?", id).Error; err != nil {
			return err
		}

		var products int64
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).Count(&products).Error; err != nil {
			return err
		}
		if products > 0 {
			return ErrCategoryHasProducts
		}

		var attrIDs []uuid.UUID
		if err := tx.Model(&models.Attribute{}).Where("category_id = ?", id).Pluck("id", &attrIDs).Error; err != nil {
			return err
		}
		if len(attrIDs) > 0 {
			if err := tx.Where("attribute_id IN ?", attrIDs).Delete(&models.ProductAttributeValue{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", attrIDs).Delete(&models.Attribute{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Category{}, "id = ?", id).Error
	})
}
