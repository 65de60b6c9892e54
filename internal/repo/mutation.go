package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/twotimesgi/cardtrader-assignment/internal/models"
	"github.com/twotimesgi/cardtrader-assignment/internal/query"
)

// AttributeChange is one entry of a submitted attribute list. A nil ID
// means the attribute is new; a present ID must match an existing
// attribute of the category.
type AttributeChange struct {
	ID       *uuid.UUID
	Name     string
	Type     models.AttributeType
	Required bool
}

type CategoryMutation struct {
	Name       string
	Attributes []AttributeChange
}

// UpdateCategory applies a full schema edit as one atomic unit: the
// attribute diff (create / update / remove, with removed attributes
// cascading to their values) and the eligibility pass that unpublishes
// every product missing a value for an attribute that just became
// required. A reader never observes the schema changed but eligibility
// stale. Returns the updated category and the number of products
// unpublished.
func (r *GormRepo) UpdateCategory(ctx context.Context, id uuid.UUID, mut CategoryMutation) (*models.Category, int64, error) {
	var unpublished int64

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := lockForUpdate(tx).First(&category, "id = ?", id).Error; err != nil {
			return err
		}

		var existing []models.Attribute
		if err := tx.Where("category_id = ?", id).Find(&existing).Error; err != nil {
			return err
		}
		byID := make(map[uuid.UUID]models.Attribute, len(existing))
		for _, a := range existing {
			byID[a.ID] = a
		}

		var becomesRequired []uuid.UUID
		seen := make(map[uuid.UUID]bool, len(mut.Attributes))

		for _, change := range mut.Attributes {
			if change.ID == nil {
				attr := models.Attribute{
					CategoryID: id,
					Name:       change.Name,
					Type:       change.Type,
					Required:   change.Required,
				}
				if err := tx.Create(&attr).Error; err != nil {
					return err
				}
				if attr.Required {
					becomesRequired = append(becomesRequired, attr.ID)
				}
				continue
			}

			prev, ok := byID[*change.ID]
			if !ok {
				return fmt.Errorf("attribute %s: %w", *change.ID, gorm.ErrRecordNotFound)
			}
			if change.Type != "" && change.Type != prev.Type {
				return fmt.Errorf("attribute %q: %w", prev.Name, ErrTypeChange)
			}
			seen[prev.ID] = true

			if change.Required && !prev.Required {
				becomesRequired = append(becomesRequired, prev.ID)
			}
			prev.Name = change.Name
			prev.Required = change.Required
			if err := tx.Save(&prev).Error; err != nil {
				return err
			}
		}

		var removed []uuid.UUID
		for _, a := range existing {
			if !seen[a.ID] {
				removed = append(removed, a.ID)
			}
		}
		if len(removed) > 0 {
			if err := tx.Where("attribute_id IN ?", removed).Delete(&models.ProductAttributeValue{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", removed).Delete(&models.Attribute{}).Error; err != nil {
				return err
			}
		}

		category.Name = mut.Name
		if err := tx.Save(&category).Error; err != nil {
			return err
		}

		n, err := unpublishMissing(tx, id, becomesRequired)
		unpublished = n
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	category, err := r.GetCategory(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	return category, unpublished, nil
}

// AddAttribute appends a single attribute to a category's schema. The
// name must not collide with an existing attribute of the category. A
// required attribute immediately unpublishes every published product of
// the category, since none of them can have a value for it yet.
func (r *GormRepo) AddAttribute(ctx context.Context, categoryID uuid.UUID, change AttributeChange) (*models.Attribute, int64, error) {
	var attr models.Attribute
	var unpublished int64

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := lockForUpdate(tx).First(&category, "id = ?", categoryID).Error; err != nil {
			return err
		}

		var existing []models.Attribute
		if err := tx.Where("category_id = ?", categoryID).Find(&existing).Error; err != nil {
			return err
		}
		name := strings.ToLower(strings.TrimSpace(change.Name))
		for _, a := range existing {
			if strings.ToLower(strings.TrimSpace(a.Name)) == name {
				return fmt.Errorf("attribute %q: %w", change.Name, ErrDuplicateName)
			}
		}

		attr = models.Attribute{
			CategoryID: categoryID,
			Name:       change.Name,
			Type:       change.Type,
			Required:   change.Required,
		}
		if err := tx.Create(&attr).Error; err != nil {
			return err
		}

		if !attr.Required {
			return nil
		}
		n, err := unpublishMissing(tx, categoryID, []uuid.UUID{attr.ID})
		unpublished = n
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return &attr, unpublished, nil
}

// unpublishMissing flips published off for every published product of the
// category lacking a value for any of the given attributes. One-way gate:
// nothing here ever republishes.
func unpublishMissing(tx *gorm.DB, categoryID uuid.UUID, attrIDs []uuid.UUID) (int64, error) {
	if len(attrIDs) == 0 {
		return 0, nil
	}

	missing := make([]*query.Expr, 0, len(attrIDs))
	for _, attrID := range attrIDs {
		missing = append(missing, query.Leaf(
			`NOT EXISTS (SELECT 1 FROM product_attribute_values pav`+
				` WHERE pav.product_id = products.id AND pav.attribute_id = ?)`,
			attrID))
	}
	cond, args := query.Or(missing...).Build()

	res := tx.Model(&models.Product{}).
		Where("category_id = ? AND published = ?", categoryID, true).
		Where("("+cond+")", args...).
		Update("published", false)
	return res.RowsAffected, res.Error
}
