package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/twotimesgi/cardtrader-assignment/internal/models"
)

// ListAttributes returns the attribute schema of a category, required
// attributes first. An unknown category yields an empty slice, not an
// error: reads fail soft.
func (r *GormRepo) ListAttributes(ctx context.Context, categoryID uuid.UUID) ([]models.Attribute, error) {
	var attrs []models.Attribute
	err := r.DB.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("required DESC, name ASC").
		Find(&attrs).Error
	if err != nil {
		return nil, err
	}
	return attrs, nil
}

// ComputeFilters projects a category's schema into the UI-facing filter
// vocabulary: one Filter per attribute carrying the distinct values stored
// across all products. A category without attributes yields an empty
// slice.
func (r *GormRepo) ComputeFilters(ctx context.Context, categoryID uuid.UUID) ([]models.Filter, error) {
	attrs, err := r.ListAttributes(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	filters := make([]models.Filter, 0, len(attrs))
	if len(attrs) == 0 {
		return filters, nil
	}

	ids := make([]uuid.UUID, len(attrs))
	for i, a := range attrs {
		ids[i] = a.ID
	}

	var rows []struct {
		AttributeID uuid.UUID
		Value       string
	}
	err = r.DB.WithContext(ctx).
		Model(&models.ProductAttributeValue{}).
		Distinct("attribute_id", "value").
		Where("attribute_id IN ?", ids).
		Order("value ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	values := make(map[uuid.UUID][]string, len(attrs))
	for _, row := range rows {
		values[row.AttributeID] = append(values[row.AttributeID], row.Value)
	}

	for _, a := range attrs {
		possible := values[a.ID]
		if possible == nil {
			possible = []string{}
		}
		filters = append(filters, models.Filter{
			AttributeName:  a.Name,
			AttributeType:  a.Type,
			Required:       a.Required,
			PossibleValues: possible,
		})
	}
	return filters, nil
}
