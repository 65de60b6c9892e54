package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/twotimesgi/cardtrader-assignment/internal/events"
	"github.com/twotimesgi/cardtrader-assignment/internal/logging"
	"github.com/twotimesgi/cardtrader-assignment/internal/models"
	"github.com/twotimesgi/cardtrader-assignment/internal/query"
	"github.com/twotimesgi/cardtrader-assignment/internal/repo"
	"github.com/twotimesgi/cardtrader-assignment/internal/search"
	"github.com/twotimesgi/cardtrader-assignment/internal/transport"
)

// CatalogService validates requests, runs them through the repository and
// fans out the side channels (events, search index). Events and Search
// are optional: nil disables them.
type CatalogService struct {
	Repo   *repo.GormRepo
	Events *events.Producer
	Search *search.Index
}

func (s *CatalogService) GetProducts(ctx context.Context, req query.FilterRequest) ([]models.Product, int64, error) {
	return s.Repo.FindProducts(ctx, req)
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.Repo.GetProduct(ctx, id)
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	if verr := checkStruct(req); verr != nil {
		return nil, verr
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, validationError(FieldError{Field: "category_id", Message: "must be a valid UUID"})
	}

	in := repo.NewProduct{
		Model:      req.Model,
		Brand:      req.Brand,
		Price:      req.Price,
		CategoryID: categoryID,
		Images:     req.Images,
	}
	for _, a := range req.Attributes {
		attrID, err := uuid.Parse(a.AttributeID)
		if err != nil {
			return nil, validationError(FieldError{Field: "attributes", Message: "attribute_id must be a valid UUID"})
		}
		in.Attributes = append(in.Attributes, repo.NewProductAttribute{AttributeID: attrID, Value: a.Value})
	}

	product, err := s.Repo.CreateProduct(ctx, in)
	if err != nil {
		return nil, translateRepoError(err)
	}

	s.index(ctx, product)
	s.publish(ctx, product.ID.String(), map[string]any{
		"type":        "product_created",
		"product_id":  product.ID,
		"category_id": product.CategoryID,
		"model":       product.Model,
	})
	return product, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return err
	}

	s.deindex(ctx, id)
	s.publish(ctx, id.String(), map[string]any{
		"type":       "product_deleted",
		"product_id": id,
	})
	return nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.Repo.ListCategories(ctx)
}

func (s *CatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.Repo.GetCategory(ctx, id)
}

func (s *CatalogService) ComputeFilters(ctx context.Context, categoryID uuid.UUID) ([]models.Filter, error) {
	return s.Repo.ComputeFilters(ctx, categoryID)
}

func (s *CatalogService) CreateCategory(ctx context.Context, req transport.CreateCategoryRequest) (*models.Category, error) {
	if verr := checkStruct(req); verr != nil {
		return nil, verr
	}
	changes, verr := attributeChanges(req.Attributes)
	if verr != nil {
		return nil, verr
	}

	category, err := s.Repo.CreateCategory(ctx, repo.CategoryMutation{Name: req.Name, Attributes: changes})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, category.ID.String(), map[string]any{
		"type":        "category_created",
		"category_id": category.ID,
		"name":        category.Name,
	})
	return category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, req transport.UpdateCategoryRequest) (*models.Category, int64, error) {
	if verr := checkStruct(req); verr != nil {
		return nil, 0, verr
	}
	changes, verr := attributeChanges(req.Attributes)
	if verr != nil {
		return nil, 0, verr
	}

	category, unpublished, err := s.Repo.UpdateCategory(ctx, id, repo.CategoryMutation{Name: req.Name, Attributes: changes})
	if err != nil {
		return nil, 0, translateRepoError(err)
	}

	s.publish(ctx, category.ID.String(), map[string]any{
		"type":        "category_updated",
		"category_id": category.ID,
		"name":        category.Name,
		"unpublished": unpublished,
	})
	return category, unpublished, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	err := s.Repo.DeleteCategory(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrCategoryHasProducts) {
			return fmt.Errorf("%w: %s", ErrConflict, err)
		}
		return err
	}

	s.publish(ctx, id.String(), map[string]any{
		"type":        "category_deleted",
		"category_id": id,
	})
	return nil
}

func (s *CatalogService) AddAttribute(ctx context.Context, categoryID uuid.UUID, req transport.AttributeInput) (*models.Attribute, error) {
	if verr := checkStruct(req); verr != nil {
		return nil, verr
	}

	attrType := models.AttributeType(req.Type)
	if req.Type == "" {
		attrType = models.AttributeString
	}

	attr, unpublished, err := s.Repo.AddAttribute(ctx, categoryID, repo.AttributeChange{
		Name:     req.Name,
		Type:     attrType,
		Required: req.Required,
	})
	if err != nil {
		return nil, translateRepoError(err)
	}

	s.publish(ctx, categoryID.String(), map[string]any{
		"type":         "category_updated",
		"category_id":  categoryID,
		"attribute_id": attr.ID,
		"unpublished":  unpublished,
	})
	return attr, nil
}

// SearchProducts runs the fuzzy quick-search over the external index.
func (s *CatalogService) SearchProducts(ctx context.Context, q string, skip, take int) (int64, []search.ProductDoc, error) {
	if s.Search == nil {
		return 0, nil, ErrSearchDisabled
	}
	return s.Search.Search(ctx, q, skip, take)
}

// attributeChanges converts submitted attribute inputs, dropping entries
// with empty names and rejecting duplicates before any write happens.
func attributeChanges(attrs []transport.AttributeInput) ([]repo.AttributeChange, *ValidationError) {
	if verr := checkAttributeNames(attrs); verr != nil {
		return nil, verr
	}

	changes := make([]repo.AttributeChange, 0, len(attrs))
	for _, a := range attrs {
		if a.Name == "" {
			continue
		}
		change := repo.AttributeChange{
			Name:     a.Name,
			Type:     models.AttributeType(a.Type),
			Required: a.Required,
		}
		if change.Type == "" {
			change.Type = models.AttributeString
		}
		if a.ID != "" {
			id, err := uuid.Parse(a.ID)
			if err != nil {
				return nil, validationError(FieldError{Field: "attributes", Message: "id must be a valid UUID"})
			}
			change.ID = &id
		}
		changes = append(changes, change)
	}
	return changes, nil
}

// translateRepoError maps the repository's typed failures onto the
// service error taxonomy; anything unrecognized passes through untouched.
func translateRepoError(err error) error {
	var reqErr *repo.RequiredAttributesError
	if errors.As(err, &reqErr) {
		fields := make([]FieldError, len(reqErr.Missing))
		for i, name := range reqErr.Missing {
			fields[i] = FieldError{
				Field:   "attributes",
				Message: fmt.Sprintf("required attribute %q is missing or empty", name),
			}
		}
		return &ValidationError{Fields: fields}
	}

	var foreignErr *repo.ForeignAttributesError
	if errors.As(err, &foreignErr) {
		return validationError(FieldError{
			Field:   "attributes",
			Message: foreignErr.Error(),
		})
	}

	var typedErr *repo.TypedValueError
	if errors.As(err, &typedErr) {
		return validationError(FieldError{Field: "attributes", Message: typedErr.Error()})
	}

	if errors.Is(err, repo.ErrTypeChange) || errors.Is(err, repo.ErrDuplicateName) {
		return validationError(FieldError{Field: "attributes", Message: err.Error()})
	}

	return err
}

// publish sends a catalog event, detached from the request's cancellation
// so an aborted client cannot lose the event of a committed mutation.
// Publish failures are logged, never surfaced.
func (s *CatalogService) publish(ctx context.Context, key string, event map[string]any) {
	if s.Events == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.Events.PublishEvent(pubCtx, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka publish failed", "key", key, "error", err)
	}
}

func (s *CatalogService) index(ctx context.Context, p *models.Product) {
	if s.Search == nil {
		return
	}
	if err := s.Search.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Error("search index failed", "product_id", p.ID, "error", err)
	}
}

func (s *CatalogService) deindex(ctx context.Context, id uuid.UUID) {
	if s.Search == nil {
		return
	}
	if err := s.Search.DeleteProduct(ctx, id.String()); err != nil {
		logging.FromContext(ctx).Error("search deindex failed", "product_id", id, "error", err)
	}
}
