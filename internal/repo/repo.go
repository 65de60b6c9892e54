package repo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormRepo struct {
	DB *gorm.DB
}

var (
	// ErrTypeChange is returned when a mutation tries to change the type of
	// an existing attribute. Retyping would invalidate the semantics of
	// every stored value, so it is forbidden.
	ErrTypeChange = errors.New("attribute type is immutable")

	// ErrCategoryHasProducts blocks category deletion while products still
	// reference the category.
	ErrCategoryHasProducts = errors.New("category still has products")

	// ErrDuplicateName guards per-category attribute name uniqueness.
	ErrDuplicateName = errors.New("attribute name already exists in category")
)

// RequiredAttributesError reports required attributes that were missing or
// empty on product creation, by name.
type RequiredAttributesError struct {
	Missing []string
}

func (e *RequiredAttributesError) Error() string {
	return fmt.Sprintf("missing or empty required attributes: %s", strings.Join(e.Missing, ", "))
}

// ForeignAttributesError reports attribute ids that do not belong to the
// product's category.
type ForeignAttributesError struct {
	IDs []uuid.UUID
}

func (e *ForeignAttributesError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = id.String()
	}
	return fmt.Sprintf("attributes not in product category: %s", strings.Join(ids, ", "))
}

// TypedValueError reports a value that does not conform to its attribute's
// declared type.
type TypedValueError struct {
	Attribute string
	Value     string
}

func (e *TypedValueError) Error() string {
	return fmt.Sprintf("value %q is invalid for attribute %q", e.Value, e.Attribute)
}

// lockForUpdate serializes concurrent mutations of the same row on
// postgres. sqlite (tests) serializes writes on its own and rejects the
// clause, so it is applied per dialect.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
