package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AttributeType is the closed set of logical types an attribute value can
// carry. Values are stored as text regardless of type; the type drives how
// filters compare them.
type AttributeType string

const (
	AttributeString  AttributeType = "STRING"
	AttributeNumber  AttributeType = "NUMBER"
	AttributeBoolean AttributeType = "BOOLEAN"
)

func (t AttributeType) Valid() bool {
	switch t {
	case AttributeString, AttributeNumber, AttributeBoolean:
		return true
	}
	return false
}

type Category struct {
	ID         uuid.UUID   `gorm:"type:uuid;primaryKey"   json:"id"`
	Name       string      `gorm:"not null"               json:"name"`
	Attributes []Attribute `gorm:"foreignKey:CategoryID"  json:"attributes,omitempty"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type Attribute struct {
	ID         uuid.UUID     `gorm:"type:uuid;primaryKey"       json:"id"`
	CategoryID uuid.UUID     `gorm:"type:uuid;index;not null"   json:"category_id"`
	Name       string        `gorm:"not null"                   json:"name"`
	Type       AttributeType `gorm:"type:varchar(16);not null"  json:"type"`
	Required   bool          `gorm:"not null;default:false"     json:"required"`
}

func (a *Attribute) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type Product struct {
	ID         uuid.UUID               `gorm:"type:uuid;primaryKey"      json:"id"`
	CategoryID uuid.UUID               `gorm:"type:uuid;index;not null"  json:"category_id"`
	Model      string                  `gorm:"not null"                  json:"model"`
	Brand      string                  `gorm:"not null"                  json:"brand"`
	Price      decimal.Decimal         `gorm:"type:decimal(12,2)"        json:"price"`
	Published  bool                    `gorm:"not null;default:true"     json:"published"`
	CreatedAt  time.Time               `json:"created_at"`
	Attributes []ProductAttributeValue `gorm:"foreignKey:ProductID"      json:"attributes,omitempty"`
	Images     []ProductImage          `gorm:"foreignKey:ProductID"      json:"images,omitempty"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ProductAttributeValue is the EAV fact table: one row per (product,
// attribute) pair that has a value. The attribute must belong to the
// product's category.
type ProductAttributeValue struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"                                  json:"id"`
	ProductID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_product_attribute"  json:"product_id"`
	AttributeID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_product_attribute"  json:"attribute_id"`
	Value       string     `gorm:"not null"                                              json:"value"`
	Attribute   *Attribute `gorm:"foreignKey:AttributeID"                                json:"attribute,omitempty"`
}

func (v *ProductAttributeValue) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

type ProductImage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"      json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;index;not null"  json:"product_id"`
	URL       string    `gorm:"not null"                  json:"url"`
	Position  int       `gorm:"not null;default:0"        json:"position"`
}

func (i *ProductImage) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Filter is the derived, UI-facing vocabulary of one attribute: its name,
// type, required flag and the distinct values observed across products.
// Not persisted.
type Filter struct {
	AttributeName  string        `json:"attribute_name"`
	AttributeType  AttributeType `json:"attribute_type"`
	Required       bool          `json:"required"`
	PossibleValues []string      `json:"possible_values"`
}
