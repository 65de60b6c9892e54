package transport

import (
	"github.com/shopspring/decimal"

	"github.com/twotimesgi/cardtrader-assignment/internal/models"
)

// AttributeInput is one attribute of a submitted category schema. ID is
// empty for new attributes and must be the existing attribute's uuid for
// updates. Type defaults to STRING when omitted.
type AttributeInput struct {
	ID       string `json:"id"       validate:"omitempty,uuid"`
	Name     string `json:"name"     validate:"required,min=1"`
	Type     string `json:"type"     validate:"omitempty,oneof=STRING NUMBER BOOLEAN"`
	Required bool   `json:"required"`
}

type CreateCategoryRequest struct {
	Name       string           `json:"name"       validate:"required,min=2"`
	Attributes []AttributeInput `json:"attributes" validate:"dive"`
}

type UpdateCategoryRequest struct {
	Name       string           `json:"name"       validate:"required,min=2"`
	Attributes []AttributeInput `json:"attributes" validate:"dive"`
}

type ProductAttributeInput struct {
	AttributeID string `json:"attribute_id" validate:"required,uuid"`
	Value       string `json:"value"`
}

type CreateProductRequest struct {
	Model      string                  `json:"model"       validate:"required,min=2"`
	Brand      string                  `json:"brand"       validate:"required,min=2"`
	Price      decimal.Decimal         `json:"price"`
	CategoryID string                  `json:"category_id" validate:"required,uuid"`
	Attributes []ProductAttributeInput `json:"attributes"  validate:"dive"`
	Images     []string                `json:"images"      validate:"dive,url"`
}

type ProductsResponse struct {
	Products []models.Product `json:"products"`
	Count    int64            `json:"count"`
}
