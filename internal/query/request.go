package query

import (
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/twotimesgi/cardtrader-assignment/internal/util"
)

type Order string

const (
	OrderNewest    Order = "newest"
	OrderPriceAsc  Order = "low_to_high"
	OrderPriceDesc Order = "high_to_low"
)

// attributePrefix is the query-string convention for per-attribute
// selections: attribute_<name>=<comma-separated values>.
const attributePrefix = "attribute_"

// FilterRequest is the parsed, storage-agnostic description of one catalog
// read: which category, which attribute selections, search text, ordering
// and page window.
type FilterRequest struct {
	CategoryID       *uuid.UUID
	Search           string
	OrderBy          Order
	Skip             int
	Take             int
	AttributeFilters map[string][]string
}

// ParseFilterRequest decodes URL query parameters into a FilterRequest.
// Filter state is user-controlled, so parsing never fails: malformed
// terms (bad uuid, bad numbers, unknown order) degrade to their defaults.
func ParseFilterRequest(values url.Values) FilterRequest {
	req := FilterRequest{
		Search:           strings.TrimSpace(values.Get("search")),
		OrderBy:          OrderNewest,
		AttributeFilters: map[string][]string{},
	}

	if raw := values.Get("categoryId"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			req.CategoryID = &id
		}
	}

	switch Order(values.Get("order_by")) {
	case OrderPriceAsc:
		req.OrderBy = OrderPriceAsc
	case OrderPriceDesc:
		req.OrderBy = OrderPriceDesc
	}

	skip := util.ParseIntDefault(values.Get("skip"), 0)
	take := util.ParseIntDefault(values.Get("take"), util.DefaultTake)
	req.Skip, req.Take = util.ClampSkipTake(skip, take)

	for key := range values {
		if !strings.HasPrefix(key, attributePrefix) {
			continue
		}
		name := strings.TrimPrefix(key, attributePrefix)
		if name == "" {
			continue
		}
		var selected []string
		for _, v := range strings.Split(values.Get(key), ",") {
			if v = strings.TrimSpace(v); v != "" {
				selected = append(selected, v)
			}
		}
		if len(selected) > 0 {
			req.AttributeFilters[name] = selected
		}
	}

	return req
}

// OrderClause returns the ORDER BY expression for the requested ordering.
// The clause is assembled from fixed strings only; ties always break on id
// so pagination windows partition the result set deterministically.
func (r FilterRequest) OrderClause() string {
	switch r.OrderBy {
	case OrderPriceAsc:
		return "products.price ASC, products.id ASC"
	case OrderPriceDesc:
		return "products.price DESC, products.id ASC"
	default:
		return "products.created_at DESC, products.id ASC"
	}
}
