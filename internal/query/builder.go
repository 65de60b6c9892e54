package query

import (
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/twotimesgi/cardtrader-assignment/internal/models"
)

// Builder turns a FilterRequest into a predicate tree, using the attribute
// schema of the requested category to type each filter term. Products only
// qualify when a value exists for every required attribute of their
// category, so the gate cannot be a plain column predicate: it is lowered
// as a count of distinct matched attribute ids against the full required
// set.
type Builder struct {
	byName      map[string]models.Attribute
	requiredIDs []uuid.UUID
}

// NewBuilder takes the attribute schema of the category being browsed.
// Pass an empty slice for catalog-wide requests: without a schema no
// attribute filter can be typed, so all are ignored.
func NewBuilder(attrs []models.Attribute) *Builder {
	b := &Builder{byName: make(map[string]models.Attribute, len(attrs))}
	for _, a := range attrs {
		b.byName[a.Name] = a
		if a.Required {
			b.requiredIDs = append(b.requiredIDs, a.ID)
		}
	}
	return b
}

// Predicate assembles the full eligibility predicate for a request:
// publication flag, category, required-attribute gate, typed attribute
// filters (AND across attributes, OR within one attribute's selection)
// and text search.
func (b *Builder) Predicate(req FilterRequest) *Expr {
	conds := []*Expr{Leaf("products.published = ?", true)}

	if req.CategoryID != nil {
		conds = append(conds, Leaf("products.category_id = ?", *req.CategoryID))

		if len(b.requiredIDs) > 0 {
			conds = append(conds, Leaf(
				`(SELECT COUNT(DISTINCT pav.attribute_id) FROM product_attribute_values pav`+
					` WHERE pav.product_id = products.id AND pav.attribute_id IN ?) >= ?`,
				b.requiredIDs, len(b.requiredIDs)))
		}

		// Deterministic clause order regardless of map iteration.
		names := make([]string, 0, len(req.AttributeFilters))
		for name := range req.AttributeFilters {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			attr, ok := b.byName[name]
			if !ok {
				// Not part of the category's schema: ignored, not an error.
				continue
			}
			conds = append(conds, attributeExpr(attr, req.AttributeFilters[name]))
		}
	}

	if req.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(req.Search)) + "%"
		conds = append(conds, Or(
			Leaf(`LOWER(products.model) LIKE ? ESCAPE '\'`, pattern),
			Leaf(`LOWER(products.brand) LIKE ? ESCAPE '\'`, pattern),
		))
	}

	return And(conds...)
}

// attributeExpr lowers one attribute's selection to an EXISTS sub-select
// over the value table, comparing according to the attribute's declared
// type. Malformed selections degrade to nil (no filter on that attribute).
func attributeExpr(attr models.Attribute, values []string) *Expr {
	switch attr.Type {
	case models.AttributeNumber:
		min, max, ok := numericBounds(values)
		if !ok {
			return nil
		}
		return Leaf(
			`EXISTS (SELECT 1 FROM product_attribute_values pav`+
				` WHERE pav.product_id = products.id AND pav.attribute_id = ?`+
				` AND CAST(pav.value AS DECIMAL) BETWEEN ? AND ?)`,
			attr.ID, min, max)

	case models.AttributeBoolean:
		kept := values[:0:0]
		for _, v := range values {
			if v == "true" || v == "false" {
				kept = append(kept, v)
			}
		}
		if len(kept) == 0 {
			return nil
		}
		values = kept
	}

	return Leaf(
		`EXISTS (SELECT 1 FROM product_attribute_values pav`+
			` WHERE pav.product_id = products.id AND pav.attribute_id = ?`+
			` AND pav.value IN ?)`,
		attr.ID, values)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike quotes LIKE metacharacters so search text only ever matches
// as a literal substring.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// numericBounds interprets a selection as an inclusive [min, max] range,
// in either order. Anything other than exactly two parseable numbers
// means no filter.
func numericBounds(values []string) (float64, float64, bool) {
	if len(values) != 2 {
		return 0, 0, false
	}
	min, err := strconv.ParseFloat(strings.TrimSpace(values[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	max, err := strconv.ParseFloat(strings.TrimSpace(values[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	if min > max {
		min, max = max, min
	}
	return min, max, true
}
