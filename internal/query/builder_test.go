package query

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twotimesgi/cardtrader-assignment/internal/models"
)

func schemaAttrs() (color, size, length, waterproof models.Attribute) {
	color = models.Attribute{ID: uuid.New(), Name: "color", Type: models.AttributeString, Required: true}
	size = models.Attribute{ID: uuid.New(), Name: "size", Type: models.AttributeString}
	length = models.Attribute{ID: uuid.New(), Name: "length", Type: models.AttributeNumber}
	waterproof = models.Attribute{ID: uuid.New(), Name: "waterproof", Type: models.AttributeBoolean}
	return
}

func TestPredicate_NoCategory(t *testing.T) {
	t.Parallel()

	b := NewBuilder(nil)
	sql, args := b.Predicate(FilterRequest{}).Build()
	assert.Equal(t, "products.published = ?", sql)
	assert.Equal(t, []any{true}, args)
}

func TestPredicate_RequiredGateIncluded(t *testing.T) {
	t.Parallel()

	color, size, _, _ := schemaAttrs()
	b := NewBuilder([]models.Attribute{color, size})

	catID := uuid.New()
	sql, args := b.Predicate(FilterRequest{CategoryID: &catID}).Build()

	assert.Contains(t, sql, "products.category_id = ?")
	assert.Contains(t, sql, "COUNT(DISTINCT pav.attribute_id)")
	// published flag, category id, required ids, required count
	require.Len(t, args, 4)
	assert.Equal(t, []uuid.UUID{color.ID}, args[2])
	assert.Equal(t, 1, args[3])
}

func TestPredicate_NoRequiredNoGate(t *testing.T) {
	t.Parallel()

	_, size, _, _ := schemaAttrs()
	b := NewBuilder([]models.Attribute{size})

	catID := uuid.New()
	sql, _ := b.Predicate(FilterRequest{CategoryID: &catID}).Build()
	assert.NotContains(t, sql, "COUNT(DISTINCT")
}

func TestPredicate_UnknownAttributeIgnored(t *testing.T) {
	t.Parallel()

	_, size, _, _ := schemaAttrs()
	b := NewBuilder([]models.Attribute{size})

	catID := uuid.New()
	req := FilterRequest{
		CategoryID:       &catID,
		AttributeFilters: map[string][]string{"nosuch": {"x"}},
	}
	sql, _ := b.Predicate(req).Build()
	assert.NotContains(t, sql, "EXISTS")
}

func TestPredicate_StringFilterParameterized(t *testing.T) {
	t.Parallel()

	color, _, _, _ := schemaAttrs()
	b := NewBuilder([]models.Attribute{color})

	catID := uuid.New()
	hostile := "red'; DROP TABLE products; --"
	req := FilterRequest{
		CategoryID:       &catID,
		AttributeFilters: map[string][]string{"color": {hostile, "blue"}},
	}
	sql, args := b.Predicate(req).Build()

	// Values reach the database only as bound arguments.
	assert.NotContains(t, sql, "DROP TABLE")
	assert.Contains(t, sql, "pav.value IN ?")
	assert.Contains(t, args, []string{hostile, "blue"})
}

func TestPredicate_NumberRange(t *testing.T) {
	t.Parallel()

	_, _, length, _ := schemaAttrs()
	b := NewBuilder([]models.Attribute{length})
	catID := uuid.New()

	req := FilterRequest{
		CategoryID:       &catID,
		AttributeFilters: map[string][]string{"length": {"8", "16"}},
	}
	sql, args := b.Predicate(req).Build()
	assert.Contains(t, sql, "CAST(pav.value AS DECIMAL) BETWEEN ? AND ?")
	assert.Contains(t, args, 8.0)
	assert.Contains(t, args, 16.0)
}

func TestPredicate_NumberRangeOrderNormalized(t *testing.T) {
	t.Parallel()

	_, _, length, _ := schemaAttrs()
	b := NewBuilder([]models.Attribute{length})
	catID := uuid.New()

	req := FilterRequest{
		CategoryID:       &catID,
		AttributeFilters: map[string][]string{"length": {"16", "8"}},
	}
	_, args := b.Predicate(req).Build()
	require.Len(t, args, 5)
	assert.Equal(t, 8.0, args[3])
	assert.Equal(t, 16.0, args[4])
}

func TestPredicate_NumberRangeMalformedIgnored(t *testing.T) {
	t.Parallel()

	_, _, length, _ := schemaAttrs()
	b := NewBuilder([]models.Attribute{length})
	catID := uuid.New()

	for _, selection := range [][]string{
		{"8"},
		{"8", "16", "32"},
		{"eight", "16"},
	} {
		req := FilterRequest{
			CategoryID:       &catID,
			AttributeFilters: map[string][]string{"length": selection},
		}
		sql, _ := b.Predicate(req).Build()
		assert.NotContains(t, sql, "BETWEEN", "selection %v should be ignored", selection)
	}
}

func TestPredicate_BooleanFilterKeepsLiteralsOnly(t *testing.T) {
	t.Parallel()

	_, _, _, waterproof := schemaAttrs()
	b := NewBuilder([]models.Attribute{waterproof})
	catID := uuid.New()

	req := FilterRequest{
		CategoryID:       &catID,
		AttributeFilters: map[string][]string{"waterproof": {"true", "maybe"}},
	}
	_, args := b.Predicate(req).Build()
	assert.Contains(t, args, []string{"true"})

	req.AttributeFilters["waterproof"] = []string{"yes", "no"}
	sql, _ := b.Predicate(req).Build()
	assert.NotContains(t, sql, "EXISTS")
}

func TestPredicate_SearchMatchesModelOrBrand(t *testing.T) {
	t.Parallel()

	b := NewBuilder(nil)
	sql, args := b.Predicate(FilterRequest{Search: "Air"}).Build()
	assert.Contains(t, sql, "LOWER(products.model) LIKE ?")
	assert.Contains(t, sql, "LOWER(products.brand) LIKE ?")
	assert.Contains(t, sql, " OR ")
	assert.Contains(t, args, "%air%")
}

func TestPredicate_SearchEscapesWildcards(t *testing.T) {
	t.Parallel()

	b := NewBuilder(nil)
	sql, args := b.Predicate(FilterRequest{Search: `100%_c\o`}).Build()
	assert.Contains(t, sql, `ESCAPE '\'`)
	assert.Contains(t, args, `%100\%\_c\\o%`)
}

func TestPredicate_DeterministicAcrossCalls(t *testing.T) {
	t.Parallel()

	color, size, length, _ := schemaAttrs()
	b := NewBuilder([]models.Attribute{color, size, length})
	catID := uuid.New()
	req := FilterRequest{
		CategoryID: &catID,
		AttributeFilters: map[string][]string{
			"size":   {"M"},
			"color":  {"red"},
			"length": {"8", "16"},
		},
	}

	firstSQL, firstArgs := b.Predicate(req).Build()
	for i := 0; i < 10; i++ {
		sql, args := b.Predicate(req).Build()
		require.Equal(t, firstSQL, sql)
		require.Equal(t, firstArgs, args)
	}
}
