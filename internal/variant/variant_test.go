package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shirtVariants() []Variant {
	return []Variant{
		{ID: 1, Color: "A", Size: "S", Stock: 3},
		{ID: 2, Color: "A", Size: "M", Stock: 2},
		{ID: 3, Color: "B", Size: "L", Stock: 5},
		{ID: 4, Color: "B", Size: "S", Stock: 0},
	}
}

func TestAvailableValuesFiltersByPartialAndStock(t *testing.T) {
	variants := shirtVariants()

	assert.Equal(t, []string{"A", "B"}, AvailableValues(variants, Color, nil))
	assert.Equal(t, []string{"S", "M"}, AvailableValues(variants, Size, Selection{Color: "A"}))
	assert.Equal(t, []string{"L"}, AvailableValues(variants, Size, Selection{Color: "B"}))
	// 选择中的同一维度不参与过滤
	assert.Equal(t, []string{"S", "M", "L"}, AvailableValues(variants, Size, Selection{Size: "M"}))
	assert.Empty(t, AvailableValues(variants, Size, Selection{Color: "C"}))
}

func TestOptionsDistinguishesOutOfStockFromMissing(t *testing.T) {
	variants := shirtVariants()

	options := Options(variants, Size, Selection{Color: "B"})
	require.Len(t, options, 3)
	assert.Equal(t, ValueOption{Value: "S", Stock: 0, Available: false}, options[0])
	assert.Equal(t, ValueOption{Value: "M", Stock: 0, Available: false}, options[1])
	assert.Equal(t, ValueOption{Value: "L", Stock: 5, Available: true}, options[2])

	for _, opt := range Options(variants, Size, nil) {
		assert.NotEqual(t, "XL", opt.Value)
	}
	assert.Empty(t, Options(variants, Fit, nil))
}

func TestResolveVariantExactMatch(t *testing.T) {
	variants := []Variant{
		{ID: 1, Color: "Red", Size: "M", Stock: 1},
		{ID: 2, Color: "Red", Size: "M", SleeveType: "Full", Stock: 4},
	}

	v, ok := ResolveVariant(variants, Selection{Color: "Red", Size: "M"})
	require.True(t, ok)
	assert.Equal(t, uint(1), v.ID)

	v, ok = ResolveVariant(variants, Selection{Color: "Red", Size: "M", SleeveType: "Full"})
	require.True(t, ok)
	assert.Equal(t, uint(2), v.ID)

	_, ok = ResolveVariant(variants, Selection{Color: "Red"})
	assert.False(t, ok)
}

func TestResolveVariantRejectsDuplicates(t *testing.T) {
	variants := []Variant{
		{ID: 1, Color: "Red", Size: "M", Stock: 1},
		{ID: 2, Color: "Red", Size: "M", Stock: 1},
	}
	_, ok := ResolveVariant(variants, Selection{Color: "Red", Size: "M"})
	assert.False(t, ok)
}

func TestMaxQuantity(t *testing.T) {
	assert.Equal(t, 0, MaxQuantity(nil))
	assert.Equal(t, 0, MaxQuantity(&Variant{Stock: -1}))
	assert.Equal(t, 7, MaxQuantity(&Variant{Stock: 7}))
}

func TestSchemaFollowsHierarchy(t *testing.T) {
	variants := []Variant{
		{Size: "M", Fit: "Slim", Color: "Blue", Stock: 1},
	}
	assert.Equal(t, []Dimension{Color, Size, Fit}, Schema(variants))
}

func TestParseDimension(t *testing.T) {
	dim, ok := ParseDimension("sleeve_type")
	require.True(t, ok)
	assert.Equal(t, SleeveType, dim)

	_, ok = ParseDimension("material")
	assert.False(t, ok)
}
