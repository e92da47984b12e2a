package product

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func burger() Product {
	return Product{
		ID:          "1",
		Name:        "Classic Cheeseburger",
		Description: "Juicy beef patty",
		Price:       decimal.RequireFromString("12.99"),
		Category:    CategoryBurgers,
		Image:       "burger.jpg",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(p *Product)
		wantField string
	}{
		{name: "valid", mutate: func(*Product) {}},
		{name: "missing id", mutate: func(p *Product) { p.ID = " " }, wantField: "id"},
		{name: "missing name", mutate: func(p *Product) { p.Name = "" }, wantField: "name"},
		{name: "negative price", mutate: func(p *Product) { p.Price = decimal.NewFromInt(-1) }, wantField: "price"},
		{name: "zero price allowed", mutate: func(p *Product) { p.Price = decimal.Zero }},
		{name: "unknown category", mutate: func(p *Product) { p.Category = "Desserts" }, wantField: "category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := burger()
			tt.mutate(&p)

			err := p.Validate()
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestParseCategory(t *testing.T) {
	c, ok := ParseCategory("drinks")
	require.True(t, ok)
	assert.Equal(t, CategoryDrinks, c)

	_, ok = ParseCategory("All")
	assert.False(t, ok)
}

func TestPatch_ApplyOnlyPrice(t *testing.T) {
	base := burger()
	price := decimal.RequireFromString("15.00")

	got := Patch{Price: &price}.Apply(base)

	assert.True(t, price.Equal(got.Price))
	assert.Equal(t, base.ID, got.ID)
	assert.Equal(t, base.Name, got.Name)
	assert.Equal(t, base.Description, got.Description)
	assert.Equal(t, base.Category, got.Category)
	assert.Equal(t, base.Image, got.Image)
	assert.True(t, decimal.RequireFromString("12.99").Equal(base.Price), "base must not change")
}

func TestPatch_Empty(t *testing.T) {
	assert.True(t, Patch{}.Empty())
	name := "x"
	assert.False(t, Patch{Name: &name}.Empty())
}

func TestFilter(t *testing.T) {
	fries := Product{ID: "2", Name: "Crispy French Fries", Category: CategorySides}
	cola := Product{ID: "3", Name: "Refreshing Cola", Category: CategoryDrinks}
	all := []Product{burger(), fries, cola}

	assert.Len(t, Filter{}.Apply(all), 3)
	assert.Equal(t, []Product{cola}, Filter{Category: CategoryDrinks}.Apply(all))
	assert.Equal(t, []Product{fries}, Filter{Query: "FRIES"}.Apply(all))
	assert.Empty(t, Filter{Category: CategoryDrinks, Query: "fries"}.Apply(all))
}
