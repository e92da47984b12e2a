package cart

import (
	"math"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/kart-storefront/internal/domain/product"
)

func item(id, price string, qty int) Item {
	return Item{
		Product: product.Product{
			ID:       id,
			Name:     "item " + id,
			Price:    decimal.RequireFromString(price),
			Category: product.CategorySides,
		},
		Quantity: qty,
	}
}

func TestSubtotalAndCount(t *testing.T) {
	items := []Item{item("1", "12.99", 2), item("3", "2.99", 2)}

	assert.True(t, decimal.RequireFromString("31.96").Equal(Subtotal(items)), Subtotal(items).String())
	assert.Equal(t, 4, Count(items))
	assert.True(t, decimal.Zero.Equal(Subtotal(nil)))
	assert.Zero(t, Count(nil))
}

func TestLineTotal(t *testing.T) {
	assert.Equal(t, "14.97", item("2", "4.99", 3).LineTotal().StringFixed(2))
}

func TestNewQuote(t *testing.T) {
	q := NewQuote(decimal.RequireFromString("14.97"), DefaultTaxRate)

	assert.True(t, decimal.RequireFromString("14.97").Equal(q.Subtotal))
	assert.True(t, decimal.RequireFromString("0.7485").Equal(q.Tax), q.Tax.String())
	assert.True(t, decimal.RequireFromString("15.7185").Equal(q.Total), q.Total.String())
	assert.Equal(t, "15.72", q.Total.StringFixed(2))
}

func TestClone(t *testing.T) {
	items := []Item{item("1", "1.00", 1)}
	c := Clone(items)
	c[0].Quantity = 9

	assert.Equal(t, 1, items[0].Quantity)
	assert.Nil(t, Clone(nil))
}

func TestIncrease(t *testing.T) {
	for _, tc := range []struct {
		name    string
		have, n int
		want    int
		wantErr bool
	}{
		{name: "new entry", have: 0, n: 1, want: 1},
		{name: "several units", have: 2, n: 3, want: 5},
		{name: "up to limit", have: MaxQuantity - 1, n: 1, want: MaxQuantity},
		{name: "past limit", have: MaxQuantity, n: 1, wantErr: true},
		{name: "huge increment", have: 1, n: math.MaxInt, wantErr: true},
		{name: "zero", have: 1, n: 0, wantErr: true},
		{name: "negative", have: 5, n: -3, wantErr: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Increase("2", tc.have, tc.n)
			if tc.wantErr {
				var qErr *QuantityError
				require.True(t, errors.As(err, &qErr), "got %v", err)
				assert.Equal(t, "2", qErr.ProductID)
				assert.Equal(t, tc.have, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCount_AtLimit(t *testing.T) {
	items := make([]Item, 64)
	for i := range items {
		items[i] = item("x", "1.00", MaxQuantity)
	}
	assert.Equal(t, 64*MaxQuantity, Count(items))
}
