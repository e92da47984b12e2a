// Package cart models the shopper's pre-checkout selection.
package cart

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-storefront/internal/domain/product"
)

// ErrNotFound is returned when the cart holds no entry for a product id.
var ErrNotFound = errors.New("cart item not found")

// MaxQuantity is the most units of one product a cart entry can hold.
const MaxQuantity = 999

// QuantityError reports a cart entry quantity outside [1, MaxQuantity].
type QuantityError struct {
	ProductID string
	Quantity  int
}

func (e *QuantityError) Error() string {
	return fmt.Sprintf("cart item %q: quantity %d out of range [1, %d]", e.ProductID, e.Quantity, MaxQuantity)
}

// Increase returns have+n for the entry of productID. It fails with a
// *QuantityError when n is below 1 or the result would exceed MaxQuantity.
func Increase(productID string, have, n int) (int, error) {
	q := n
	if n >= 1 && n <= MaxQuantity {
		q = have + n
	}
	if q < 1 || q > MaxQuantity {
		return have, &QuantityError{ProductID: productID, Quantity: q}
	}
	return q, nil
}

// Item is a product snapshot taken when it was first added, plus a quantity.
// Quantity is always at least 1 for items held in a cart.
type Item struct {
	product.Product
	Quantity int
}

// LineTotal returns price × quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Subtotal sums the line totals of items.
func Subtotal(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

// Count returns the total number of units across items. Quantities are
// bounded by MaxQuantity, so the sum cannot overflow for any real cart.
func Count(items []Item) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

// Clone returns a copy of items that shares no backing array with the input.
func Clone(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

// Repository defines the cart operations of the store.
type Repository interface {
	Cart(ctx context.Context) ([]Item, error)
	AddToCart(ctx context.Context, p product.Product) (*Item, error)
	AddToCartN(ctx context.Context, p product.Product, n int) (*Item, error)
	RemoveFromCart(ctx context.Context, productID string) error
	UpdateCartQuantity(ctx context.Context, productID string, quantity int) error
	ClearCart(ctx context.Context) error
}
