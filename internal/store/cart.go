package store

import (
	"context"

	"go.uber.org/zap"

	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/product"
)

// Cart returns the cart items in the order they were first added.
func (s *Store) Cart(_ context.Context) ([]cart.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := cart.Clone(s.cart)
	if items == nil {
		items = []cart.Item{}
	}
	return items, nil
}

func (s *Store) cartIndex(productID string) int {
	for i := range s.cart {
		if s.cart[i].ID == productID {
			return i
		}
	}
	return -1
}

// AddToCart increments the quantity of an existing entry for p, or inserts a
// new entry with quantity 1 holding a copy of p's current fields.
func (s *Store) AddToCart(ctx context.Context, p product.Product) (*cart.Item, error) {
	return s.AddToCartN(ctx, p, 1)
}

// AddToCartN adds n units of p at once, with the same snapshot rules as
// AddToCart. The cart is left unchanged if the entry would end up outside
// [1, cart.MaxQuantity].
func (s *Store) AddToCartN(ctx context.Context, p product.Product, n int) (*cart.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.cartIndex(p.ID)
	have := 0
	if i >= 0 {
		have = s.cart[i].Quantity
	}
	qty, err := cart.Increase(p.ID, have, n)
	if err != nil {
		return nil, err
	}

	var it cart.Item
	if i >= 0 {
		s.cart[i].Quantity = qty
		it = s.cart[i]
	} else {
		it = cart.Item{Product: p, Quantity: qty}
		s.cart = append(s.cart, it)
	}

	s.metrics.cartMutation(ctx, "add")
	s.lg.Debug("Added to cart",
		zap.String("product_id", p.ID),
		zap.Int("added", n),
		zap.Int("quantity", it.Quantity),
	)
	s.publish(Event{Kind: CartUpdated, ProductID: p.ID, Quantity: it.Quantity})
	return &it, nil
}

// RemoveFromCart deletes the entry for productID regardless of its quantity.
func (s *Store) RemoveFromCart(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.removeLocked(ctx, productID)
}

func (s *Store) removeLocked(ctx context.Context, productID string) error {
	i := s.cartIndex(productID)
	if i < 0 {
		return cart.ErrNotFound
	}
	s.cart = append(s.cart[:i], s.cart[i+1:]...)

	s.metrics.cartMutation(ctx, "remove")
	s.publish(Event{Kind: CartUpdated, ProductID: productID})
	return nil
}

// UpdateCartQuantity sets the absolute quantity of an existing entry. A
// quantity of zero or less removes the entry. It never inserts, and a
// quantity above cart.MaxQuantity fails with *cart.QuantityError.
func (s *Store) UpdateCartQuantity(ctx context.Context, productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		return s.removeLocked(ctx, productID)
	}
	i := s.cartIndex(productID)
	if i < 0 {
		return cart.ErrNotFound
	}
	if quantity > cart.MaxQuantity {
		return &cart.QuantityError{ProductID: productID, Quantity: quantity}
	}
	s.cart[i].Quantity = quantity

	s.metrics.cartMutation(ctx, "set_quantity")
	s.publish(Event{Kind: CartUpdated, ProductID: productID, Quantity: quantity})
	return nil
}

// ClearCart empties the cart.
func (s *Store) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearLocked(ctx)
	return nil
}

func (s *Store) clearLocked(ctx context.Context) {
	s.cart = nil
	s.metrics.cartMutation(ctx, "clear")
	s.publish(Event{Kind: CartCleared})
}
