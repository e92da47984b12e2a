package store

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/kart-storefront/internal/domain/product"
)

// Products returns the catalog in insertion order.
func (s *Store) Products(_ context.Context) ([]product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]product.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

// Product returns a single catalog entry.
func (s *Store) Product(_ context.Context, id string) (*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	p := s.products[i]
	return &p, nil
}

// AddProduct appends p to the catalog. The id must be unique; callers wanting
// a generated id use product.NewID.
func (s *Store) AddProduct(ctx context.Context, p product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.insertProduct(p); err != nil {
		return err
	}
	s.metrics.catalogMutation(ctx, "add")
	s.lg.Debug("Product added", zap.String("product_id", p.ID))
	s.publish(Event{Kind: ProductAdded, ProductID: p.ID})
	return nil
}

func (s *Store) insertProduct(p product.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if _, ok := s.index[p.ID]; ok {
		return errors.Wrapf(product.ErrDuplicateID, "%q", p.ID)
	}
	s.index[p.ID] = len(s.products)
	s.products = append(s.products, p)
	return nil
}

// UpdateProduct merges patch into the product with the given id and returns
// the result. Fields not set in patch are untouched.
func (s *Store) UpdateProduct(ctx context.Context, id string, patch product.Patch) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	updated := patch.Apply(s.products[i])
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	s.products[i] = updated

	s.metrics.catalogMutation(ctx, "update")
	s.lg.Debug("Product updated", zap.String("product_id", id))
	s.publish(Event{Kind: ProductUpdated, ProductID: id})
	return &updated, nil
}

// DeleteProduct removes a product from the catalog. Cart items and orders
// holding a snapshot of it are left alone.
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return product.ErrNotFound
	}
	s.products = append(s.products[:i], s.products[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.products); j++ {
		s.index[s.products[j].ID] = j
	}

	s.metrics.catalogMutation(ctx, "delete")
	s.lg.Debug("Product deleted", zap.String("product_id", id))
	s.publish(Event{Kind: ProductDeleted, ProductID: id})
	return nil
}
