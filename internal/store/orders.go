package store

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/order"
)

// Orders returns the order history, newest first.
func (s *Store) Orders(_ context.Context) ([]order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]order.Order, len(s.orders))
	for i := range s.orders {
		out[i] = s.orders[i].Clone()
	}
	return out, nil
}

// Order returns a single order.
func (s *Store) Order(_ context.Context, id string) (*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.orderIndex(id)
	if i < 0 {
		return nil, order.ErrNotFound
	}
	o := s.orders[i].Clone()
	return &o, nil
}

func (s *Store) orderIndex(id string) int {
	for i := range s.orders {
		if s.orders[i].ID == id {
			return i
		}
	}
	return -1
}

// CreateOrder records o as the newest order. The caller computes every field;
// the store keeps its own copy of the items.
func (s *Store) CreateOrder(ctx context.Context, o *order.Order) error {
	if o == nil {
		return errors.New("nil order")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.createLocked(ctx, o)
}

func (s *Store) createLocked(ctx context.Context, o *order.Order) error {
	if o.ID == "" {
		return errors.New("order id required")
	}
	if s.orderIndex(o.ID) >= 0 {
		return errors.Errorf("order %q already exists", o.ID)
	}
	s.orders = append([]order.Order{o.Clone()}, s.orders...)

	s.metrics.orderPlaced(ctx)
	s.lg.Debug("Order created",
		zap.String("order_id", o.ID),
		zap.Stringer("total", o.Total),
		zap.Int("items", len(o.Items)),
	)
	s.publish(Event{Kind: OrderPlaced, OrderID: o.ID, Status: o.Status})
	return nil
}

// Checkout hands the current cart to build, records the resulting order as
// the newest and clears the cart. Nothing changes if build fails.
func (s *Store) Checkout(ctx context.Context, build order.Builder) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := build(cart.Clone(s.cart))
	if err != nil {
		return nil, err
	}
	if err := s.createLocked(ctx, o); err != nil {
		return nil, err
	}
	s.clearLocked(ctx)

	out := o.Clone()
	return &out, nil
}

// UpdateOrderStatus overwrites the status of one order. With strict status
// checking only Pending → Completed is accepted.
func (s *Store) UpdateOrderStatus(ctx context.Context, id string, status order.Status) (*order.Order, error) {
	if status != order.StatusPending && status != order.StatusCompleted {
		return nil, errors.Wrapf(order.ErrInvalidStatus, "%q", status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.orderIndex(id)
	if i < 0 {
		return nil, order.ErrNotFound
	}
	from := s.orders[i].Status
	if s.strict && !order.CanTransition(from, status) {
		return nil, &order.InvalidTransitionError{OrderID: id, From: from, To: status}
	}
	s.orders[i].Status = status

	s.metrics.statusChanged(ctx, status)
	s.lg.Debug("Order status changed",
		zap.String("order_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(status)),
	)
	s.publish(Event{Kind: OrderStatusChanged, OrderID: id, Status: status})

	o := s.orders[i].Clone()
	return &o, nil
}
