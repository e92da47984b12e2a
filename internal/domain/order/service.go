package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/xenking/kart-storefront/internal/domain/cart"
)

// PlaceOrderResult holds the output of a successful checkout.
type PlaceOrderResult struct {
	Order *Order
	Quote cart.Quote
}

// ServiceConfig holds non-dependency configuration for the Service.
type ServiceConfig struct {
	// TaxRate is applied on top of the order total for display. Unset means
	// cart.DefaultTaxRate.
	TaxRate decimal.NullDecimal
	// Now and NewID override the clock and id source, mainly for tests.
	Now   func() time.Time
	NewID func() string
	// TracerProvider defaults to a no-op provider.
	TracerProvider trace.TracerProvider
}

// Service encapsulates the checkout and order management flows.
type Service struct {
	orders  Repository
	taxRate decimal.Decimal
	now     func() time.Time
	newID   func() string
	tracer  trace.Tracer
}

// NewService creates an order Service on top of the store's order operations.
func NewService(cfg ServiceConfig, orders Repository) *Service {
	s := &Service{
		orders:  orders,
		taxRate: cart.DefaultTaxRate,
		now:     cfg.Now,
		newID:   cfg.NewID,
	}
	if cfg.TaxRate.Valid {
		s.taxRate = cfg.TaxRate.Decimal
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = NewID
	}
	tp := cfg.TracerProvider
	if tp == nil {
		tp = noop.NewTracerProvider()
	}
	s.tracer = tp.Tracer("storefront/order")
	return s
}

// TaxRate returns the rate used for quotes.
func (s *Service) TaxRate() decimal.Decimal {
	return s.taxRate
}

// Quote prices a subtotal at the service tax rate.
func (s *Service) Quote(subtotal decimal.Decimal) cart.Quote {
	return cart.NewQuote(subtotal, s.taxRate)
}

// PlaceOrder snapshots the cart into a new Pending order, records it as the
// newest order and empties the cart.
func (s *Service) PlaceOrder(ctx context.Context) (*PlaceOrderResult, error) {
	ctx, span := s.tracer.Start(ctx, "order.PlaceOrder")
	defer span.End()

	o, err := s.orders.Checkout(ctx, func(items []cart.Item) (*Order, error) {
		if len(items) == 0 {
			return nil, ErrEmptyCart
		}
		return New(s.newID(), items, s.now()), nil
	})
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrEmptyCart) {
			return nil, err
		}
		return nil, errors.Wrap(err, "checkout")
	}

	span.SetAttributes(
		attribute.String("order.id", o.ID),
		attribute.Int("order.items", len(o.Items)),
	)
	return &PlaceOrderResult{
		Order: o,
		Quote: s.Quote(o.Total),
	}, nil
}

// Complete marks a Pending order as Completed.
func (s *Service) Complete(ctx context.Context, id string) (*Order, error) {
	return s.SetStatus(ctx, id, StatusCompleted)
}

// SetStatus changes an order's status. Whether illegal transitions are
// rejected is decided by the repository.
func (s *Service) SetStatus(ctx context.Context, id string, status Status) (*Order, error) {
	o, err := s.orders.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return nil, errors.Wrapf(err, "update order %s", id)
	}
	return o, nil
}

// Stats returns the dashboard figures over all orders.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	orders, err := s.orders.Orders(ctx)
	if err != nil {
		return Stats{}, errors.Wrap(err, "list orders")
	}
	return Summarize(orders), nil
}
