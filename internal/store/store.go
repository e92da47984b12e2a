// Package store holds the storefront state: the catalog, the cart and the
// order history. It is the only sanctioned way to mutate that state.
//
// Every operation runs to completion under one lock before returning, so a
// mutation is visible to every read that starts after it. Reads hand out deep
// copies; callers never alias store memory.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/order"
	"github.com/xenking/kart-storefront/internal/domain/product"
)

var (
	_ product.Repository = (*Store)(nil)
	_ cart.Repository    = (*Store)(nil)
	_ order.Repository   = (*Store)(nil)
)

// Options configures a Store.
type Options struct {
	// Products and Orders are the seed state. Orders are newest first.
	Products []product.Product
	Orders   []order.Order

	// StrictStatus rejects every status change other than Pending → Completed.
	// When false any known status may be set, matching the legacy behaviour.
	StrictStatus bool

	// Logger defaults to zap.NewNop.
	Logger *zap.Logger
	// MeterProvider defaults to a no-op provider.
	MeterProvider metric.MeterProvider
	// Now defaults to time.Now and stamps events.
	Now func() time.Time
}

// Store is the single source of truth for the storefront.
type Store struct {
	mu       sync.RWMutex
	products []product.Product
	index    map[string]int // product id -> position in products
	cart     []cart.Item
	orders   []order.Order

	strict  bool
	bus     *Bus
	metrics *metrics
	lg      *zap.Logger
	now     func() time.Time
}

// New creates a Store seeded from opts.
func New(opts Options) (*Store, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MeterProvider == nil {
		opts.MeterProvider = noop.NewMeterProvider()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	m, err := newMetrics(opts.MeterProvider)
	if err != nil {
		return nil, err
	}

	s := &Store{
		index:   make(map[string]int, len(opts.Products)),
		strict:  opts.StrictStatus,
		bus:     newBus(opts.Logger, m),
		metrics: m,
		lg:      opts.Logger,
		now:     opts.Now,
	}
	for _, p := range opts.Products {
		if err := s.insertProduct(p); err != nil {
			return nil, err
		}
	}
	for _, o := range opts.Orders {
		s.orders = append(s.orders, o.Clone())
	}
	return s, nil
}

// Events returns the bus that mutations are published to.
func (s *Store) Events() *Bus {
	return s.bus
}

// Ping reports whether the store lock can be taken for reading before ctx
// expires. A writer stuck inside a critical section fails readiness.
func (s *Store) Ping(ctx context.Context) error {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for {
		if s.mu.TryRLock() {
			s.mu.RUnlock()
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "store lock")
		case <-ticker.C:
		}
	}
}

// publish stamps and sends e. Must be called with s.mu held so events are
// observed in mutation order.
func (s *Store) publish(e Event) {
	e.At = s.now().UTC()
	s.bus.publish(e)
}
