package store

import (
	"context"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xenking/kart-storefront/internal/domain/order"
)

type metrics struct {
	catalog       metric.Int64Counter
	cart          metric.Int64Counter
	ordersPlaced  metric.Int64Counter
	statusChanges metric.Int64Counter
	eventsDropped metric.Int64Counter
}

func newMetrics(mp metric.MeterProvider) (*metrics, error) {
	meter := mp.Meter("storefront/store")

	var (
		m   metrics
		err error
	)
	if m.catalog, err = meter.Int64Counter("storefront.catalog.mutations",
		metric.WithDescription("Catalog add/update/delete operations"),
	); err != nil {
		return nil, errors.Wrap(err, "catalog counter")
	}
	if m.cart, err = meter.Int64Counter("storefront.cart.mutations",
		metric.WithDescription("Cart add/remove/quantity/clear operations"),
	); err != nil {
		return nil, errors.Wrap(err, "cart counter")
	}
	if m.ordersPlaced, err = meter.Int64Counter("storefront.orders.placed",
		metric.WithDescription("Orders recorded"),
	); err != nil {
		return nil, errors.Wrap(err, "orders counter")
	}
	if m.statusChanges, err = meter.Int64Counter("storefront.orders.status_changes",
		metric.WithDescription("Order status transitions"),
	); err != nil {
		return nil, errors.Wrap(err, "status counter")
	}
	if m.eventsDropped, err = meter.Int64Counter("storefront.events.dropped",
		metric.WithDescription("Events not delivered to a slow subscriber"),
	); err != nil {
		return nil, errors.Wrap(err, "events counter")
	}
	return &m, nil
}

func (m *metrics) catalogMutation(ctx context.Context, op string) {
	m.catalog.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}

func (m *metrics) cartMutation(ctx context.Context, op string) {
	m.cart.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}

func (m *metrics) orderPlaced(ctx context.Context) {
	m.ordersPlaced.Add(ctx, 1)
}

func (m *metrics) statusChanged(ctx context.Context, to order.Status) {
	m.statusChanges.Add(ctx, 1, metric.WithAttributes(attribute.String("to", string(to))))
}

func (m *metrics) eventDropped() {
	m.eventsDropped.Add(context.Background(), 1)
}
