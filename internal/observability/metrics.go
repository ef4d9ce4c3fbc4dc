package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"storefront/internal/model"
)

// MeterName is the instrumentation scope of the storefront meters.
const MeterName = "storefront/orders"

// OrderMetrics holds the order lifecycle instruments.
type OrderMetrics struct {
	placed      metric.Int64Counter
	transitions metric.Int64Counter
	revenue     metric.Float64Counter
	numberRetry metric.Int64Counter
}

// NewOrderMetrics creates the instruments on the given MeterProvider.
func NewOrderMetrics(mp metric.MeterProvider) *OrderMetrics {
	meter := mp.Meter(MeterName)
	m := &OrderMetrics{}

	var err error
	m.placed, err = meter.Int64Counter(
		"storefront.orders.placed",
		metric.WithDescription("Orders created"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		m.placed, _ = meter.Int64Counter("storefront.orders.placed")
	}

	m.transitions, err = meter.Int64Counter(
		"storefront.orders.transitions",
		metric.WithDescription("Order status changes by target status"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		m.transitions, _ = meter.Int64Counter("storefront.orders.transitions")
	}

	m.revenue, err = meter.Float64Counter(
		"storefront.orders.amount",
		metric.WithDescription("Sum of order totals at placement"),
	)
	if err != nil {
		m.revenue, _ = meter.Float64Counter("storefront.orders.amount")
	}

	m.numberRetry, err = meter.Int64Counter(
		"storefront.orders.number_collisions",
		metric.WithDescription("Order number collisions that forced a retry"),
	)
	if err != nil {
		m.numberRetry, _ = meter.Int64Counter("storefront.orders.number_collisions")
	}

	return m
}

// NewNoopOrderMetrics creates metrics that do nothing.
func NewNoopOrderMetrics() *OrderMetrics {
	return NewOrderMetrics(noop.NewMeterProvider())
}

// OrderPlaced records a new order and its total.
func (m *OrderMetrics) OrderPlaced(ctx context.Context, paymentMethod string, total float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("order.payment_method", paymentMethod))
	m.placed.Add(ctx, 1, attrs)
	m.revenue.Add(ctx, total, attrs)
}

// StatusChanged records a transition into status to.
func (m *OrderMetrics) StatusChanged(ctx context.Context, from, to model.OrderStatus) {
	if m == nil {
		return
	}
	m.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("order.status.from", string(from)),
		attribute.String("order.status.to", string(to)),
	))
}

// OrderNumberCollision records a regenerated order number.
func (m *OrderMetrics) OrderNumberCollision(ctx context.Context) {
	if m == nil {
		return
	}
	m.numberRetry.Add(ctx, 1)
}
