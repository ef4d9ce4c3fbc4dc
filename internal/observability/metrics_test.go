package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"storefront/internal/model"
)

func TestOrderMetrics_RecordDoesNotPanic(t *testing.T) {
	ctx := context.Background()

	for name, m := range map[string]*OrderMetrics{
		"noop":   NewNoopOrderMetrics(),
		"global": NewOrderMetrics(otel.GetMeterProvider()),
		"nil":    nil,
	} {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				m.OrderPlaced(ctx, "COD", 12.5)
				m.StatusChanged(ctx, model.OrderStatusPending, model.OrderStatusCancelled)
				m.OrderNumberCollision(ctx)
			})
		})
	}
}

func TestPrometheusProvider_ExposesOrderMetrics(t *testing.T) {
	provider, err := NewPrometheusProvider()
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m := NewOrderMetrics(provider.MeterProvider())
	ctx := context.Background()
	m.OrderPlaced(ctx, "COD", 12.5)
	m.OrderPlaced(ctx, "COD", 7.5)
	m.StatusChanged(ctx, model.OrderStatusPending, model.OrderStatusConfirmed)
	m.OrderNumberCollision(ctx)

	rec := httptest.NewRecorder()
	provider.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Regexp(t, `storefront_orders_placed_total\{[^}]*order_payment_method="COD"[^}]*\} 2`, body)
	assert.Contains(t, body, `order_status_to="Confirmed"`)
	assert.Contains(t, body, "storefront_orders_number_collisions_total")
}
