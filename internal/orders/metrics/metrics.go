package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	ordersPlacedTotal      metric.Int64Counter
	orderPlacementDuration metric.Float64Histogram
	statusUpdatesTotal     metric.Int64Counter
	authzDenialsTotal      metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.ordersPlacedTotal, err = meter.Int64Counter(
		"orders_placed_total",
		metric.WithDescription("Total number of orders placed"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create orders_placed_total counter: %w", err)
	}

	m.orderPlacementDuration, err = meter.Float64Histogram(
		"order_placement_duration_seconds",
		metric.WithDescription("Duration of order placement operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_placement_duration histogram: %w", err)
	}

	m.statusUpdatesTotal, err = meter.Int64Counter(
		"order_status_updates_total",
		metric.WithDescription("Total number of order status updates"),
		metric.WithUnit("{update}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_status_updates_total counter: %w", err)
	}

	m.authzDenialsTotal, err = meter.Int64Counter(
		"order_authorization_denials_total",
		metric.WithDescription("Order operations denied by the ownership check"),
		metric.WithUnit("{denial}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_authorization_denials_total counter: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordOrderPlaced(ctx context.Context, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.ordersPlacedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}

func (m *Metrics) RecordOrderPlacementDuration(ctx context.Context, durationSeconds float64) {
	m.orderPlacementDuration.Record(ctx, durationSeconds)
}

func (m *Metrics) RecordStatusUpdate(ctx context.Context, status string) {
	m.statusUpdatesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("new_status", status),
	))
}

func (m *Metrics) RecordAuthorizationDenial(ctx context.Context, role string) {
	m.authzDenialsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("role", role),
	))
}
