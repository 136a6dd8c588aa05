package adapters

import (
	"context"
	"time"

	"github.com/nvujicic/supplyline/internal/kafka"
	"github.com/nvujicic/supplyline/internal/orders/domain"
	"github.com/nvujicic/supplyline/internal/orders/ports"
	"github.com/nvujicic/supplyline/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// ObservableEventBus decorates an event bus with tracing and producer
// latency metrics per topic.
type ObservableEventBus struct {
	bus     ports.EventBus
	metrics *kafka.Metrics
}

func NewObservableEventBus(bus ports.EventBus, metrics *kafka.Metrics) *ObservableEventBus {
	return &ObservableEventBus{bus: bus, metrics: metrics}
}

var _ ports.EventBus = (*ObservableEventBus)(nil)

func (o *ObservableEventBus) PublishOrderPlaced(ctx context.Context, order domain.Order) error {
	return o.publish(ctx, kafka.TopicOrderPlaced, attribute.Int64("order.id", order.ID), func(ctx context.Context) error {
		return o.bus.PublishOrderPlaced(ctx, order)
	})
}

func (o *ObservableEventBus) PublishStatusChanged(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	return o.publish(ctx, kafka.TopicStatusChanged, attribute.Int64("order.id", orderID), func(ctx context.Context) error {
		return o.bus.PublishStatusChanged(ctx, orderID, status)
	})
}

func (o *ObservableEventBus) PublishOrderDeleted(ctx context.Context, orderID int64) error {
	return o.publish(ctx, kafka.TopicOrderDeleted, attribute.Int64("order.id", orderID), func(ctx context.Context) error {
		return o.bus.PublishOrderDeleted(ctx, orderID)
	})
}

func (o *ObservableEventBus) publish(ctx context.Context, topic string, attr attribute.KeyValue, fn func(context.Context) error) error {
	ctx, span := telemetry.StartSpan(ctx, "EventBus.Publish")
	defer span.End()

	telemetry.AddSpanAttributes(span, attribute.String("messaging.topic", topic), attr)

	start := time.Now()
	err := fn(ctx)
	o.metrics.RecordPublish(ctx, topic, time.Since(start).Seconds(), err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}
	telemetry.SetSpanSuccess(span)
	return nil
}
