package kafka

import (
	"context"
	"log/slog"

	"github.com/nvujicic/supplyline/internal/orders/domain"
)

// NoopEventBus logs events without sending them to Kafka. Useful for local
// dev before a broker is available.
type NoopEventBus struct{}

// NewNoopEventBus returns a new no-op event publisher.
func NewNoopEventBus() *NoopEventBus {
	return &NoopEventBus{}
}

func (n *NoopEventBus) PublishOrderPlaced(_ context.Context, order domain.Order) error {
	slog.Debug("event::order_placed", "order_id", order.ID, "product_id", order.ProductID)
	return nil
}

func (n *NoopEventBus) PublishStatusChanged(_ context.Context, orderID int64, status domain.OrderStatus) error {
	slog.Debug("event::order_status_changed", "order_id", orderID, "status", string(status))
	return nil
}

func (n *NoopEventBus) PublishOrderDeleted(_ context.Context, orderID int64) error {
	slog.Debug("event::order_deleted", "order_id", orderID)
	return nil
}
