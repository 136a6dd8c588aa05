package ports

import (
	"context"

	"github.com/nvujicic/supplyline/internal/orders/domain"
)

// EventBus defines the contract for publishing order lifecycle events.
// Publishing is best-effort: a failed publish never rolls back the write
// that triggered it.
type EventBus interface {
	PublishOrderPlaced(ctx context.Context, order domain.Order) error
	PublishStatusChanged(ctx context.Context, orderID int64, status domain.OrderStatus) error
	PublishOrderDeleted(ctx context.Context, orderID int64) error
}
