package commands

import (
	"context"
	"fmt"

	"github.com/nvujicic/supplyline/internal/orders/domain"
	"github.com/nvujicic/supplyline/internal/orders/ports"
)

// PlaceOrderCommand captures a buyer placing an order against a product.
type PlaceOrderCommand struct {
	BuyerID   int64
	ProductID int64
	Quantity  int32
}

func (c PlaceOrderCommand) Validate() error {
	if c.BuyerID <= 0 {
		return fmt.Errorf("%w: buyer_id", domain.ErrIDInvalid)
	}
	if c.ProductID <= 0 {
		return fmt.Errorf("%w: product_id", domain.ErrIDInvalid)
	}
	if c.Quantity <= 0 {
		return domain.ErrQuantityInvalid
	}
	return nil
}

// PlaceOrderHandler is the contract the observable decorator wraps.
type PlaceOrderHandler interface {
	Handle(ctx context.Context, cmd PlaceOrderCommand) (*domain.Order, error)
}

type PlaceOrderCommandHandler struct {
	repo   ports.OrderRepository
	events ports.EventBus
}

func NewPlaceOrderCommandHandler(repo ports.OrderRepository, events ports.EventBus) *PlaceOrderCommandHandler {
	return &PlaceOrderCommandHandler{
		repo:   repo,
		events: events,
	}
}

// Handle validates the command and persists a new PENDING order. Product
// existence is not checked here; the store's referential integrity rejects
// dangling references.
func (h *PlaceOrderCommandHandler) Handle(ctx context.Context, cmd PlaceOrderCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	order, err := h.repo.Create(ctx, cmd.BuyerID, cmd.ProductID, cmd.Quantity)
	if err != nil {
		return nil, err
	}

	if err := h.events.PublishOrderPlaced(ctx, *order); err != nil {
		return order, fmt.Errorf("order saved but failed to publish event: %w", err)
	}

	return order, nil
}
