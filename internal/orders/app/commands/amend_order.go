package commands

import (
	"context"
	"fmt"

	"github.com/nvujicic/supplyline/internal/orders/domain"
	"github.com/nvujicic/supplyline/internal/orders/ports"
)

// AmendOrderCommand corrects an order through the generic field-merge path.
// Only the quantity is mutable here: status and artifact changes go through
// their dedicated commands.
type AmendOrderCommand struct {
	OrderID  int64
	Quantity int32
}

func (c AmendOrderCommand) Validate() error {
	if c.OrderID <= 0 {
		return fmt.Errorf("%w: order_id", domain.ErrIDInvalid)
	}
	if c.Quantity <= 0 {
		return domain.ErrQuantityInvalid
	}
	return nil
}

type AmendOrderCommandHandler struct {
	repo ports.OrderRepository
}

func NewAmendOrderCommandHandler(repo ports.OrderRepository) *AmendOrderCommandHandler {
	return &AmendOrderCommandHandler{repo: repo}
}

func (h *AmendOrderCommandHandler) Handle(ctx context.Context, cmd AmendOrderCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return h.repo.Update(ctx, cmd.OrderID, ports.OrderPatch{Quantity: &cmd.Quantity})
}
