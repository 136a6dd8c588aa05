package commands

import (
	"context"
	"fmt"

	"github.com/nvujicic/supplyline/internal/orders/domain"
	"github.com/nvujicic/supplyline/internal/orders/ports"
)

// UpdateStatusCommand overwrites an order's status. When ArtifactRef is
// set, it is attached in the same write; the artifact reference is never
// written on its own.
type UpdateStatusCommand struct {
	OrderID     int64
	Status      domain.OrderStatus
	ArtifactRef string
}

func (c UpdateStatusCommand) Validate() error {
	if c.OrderID <= 0 {
		return fmt.Errorf("%w: order_id", domain.ErrIDInvalid)
	}
	if _, err := domain.ParseStatus(string(c.Status)); err != nil {
		return err
	}
	return nil
}

type UpdateStatusCommandHandler struct {
	repo   ports.OrderRepository
	events ports.EventBus
}

func NewUpdateStatusCommandHandler(repo ports.OrderRepository, events ports.EventBus) *UpdateStatusCommandHandler {
	return &UpdateStatusCommandHandler{
		repo:   repo,
		events: events,
	}
}

// Handle performs the status write. No transition table is applied: any
// status in the closed set may overwrite any other.
func (h *UpdateStatusCommandHandler) Handle(ctx context.Context, cmd UpdateStatusCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var (
		order *domain.Order
		err   error
	)
	if cmd.ArtifactRef != "" {
		order, err = h.repo.UpdateStatusWithArtifact(ctx, cmd.OrderID, cmd.Status, cmd.ArtifactRef)
	} else {
		order, err = h.repo.UpdateStatus(ctx, cmd.OrderID, cmd.Status)
	}
	if err != nil {
		return nil, err
	}

	if err := h.events.PublishStatusChanged(ctx, order.ID, order.Status); err != nil {
		return order, fmt.Errorf("status saved but failed to publish event: %w", err)
	}

	return order, nil
}
