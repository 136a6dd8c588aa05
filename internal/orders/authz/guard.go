package authz

import (
	"context"
	"errors"

	"github.com/nvujicic/supplyline/internal/orders/domain"
	"github.com/nvujicic/supplyline/internal/orders/ports"
)

// Guard decides whether an actor may act on a specific order.
//
// Supplier access is resolved through the product indirection: the order's
// effective supplier is the owner of its product, never a client-supplied
// ID. Buyer access is direct ownership of the order. Every other role tag
// is denied.
type Guard struct {
	repo ports.OrderRepository
}

// NewGuard constructs a Guard over the given repository.
func NewGuard(repo ports.OrderRepository) *Guard {
	return &Guard{repo: repo}
}

// Authorize returns nil when the actor may act on the order, and
// ports.ErrNotFoundOrUnauthorized otherwise. Denial is indistinguishable
// from absence: a caller cannot learn whether the order exists.
func (g *Guard) Authorize(ctx context.Context, actorID int64, role domain.Role, orderID int64) error {
	switch role {
	case domain.RoleSupplier:
		owns, err := g.repo.SupplierOwnsOrder(ctx, orderID, actorID)
		if err != nil {
			return err
		}
		if !owns {
			return ports.ErrNotFoundOrUnauthorized
		}
		return nil

	case domain.RoleBuyer:
		order, err := g.repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				return ports.ErrNotFoundOrUnauthorized
			}
			return err
		}
		if order.UserID != actorID {
			return ports.ErrNotFoundOrUnauthorized
		}
		return nil

	default:
		return ports.ErrNotFoundOrUnauthorized
	}
}
