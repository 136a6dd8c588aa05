package queries

import (
	"context"
	"fmt"

	"github.com/nvujicic/supplyline/internal/orders/domain"
	"github.com/nvujicic/supplyline/internal/orders/ports"
)

// ListOrdersQuery lists the caller's current orders. Buyers get their own
// orders newest first; suppliers get orders on their products with
// actionable (earlier-status) orders surfaced first.
type ListOrdersQuery struct {
	UserID int64
	Role   domain.Role
}

func (q ListOrdersQuery) Validate() error {
	if q.UserID <= 0 {
		return fmt.Errorf("%w: user_id", domain.ErrIDInvalid)
	}
	if _, err := domain.ParseRole(string(q.Role)); err != nil {
		return err
	}
	return nil
}

// ListOrdersQueryHandler executes ListOrdersQuery.
type ListOrdersQueryHandler struct {
	repo ports.OrderRepository
}

// NewListOrdersQueryHandler constructs a ListOrdersQueryHandler.
func NewListOrdersQueryHandler(repo ports.OrderRepository) *ListOrdersQueryHandler {
	return &ListOrdersQueryHandler{repo: repo}
}

func (h *ListOrdersQueryHandler) Handle(ctx context.Context, query ListOrdersQuery) ([]domain.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	if query.Role == domain.RoleSupplier {
		return h.repo.ListForSupplier(ctx, query.UserID)
	}
	return h.repo.ListForBuyer(ctx, query.UserID)
}
