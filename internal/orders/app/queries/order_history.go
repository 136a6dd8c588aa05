package queries

import (
	"context"
	"fmt"

	"github.com/nvujicic/supplyline/internal/orders/domain"
	"github.com/nvujicic/supplyline/internal/orders/ports"
)

// OrderHistoryQuery lists the caller's order history, newest first.
// Suppliers are scoped by product ownership, buyers by direct order
// ownership. History addresses the same records as the live operations;
// there is no separate archive.
type OrderHistoryQuery struct {
	UserID int64
	Role   domain.Role
}

func (q OrderHistoryQuery) Validate() error {
	if q.UserID <= 0 {
		return fmt.Errorf("%w: user_id", domain.ErrIDInvalid)
	}
	if _, err := domain.ParseRole(string(q.Role)); err != nil {
		return err
	}
	return nil
}

// OrderHistoryQueryHandler executes OrderHistoryQuery.
type OrderHistoryQueryHandler struct {
	repo ports.OrderRepository
}

// NewOrderHistoryQueryHandler constructs an OrderHistoryQueryHandler.
func NewOrderHistoryQueryHandler(repo ports.OrderRepository) *OrderHistoryQueryHandler {
	return &OrderHistoryQueryHandler{repo: repo}
}

func (h *OrderHistoryQueryHandler) Handle(ctx context.Context, query OrderHistoryQuery) ([]domain.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	return h.repo.ListHistory(ctx, query.UserID, query.Role)
}
