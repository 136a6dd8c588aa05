package queries

import (
	"context"
	"fmt"

	"github.com/nvujicic/supplyline/internal/orders/domain"
	"github.com/nvujicic/supplyline/internal/orders/ports"
)

// SupplierOrderQuery is a supplier-scoped lookup of a single order. The
// result is returned only when the order's product belongs to the supplier;
// absence and foreign ownership are deliberately indistinguishable.
type SupplierOrderQuery struct {
	OrderID    int64
	SupplierID int64
}

func (q SupplierOrderQuery) Validate() error {
	if q.OrderID <= 0 {
		return fmt.Errorf("%w: order_id", domain.ErrIDInvalid)
	}
	if q.SupplierID <= 0 {
		return fmt.Errorf("%w: supplier_id", domain.ErrIDInvalid)
	}
	return nil
}

// SupplierOrderQueryHandler executes SupplierOrderQuery.
type SupplierOrderQueryHandler struct {
	repo ports.OrderRepository
}

// NewSupplierOrderQueryHandler constructs a SupplierOrderQueryHandler.
func NewSupplierOrderQueryHandler(repo ports.OrderRepository) *SupplierOrderQueryHandler {
	return &SupplierOrderQueryHandler{repo: repo}
}

// Handle resolves the order through the product-ownership indirection.
func (h *SupplierOrderQueryHandler) Handle(ctx context.Context, query SupplierOrderQuery) (*domain.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	return h.repo.FindForSupplier(ctx, query.OrderID, query.SupplierID)
}
