package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/nvujicic/supplyline/internal/orders/domain"
)

var (
	// ErrNotFound is returned when the requested order does not exist.
	ErrNotFound = errors.New("order not found")

	// ErrNotFoundOrUnauthorized deliberately conflates absence with a
	// failed ownership check, so callers cannot probe for orders that
	// belong to someone else.
	ErrNotFoundOrUnauthorized = errors.New("order not found or unauthorized")
)

// PersistenceError wraps a store-level failure (constraint violation,
// connectivity) so the transport layer can map it separately from
// not-found and validation conditions.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// OrderPatch is the field-merge shape for the generic update path.
// Nil fields are left untouched; the store always refreshes updated_at.
type OrderPatch struct {
	Quantity  *int32
	Status    *domain.OrderStatus
	QRCodeRef *string
}

// IsZero reports whether the patch changes nothing.
func (p OrderPatch) IsZero() bool {
	return p.Quantity == nil && p.Status == nil && p.QRCodeRef == nil
}

// OrderRepository exposes all read/write access to order records.
//
// Every returned order is enriched with the buyer identity and the
// product→supplier identity chain; identity projections never carry
// more than username and email.
type OrderRepository interface {
	// Create persists a new PENDING order with created_at == updated_at
	// and returns it enriched. Referential integrity on buyer/product is
	// delegated to the store; a rejected write surfaces as *PersistenceError.
	Create(ctx context.Context, buyerID, productID int64, quantity int32) (*domain.Order, error)

	// FindByID is an unscoped lookup used by internal composition. It is
	// not an authorization-safe public entry point.
	FindByID(ctx context.Context, orderID int64) (*domain.Order, error)

	// FindForSupplier returns the order only if its product is owned by
	// supplierID; otherwise ErrNotFoundOrUnauthorized.
	FindForSupplier(ctx context.Context, orderID, supplierID int64) (*domain.Order, error)

	// ListForBuyer returns the buyer's orders, newest first.
	ListForBuyer(ctx context.Context, userID int64) ([]domain.Order, error)

	// ListForSupplier returns orders on the supplier's products, sorted by
	// status ascending then created_at descending, so actionable orders
	// surface first.
	ListForSupplier(ctx context.Context, userID int64) ([]domain.Order, error)

	// ListHistory lists by product ownership for suppliers and by direct
	// buyer ownership otherwise, newest first. History shares the
	// identifier space and table with live orders.
	ListHistory(ctx context.Context, userID int64, role domain.Role) ([]domain.Order, error)

	// UpdateStatus overwrites the status and refreshes updated_at.
	UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (*domain.Order, error)

	// UpdateStatusWithArtifact additionally sets the artifact reference.
	// The artifact is only ever attached alongside a status change.
	UpdateStatusWithArtifact(ctx context.Context, orderID int64, status domain.OrderStatus, artifactRef string) (*domain.Order, error)

	// Update merges non-nil patch fields into the order and refreshes
	// updated_at. Callers restrict which fields are mutable through this path.
	Update(ctx context.Context, orderID int64, patch OrderPatch) (*domain.Order, error)

	// Delete removes the order permanently. There is no tombstone.
	Delete(ctx context.Context, orderID int64) error

	// SupplierOwnsOrder reports whether an order exists whose product
	// belongs to the given supplier. Shared predicate for every
	// supplier-scoped authorization decision.
	SupplierOwnsOrder(ctx context.Context, orderID, supplierID int64) (bool, error)
}
