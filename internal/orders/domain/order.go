package domain

import (
	"errors"
	"fmt"
	"time"
)

// Role identifies which side of a purchase order a user acts on.
type Role string

const (
	RoleBuyer    Role = "BUYER"
	RoleSupplier Role = "SUPPLIER"
)

// ParseRole maps a raw role tag onto the closed set. Anything unrecognized
// is an error so that authorization stays fail-closed.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleBuyer:
		return RoleBuyer, nil
	case RoleSupplier:
		return RoleSupplier, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, raw)
	}
}

// OrderStatus captures the lifecycle of a purchase order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// ParseStatus validates a raw status value against the closed set.
// No transition table is enforced: any known status may overwrite any other.
func ParseStatus(raw string) (OrderStatus, error) {
	switch OrderStatus(raw) {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return OrderStatus(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
}

var (
	ErrUnknownRole     = errors.New("unknown role")
	ErrUnknownStatus   = errors.New("unknown order status")
	ErrQuantityInvalid = errors.New("quantity must be positive")
	ErrIDInvalid       = errors.New("id must be positive")
)

// User is owned by an external identity service; this core only ever reads it.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// Identity is the only projection of a user attached to enriched orders.
// Limiting it to username and email keeps unrelated user data out of
// order payloads.
type Identity struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Product is owned by exactly one supplier; ownership never changes within
// an order's lifetime.
type Product struct {
	ID          int64     `json:"id"`
	SupplierID  int64     `json:"supplier_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	Supplier    *Identity `json:"supplier,omitempty"`
}

// Order represents a purchase order placed by a buyer against a product.
// The effective supplier of an order is the owner of its product, resolved
// through the product reference and never supplied by a caller.
type Order struct {
	ID        int64       `json:"id"`
	UserID    int64       `json:"user_id"`
	ProductID int64       `json:"product_id"`
	Quantity  int32       `json:"quantity"`
	Status    OrderStatus `json:"status"`
	QRCodeRef string      `json:"qr_code_ref,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`

	Buyer   *Identity `json:"buyer,omitempty"`
	Product *Product  `json:"product,omitempty"`
}

// Validate checks the constraints a well-formed order must satisfy.
func (o Order) Validate() error {
	if o.Quantity <= 0 {
		return ErrQuantityInvalid
	}
	if _, err := ParseStatus(string(o.Status)); err != nil {
		return err
	}
	return nil
}

// SupplierID resolves the effective supplier, or 0 when the product
// enrichment is absent.
func (o Order) SupplierID() int64 {
	if o.Product == nil {
		return 0
	}
	return o.Product.SupplierID
}
