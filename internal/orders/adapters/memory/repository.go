package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/nvujicic/supplyline/internal/orders/domain"
	"github.com/nvujicic/supplyline/internal/orders/ports"
)

var errForeignKey = errors.New("referenced row does not exist")

// Repository provides an in-memory store useful for local development and
// tests. It mirrors the relational layout: users and products are seeded
// through AddUser/AddProduct and orders reference them by ID, with
// referential integrity enforced on create.
type Repository struct {
	mu       sync.RWMutex
	users    map[int64]domain.User
	products map[int64]domain.Product
	orders   map[int64]domain.Order
	nextID   int64
}

// NewRepository constructs an empty in-memory repository.
func NewRepository() *Repository {
	return &Repository{
		users:    make(map[int64]domain.User),
		products: make(map[int64]domain.Product),
		orders:   make(map[int64]domain.Order),
		nextID:   1,
	}
}

// AddUser seeds a user record.
func (r *Repository) AddUser(user domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
}

// AddProduct seeds a product record.
func (r *Repository) AddProduct(product domain.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = product
}

// Create stores a new PENDING order and returns it enriched.
func (r *Repository) Create(_ context.Context, buyerID, productID int64, quantity int32) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[buyerID]; !ok {
		return nil, &ports.PersistenceError{Op: "insert order", Err: errForeignKey}
	}
	if _, ok := r.products[productID]; !ok {
		return nil, &ports.PersistenceError{Op: "insert order", Err: errForeignKey}
	}

	now := time.Now().UTC()
	order := domain.Order{
		ID:        r.nextID,
		UserID:    buyerID,
		ProductID: productID,
		Quantity:  quantity,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.nextID++
	r.orders[order.ID] = order

	enriched := r.enrich(order)
	return &enriched, nil
}

// FindByID fetches a single order by identifier.
func (r *Repository) FindByID(_ context.Context, orderID int64) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[orderID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	enriched := r.enrich(order)
	return &enriched, nil
}

// FindForSupplier returns the order only when its product belongs to the
// given supplier.
func (r *Repository) FindForSupplier(_ context.Context, orderID, supplierID int64) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[orderID]
	if !ok || !r.ownedBySupplier(order, supplierID) {
		return nil, ports.ErrNotFoundOrUnauthorized
	}
	enriched := r.enrich(order)
	return &enriched, nil
}

// ListForBuyer returns the buyer's orders, newest first.
func (r *Repository) ListForBuyer(_ context.Context, userID int64) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := r.collect(func(o domain.Order) bool { return o.UserID == userID })
	sortNewestFirst(result)
	return result, nil
}

// ListForSupplier returns orders on the supplier's products, sorted by
// status ascending then created_at descending.
func (r *Repository) ListForSupplier(_ context.Context, userID int64) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := r.collect(func(o domain.Order) bool { return r.ownedBySupplier(o, userID) })
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Status != result[j].Status {
			return result[i].Status < result[j].Status
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// ListHistory lists by product ownership for suppliers, by buyer ownership
// otherwise, newest first.
func (r *Repository) ListHistory(_ context.Context, userID int64, role domain.Role) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Order
	if role == domain.RoleSupplier {
		result = r.collect(func(o domain.Order) bool { return r.ownedBySupplier(o, userID) })
	} else {
		result = r.collect(func(o domain.Order) bool { return o.UserID == userID })
	}
	sortNewestFirst(result)
	return result, nil
}

// UpdateStatus overwrites the status and refreshes updated_at.
func (r *Repository) UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (*domain.Order, error) {
	return r.Update(ctx, orderID, ports.OrderPatch{Status: &status})
}

// UpdateStatusWithArtifact overwrites status and artifact reference together.
func (r *Repository) UpdateStatusWithArtifact(ctx context.Context, orderID int64, status domain.OrderStatus, artifactRef string) (*domain.Order, error) {
	return r.Update(ctx, orderID, ports.OrderPatch{Status: &status, QRCodeRef: &artifactRef})
}

// Update merges non-nil patch fields and refreshes updated_at.
func (r *Repository) Update(_ context.Context, orderID int64, patch ports.OrderPatch) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return nil, ports.ErrNotFound
	}

	if patch.Quantity != nil {
		order.Quantity = *patch.Quantity
	}
	if patch.Status != nil {
		order.Status = *patch.Status
	}
	if patch.QRCodeRef != nil {
		order.QRCodeRef = *patch.QRCodeRef
	}
	order.UpdatedAt = time.Now().UTC()
	r.orders[orderID] = order

	enriched := r.enrich(order)
	return &enriched, nil
}

// Delete removes the order permanently.
func (r *Repository) Delete(_ context.Context, orderID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[orderID]; !ok {
		return ports.ErrNotFound
	}
	delete(r.orders, orderID)
	return nil
}

// SupplierOwnsOrder reports whether the order's product belongs to the supplier.
func (r *Repository) SupplierOwnsOrder(_ context.Context, orderID, supplierID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[orderID]
	if !ok {
		return false, nil
	}
	return r.ownedBySupplier(order, supplierID), nil
}

func (r *Repository) ownedBySupplier(order domain.Order, supplierID int64) bool {
	product, ok := r.products[order.ProductID]
	return ok && product.SupplierID == supplierID
}

func (r *Repository) collect(keep func(domain.Order) bool) []domain.Order {
	result := make([]domain.Order, 0)
	for _, order := range r.orders {
		if keep(order) {
			result = append(result, r.enrich(order))
		}
	}
	return result
}

// enrich attaches the buyer identity and the product→supplier chain,
// projecting identities down to username and email only.
func (r *Repository) enrich(order domain.Order) domain.Order {
	if buyer, ok := r.users[order.UserID]; ok {
		order.Buyer = &domain.Identity{Username: buyer.Username, Email: buyer.Email}
	}
	if product, ok := r.products[order.ProductID]; ok {
		enriched := product
		if supplier, ok := r.users[product.SupplierID]; ok {
			enriched.Supplier = &domain.Identity{Username: supplier.Username, Email: supplier.Email}
		}
		order.Product = &enriched
	}
	return order
}

func sortNewestFirst(orders []domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

var _ ports.OrderRepository = (*Repository)(nil)
