package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nvujicic/supplyline/internal/orders/domain"
	"github.com/nvujicic/supplyline/internal/orders/ports"
)

const fkViolationCode = "23503"

// Repository is the pgx-backed order store. Every read joins the buyer,
// the product and the product's owning supplier so callers always receive
// fully enriched orders.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ ports.OrderRepository = (*Repository)(nil)

// enriched order projection shared by every SELECT. s is the supplier row
// reached through the product's user_id.
const selectColumns = `
	o.id, o.user_id, o.product_id, o.quantity, o.status, o.qr_code_ref,
	o.created_at, o.updated_at,
	b.username, b.email,
	p.id, p.user_id, p.name, p.description, p.price_cents,
	s.username, s.email`

const selectJoins = `
	FROM orders o
	JOIN users b ON b.id = o.user_id
	JOIN products p ON p.id = o.product_id
	JOIN users s ON s.id = p.user_id`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		order    domain.Order
		buyer    domain.Identity
		product  domain.Product
		supplier domain.Identity
	)

	err := row.Scan(
		&order.ID, &order.UserID, &order.ProductID, &order.Quantity, &order.Status, &order.QRCodeRef,
		&order.CreatedAt, &order.UpdatedAt,
		&buyer.Username, &buyer.Email,
		&product.ID, &product.SupplierID, &product.Name, &product.Description, &product.PriceCents,
		&supplier.Username, &supplier.Email,
	)
	if err != nil {
		return nil, err
	}

	product.Supplier = &supplier
	order.Buyer = &buyer
	order.Product = &product
	return &order, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == fkViolationCode
}

func (r *Repository) Create(ctx context.Context, buyerID, productID int64, quantity int32) (*domain.Order, error) {
	// A single timestamp keeps created_at and updated_at identical on the
	// freshly placed order.
	now := time.Now().UTC()

	var orderID int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO orders (user_id, product_id, quantity, status, qr_code_ref, created_at, updated_at)
		VALUES ($1, $2, $3, $4, '', $5, $5)
		RETURNING id`,
		buyerID, productID, quantity, domain.StatusPending, now,
	).Scan(&orderID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, &ports.PersistenceError{Op: "create order: referenced user or product missing", Err: err}
		}
		return nil, &ports.PersistenceError{Op: "create order", Err: err}
	}

	return r.FindByID(ctx, orderID)
}

func (r *Repository) FindByID(ctx context.Context, orderID int64) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT`+selectColumns+selectJoins+` WHERE o.id = $1`, orderID)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, &ports.PersistenceError{Op: "find order", Err: err}
	}
	return order, nil
}

func (r *Repository) FindForSupplier(ctx context.Context, orderID, supplierID int64) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT`+selectColumns+selectJoins+` WHERE o.id = $1 AND p.user_id = $2`,
		orderID, supplierID)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Absence and foreign ownership are indistinguishable on purpose.
			return nil, ports.ErrNotFoundOrUnauthorized
		}
		return nil, &ports.PersistenceError{Op: "find supplier order", Err: err}
	}
	return order, nil
}

func (r *Repository) ListForBuyer(ctx context.Context, userID int64) ([]domain.Order, error) {
	return r.list(ctx,
		`SELECT`+selectColumns+selectJoins+`
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC`,
		userID)
}

func (r *Repository) ListForSupplier(ctx context.Context, userID int64) ([]domain.Order, error) {
	// Lexicographic status ascending groups orders by state, newest
	// first within each group.
	return r.list(ctx,
		`SELECT`+selectColumns+selectJoins+`
		WHERE p.user_id = $1
		ORDER BY o.status ASC, o.created_at DESC`,
		userID)
}

func (r *Repository) ListHistory(ctx context.Context, userID int64, role domain.Role) ([]domain.Order, error) {
	scope := `o.user_id = $1`
	if role == domain.RoleSupplier {
		scope = `p.user_id = $1`
	}
	return r.list(ctx,
		`SELECT`+selectColumns+selectJoins+`
		WHERE `+scope+`
		ORDER BY o.created_at DESC`,
		userID)
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, &ports.PersistenceError{Op: "list orders", Err: err}
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, &ports.PersistenceError{Op: "scan order", Err: err}
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, &ports.PersistenceError{Op: "list orders", Err: err}
	}
	return orders, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (*domain.Order, error) {
	return r.applyUpdate(ctx, orderID,
		`UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`,
		orderID, status, time.Now().UTC())
}

func (r *Repository) UpdateStatusWithArtifact(ctx context.Context, orderID int64, status domain.OrderStatus, artifactRef string) (*domain.Order, error) {
	return r.applyUpdate(ctx, orderID,
		`UPDATE orders SET status = $2, qr_code_ref = $3, updated_at = $4 WHERE id = $1`,
		orderID, status, artifactRef, time.Now().UTC())
}

func (r *Repository) Update(ctx context.Context, orderID int64, patch ports.OrderPatch) (*domain.Order, error) {
	if patch.IsZero() {
		return r.FindByID(ctx, orderID)
	}

	sets := []string{}
	args := []any{orderID}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Quantity != nil {
		add("quantity", *patch.Quantity)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.QRCodeRef != nil {
		add("qr_code_ref", *patch.QRCodeRef)
	}
	add("updated_at", time.Now().UTC())

	query := `UPDATE orders SET ` + strings.Join(sets, ", ") + ` WHERE id = $1`
	return r.applyUpdate(ctx, orderID, query, args...)
}

func (r *Repository) applyUpdate(ctx context.Context, orderID int64, query string, args ...any) (*domain.Order, error) {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, &ports.PersistenceError{Op: "update order", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return nil, ports.ErrNotFound
	}
	return r.FindByID(ctx, orderID)
}

func (r *Repository) Delete(ctx context.Context, orderID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return &ports.PersistenceError{Op: "delete order", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) SupplierOwnsOrder(ctx context.Context, orderID, supplierID int64) (bool, error) {
	var owns bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM orders o
			JOIN products p ON p.id = o.product_id
			WHERE o.id = $1 AND p.user_id = $2
		)`, orderID, supplierID).Scan(&owns)
	if err != nil {
		return false, &ports.PersistenceError{Op: "check order ownership", Err: err}
	}
	return owns, nil
}
