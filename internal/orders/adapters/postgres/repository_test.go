//go:build integration

package postgres

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nvujicic/supplyline/internal/database"
	"github.com/nvujicic/supplyline/internal/orders/domain"
	"github.com/nvujicic/supplyline/internal/orders/ports"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("supplyline_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	migrationsPath := filepath.Join(findProjectRoot(t), "migrations")
	if err := database.RunMigrations(dsn, migrationsPath); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	pool, err := database.Connect(ctx, dsn, 4)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	return pool
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("go.mod not found in any parent directory")
		}
		dir = parent
	}
}

func seedUser(t *testing.T, pool *pgxpool.Pool, username, email string, role domain.Role) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(), `
		INSERT INTO users (username, email, role) VALUES ($1, $2, $3) RETURNING id`,
		username, email, role,
	).Scan(&id)
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return id
}

func seedProduct(t *testing.T, pool *pgxpool.Pool, supplierID int64, name string) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(), `
		INSERT INTO products (user_id, name, description, price_cents)
		VALUES ($1, $2, 'test product', 1999) RETURNING id`,
		supplierID, name,
	).Scan(&id)
	if err != nil {
		t.Fatalf("seed product %s: %v", name, err)
	}
	return id
}

func TestRepository_Create(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewRepository(pool)
	ctx := context.Background()

	buyerID := seedUser(t, pool, "buyer1", "buyer1@example.com", domain.RoleBuyer)
	supplierID := seedUser(t, pool, "supplier1", "supplier1@example.com", domain.RoleSupplier)
	productID := seedProduct(t, pool, supplierID, "widget")

	t.Run("creates pending order with enrichment", func(t *testing.T) {
		order, err := repo.Create(ctx, buyerID, productID, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if order.Status != domain.StatusPending {
			t.Errorf("expected status %s, got %s", domain.StatusPending, order.Status)
		}
		if !order.CreatedAt.Equal(order.UpdatedAt) {
			t.Errorf("expected created_at == updated_at, got %v / %v", order.CreatedAt, order.UpdatedAt)
		}
		if order.Buyer == nil || order.Buyer.Username != "buyer1" {
			t.Errorf("expected buyer enrichment, got %+v", order.Buyer)
		}
		if order.Product == nil || order.Product.Supplier == nil {
			t.Fatalf("expected product and supplier enrichment, got %+v", order.Product)
		}
		if order.Product.Supplier.Email != "supplier1@example.com" {
			t.Errorf("unexpected supplier email %s", order.Product.Supplier.Email)
		}
		if order.SupplierID() != supplierID {
			t.Errorf("expected supplier id %d, got %d", supplierID, order.SupplierID())
		}
	})

	t.Run("rejects unknown product", func(t *testing.T) {
		_, err := repo.Create(ctx, buyerID, 999999, 1)

		var persistErr *ports.PersistenceError
		if !errors.As(err, &persistErr) {
			t.Fatalf("expected PersistenceError, got %v", err)
		}
	})

	t.Run("rejects unknown buyer", func(t *testing.T) {
		_, err := repo.Create(ctx, 999999, productID, 1)

		var persistErr *ports.PersistenceError
		if !errors.As(err, &persistErr) {
			t.Fatalf("expected PersistenceError, got %v", err)
		}
	})
}

func TestRepository_SupplierScoping(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewRepository(pool)
	ctx := context.Background()

	buyerID := seedUser(t, pool, "buyer1", "buyer1@example.com", domain.RoleBuyer)
	supplierID := seedUser(t, pool, "supplier1", "supplier1@example.com", domain.RoleSupplier)
	otherSupplierID := seedUser(t, pool, "supplier2", "supplier2@example.com", domain.RoleSupplier)
	productID := seedProduct(t, pool, supplierID, "widget")

	order, err := repo.Create(ctx, buyerID, productID, 1)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	t.Run("owning supplier sees the order", func(t *testing.T) {
		found, err := repo.FindForSupplier(ctx, order.ID, supplierID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if found.ID != order.ID {
			t.Errorf("expected order %d, got %d", order.ID, found.ID)
		}
	})

	t.Run("foreign supplier gets conflated error", func(t *testing.T) {
		_, err := repo.FindForSupplier(ctx, order.ID, otherSupplierID)
		if !errors.Is(err, ports.ErrNotFoundOrUnauthorized) {
			t.Fatalf("expected ErrNotFoundOrUnauthorized, got %v", err)
		}
	})

	t.Run("missing order gets the same conflated error", func(t *testing.T) {
		_, err := repo.FindForSupplier(ctx, 999999, supplierID)
		if !errors.Is(err, ports.ErrNotFoundOrUnauthorized) {
			t.Fatalf("expected ErrNotFoundOrUnauthorized, got %v", err)
		}
	})

	t.Run("ownership predicate", func(t *testing.T) {
		owns, err := repo.SupplierOwnsOrder(ctx, order.ID, supplierID)
		if err != nil || !owns {
			t.Fatalf("expected ownership, got owns=%v err=%v", owns, err)
		}
		owns, err = repo.SupplierOwnsOrder(ctx, order.ID, otherSupplierID)
		if err != nil || owns {
			t.Fatalf("expected no ownership, got owns=%v err=%v", owns, err)
		}
	})
}

func TestRepository_Listing(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewRepository(pool)
	ctx := context.Background()

	buyerID := seedUser(t, pool, "buyer1", "buyer1@example.com", domain.RoleBuyer)
	otherBuyerID := seedUser(t, pool, "buyer2", "buyer2@example.com", domain.RoleBuyer)
	supplierID := seedUser(t, pool, "supplier1", "supplier1@example.com", domain.RoleSupplier)
	productID := seedProduct(t, pool, supplierID, "widget")

	first, err := repo.Create(ctx, buyerID, productID, 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := repo.Create(ctx, buyerID, productID, 2)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	foreign, err := repo.Create(ctx, otherBuyerID, productID, 3)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := repo.UpdateStatus(ctx, first.ID, domain.StatusShipped); err != nil {
		t.Fatalf("update status: %v", err)
	}

	t.Run("buyer list excludes other buyers and sorts newest first", func(t *testing.T) {
		orders, err := repo.ListForBuyer(ctx, buyerID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(orders) != 2 {
			t.Fatalf("expected 2 orders, got %d", len(orders))
		}
		if orders[0].ID != second.ID {
			t.Errorf("expected newest order %d first, got %d", second.ID, orders[0].ID)
		}
	})

	t.Run("supplier list groups by status", func(t *testing.T) {
		orders, err := repo.ListForSupplier(ctx, supplierID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(orders) != 3 {
			t.Fatalf("expected 3 orders, got %d", len(orders))
		}
		// PENDING sorts before SHIPPED lexicographically.
		if orders[len(orders)-1].ID != first.ID {
			t.Errorf("expected shipped order %d last, got %d", first.ID, orders[len(orders)-1].ID)
		}
	})

	t.Run("history scopes by role", func(t *testing.T) {
		buyerHistory, err := repo.ListHistory(ctx, buyerID, domain.RoleBuyer)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(buyerHistory) != 2 {
			t.Errorf("expected 2 buyer orders, got %d", len(buyerHistory))
		}

		supplierHistory, err := repo.ListHistory(ctx, supplierID, domain.RoleSupplier)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(supplierHistory) != 3 {
			t.Errorf("expected 3 supplier orders, got %d", len(supplierHistory))
		}
		if supplierHistory[0].ID != foreign.ID {
			t.Errorf("expected newest order %d first, got %d", foreign.ID, supplierHistory[0].ID)
		}
	})
}

func TestRepository_Updates(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewRepository(pool)
	ctx := context.Background()

	buyerID := seedUser(t, pool, "buyer1", "buyer1@example.com", domain.RoleBuyer)
	supplierID := seedUser(t, pool, "supplier1", "supplier1@example.com", domain.RoleSupplier)
	productID := seedProduct(t, pool, supplierID, "widget")

	order, err := repo.Create(ctx, buyerID, productID, 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Run("status update refreshes updated_at", func(t *testing.T) {
		updated, err := repo.UpdateStatus(ctx, order.ID, domain.StatusConfirmed)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.Status != domain.StatusConfirmed {
			t.Errorf("expected CONFIRMED, got %s", updated.Status)
		}
		if !updated.UpdatedAt.After(updated.CreatedAt) {
			t.Errorf("expected updated_at after created_at")
		}
		if updated.QRCodeRef != "" {
			t.Errorf("plain status update must not touch the artifact ref, got %q", updated.QRCodeRef)
		}
	})

	t.Run("status update with artifact sets both", func(t *testing.T) {
		updated, err := repo.UpdateStatusWithArtifact(ctx, order.ID, domain.StatusShipped, "codes/order-1.png")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.Status != domain.StatusShipped {
			t.Errorf("expected SHIPPED, got %s", updated.Status)
		}
		if updated.QRCodeRef != "codes/order-1.png" {
			t.Errorf("expected artifact ref, got %q", updated.QRCodeRef)
		}
	})

	t.Run("patch merges only supplied fields", func(t *testing.T) {
		qty := int32(9)
		updated, err := repo.Update(ctx, order.ID, ports.OrderPatch{Quantity: &qty})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.Quantity != 9 {
			t.Errorf("expected quantity 9, got %d", updated.Quantity)
		}
		if updated.Status != domain.StatusShipped {
			t.Errorf("patch must not reset status, got %s", updated.Status)
		}
	})

	t.Run("empty patch is a no-op read", func(t *testing.T) {
		updated, err := repo.Update(ctx, order.ID, ports.OrderPatch{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.ID != order.ID {
			t.Errorf("expected order %d, got %d", order.ID, updated.ID)
		}
	})

	t.Run("updating a missing order reports not found", func(t *testing.T) {
		_, err := repo.UpdateStatus(ctx, 999999, domain.StatusShipped)
		if !errors.Is(err, ports.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestRepository_Delete(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewRepository(pool)
	ctx := context.Background()

	buyerID := seedUser(t, pool, "buyer1", "buyer1@example.com", domain.RoleBuyer)
	supplierID := seedUser(t, pool, "supplier1", "supplier1@example.com", domain.RoleSupplier)
	productID := seedProduct(t, pool, supplierID, "widget")

	order, err := repo.Create(ctx, buyerID, productID, 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.Delete(ctx, order.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := repo.FindByID(ctx, order.ID); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	if err := repo.Delete(ctx, order.ID); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
