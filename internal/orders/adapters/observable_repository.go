package adapters

import (
	"context"
	"time"

	"github.com/nvujicic/supplyline/internal/database"
	"github.com/nvujicic/supplyline/internal/orders/domain"
	"github.com/nvujicic/supplyline/internal/orders/ports"
	"github.com/nvujicic/supplyline/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// ObservableRepository decorates an order repository with tracing and
// query-duration metrics. Errors pass through untouched so the sentinel
// checks upstream keep working.
type ObservableRepository struct {
	repo    ports.OrderRepository
	metrics *database.Metrics
}

func NewObservableRepository(repo ports.OrderRepository, metrics *database.Metrics) *ObservableRepository {
	return &ObservableRepository{repo: repo, metrics: metrics}
}

var _ ports.OrderRepository = (*ObservableRepository)(nil)

func (o *ObservableRepository) observe(ctx context.Context, operation string) func() {
	start := time.Now()
	return func() {
		o.metrics.RecordQuery(ctx, operation, time.Since(start).Seconds())
	}
}

func (o *ObservableRepository) Create(ctx context.Context, buyerID, productID int64, quantity int32) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.Create")
	defer span.End()
	defer o.observe(ctx, "create_order")()

	telemetry.AddSpanAttributes(span,
		attribute.Int64("order.buyer_id", buyerID),
		attribute.Int64("order.product_id", productID),
	)

	order, err := o.repo.Create(ctx, buyerID, productID, quantity)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}
	telemetry.SetSpanSuccess(span)
	return order, nil
}

func (o *ObservableRepository) FindByID(ctx context.Context, orderID int64) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.FindByID")
	defer span.End()
	defer o.observe(ctx, "find_order")()

	telemetry.AddSpanAttributes(span, attribute.Int64("order.id", orderID))

	order, err := o.repo.FindByID(ctx, orderID)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}
	telemetry.SetSpanSuccess(span)
	return order, nil
}

func (o *ObservableRepository) FindForSupplier(ctx context.Context, orderID, supplierID int64) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.FindForSupplier")
	defer span.End()
	defer o.observe(ctx, "find_supplier_order")()

	telemetry.AddSpanAttributes(span, attribute.Int64("order.id", orderID))

	order, err := o.repo.FindForSupplier(ctx, orderID, supplierID)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}
	telemetry.SetSpanSuccess(span)
	return order, nil
}

func (o *ObservableRepository) ListForBuyer(ctx context.Context, userID int64) ([]domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.ListForBuyer")
	defer span.End()
	defer o.observe(ctx, "list_buyer_orders")()

	orders, err := o.repo.ListForBuyer(ctx, userID)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}
	telemetry.AddSpanAttributes(span, attribute.Int("orders.count", len(orders)))
	telemetry.SetSpanSuccess(span)
	return orders, nil
}

func (o *ObservableRepository) ListForSupplier(ctx context.Context, userID int64) ([]domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.ListForSupplier")
	defer span.End()
	defer o.observe(ctx, "list_supplier_orders")()

	orders, err := o.repo.ListForSupplier(ctx, userID)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}
	telemetry.AddSpanAttributes(span, attribute.Int("orders.count", len(orders)))
	telemetry.SetSpanSuccess(span)
	return orders, nil
}

func (o *ObservableRepository) ListHistory(ctx context.Context, userID int64, role domain.Role) ([]domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.ListHistory")
	defer span.End()
	defer o.observe(ctx, "list_order_history")()

	telemetry.AddSpanAttributes(span, attribute.String("actor.role", string(role)))

	orders, err := o.repo.ListHistory(ctx, userID, role)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}
	telemetry.AddSpanAttributes(span, attribute.Int("orders.count", len(orders)))
	telemetry.SetSpanSuccess(span)
	return orders, nil
}

func (o *ObservableRepository) UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.UpdateStatus")
	defer span.End()
	defer o.observe(ctx, "update_order_status")()

	telemetry.AddSpanAttributes(span,
		attribute.Int64("order.id", orderID),
		attribute.String("order.status", string(status)),
	)

	order, err := o.repo.UpdateStatus(ctx, orderID, status)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}
	telemetry.SetSpanSuccess(span)
	return order, nil
}

func (o *ObservableRepository) UpdateStatusWithArtifact(ctx context.Context, orderID int64, status domain.OrderStatus, artifactRef string) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.UpdateStatusWithArtifact")
	defer span.End()
	defer o.observe(ctx, "update_order_status_artifact")()

	telemetry.AddSpanAttributes(span,
		attribute.Int64("order.id", orderID),
		attribute.String("order.status", string(status)),
	)

	order, err := o.repo.UpdateStatusWithArtifact(ctx, orderID, status, artifactRef)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}
	telemetry.SetSpanSuccess(span)
	return order, nil
}

func (o *ObservableRepository) Update(ctx context.Context, orderID int64, patch ports.OrderPatch) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.Update")
	defer span.End()
	defer o.observe(ctx, "update_order")()

	telemetry.AddSpanAttributes(span, attribute.Int64("order.id", orderID))

	order, err := o.repo.Update(ctx, orderID, patch)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}
	telemetry.SetSpanSuccess(span)
	return order, nil
}

func (o *ObservableRepository) Delete(ctx context.Context, orderID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.Delete")
	defer span.End()
	defer o.observe(ctx, "delete_order")()

	telemetry.AddSpanAttributes(span, attribute.Int64("order.id", orderID))

	if err := o.repo.Delete(ctx, orderID); err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}
	telemetry.SetSpanSuccess(span)
	return nil
}

func (o *ObservableRepository) SupplierOwnsOrder(ctx context.Context, orderID, supplierID int64) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.SupplierOwnsOrder")
	defer span.End()
	defer o.observe(ctx, "check_order_ownership")()

	telemetry.AddSpanAttributes(span, attribute.Int64("order.id", orderID))

	owns, err := o.repo.SupplierOwnsOrder(ctx, orderID, supplierID)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		return false, err
	}
	telemetry.SetSpanSuccess(span)
	return owns, nil
}
