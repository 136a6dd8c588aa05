package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nvujicic/supplyline/internal/orders/app/commands"
	"github.com/nvujicic/supplyline/internal/orders/app/queries"
	"github.com/nvujicic/supplyline/internal/orders/authz"
	"github.com/nvujicic/supplyline/internal/orders/domain"
	"github.com/nvujicic/supplyline/internal/orders/metrics"
	"github.com/nvujicic/supplyline/internal/orders/ports"
)

// Actor identifies the requesting user. Identity and role are established
// by an external authentication layer before they reach this core.
type Actor struct {
	UserID int64
	Role   domain.Role
}

// Service bundles the order use cases behind a single façade. Operations
// that target a specific order consult the authorization guard first; only
// on success does the repository mutation run.
type Service struct {
	repo      ports.OrderRepository
	guard     *authz.Guard
	idemStore ports.IdempotencyStore
	artifacts ports.ArtifactGenerator
	logger    *slog.Logger
	metrics   *metrics.Metrics

	placeOrder    commands.PlaceOrderHandler
	updateStatus  *commands.UpdateStatusCommandHandler
	amendOrder    *commands.AmendOrderCommandHandler
	supplierOrder *queries.SupplierOrderQueryHandler
	listOrders    *queries.ListOrdersQueryHandler
	orderHistory  *queries.OrderHistoryQueryHandler

	events ports.EventBus
}

// NewService wires required dependencies.
func NewService(
	repo ports.OrderRepository,
	events ports.EventBus,
	idem ports.IdempotencyStore,
	artifacts ports.ArtifactGenerator,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	coreHandler := commands.NewPlaceOrderCommandHandler(repo, events)
	observableHandler := commands.NewObservablePlaceOrderHandler(coreHandler, logger, m)

	return &Service{
		repo:          repo,
		guard:         authz.NewGuard(repo),
		idemStore:     idem,
		artifacts:     artifacts,
		logger:        logger,
		metrics:       m,
		placeOrder:    observableHandler,
		updateStatus:  commands.NewUpdateStatusCommandHandler(repo, events),
		amendOrder:    commands.NewAmendOrderCommandHandler(repo),
		supplierOrder: queries.NewSupplierOrderQueryHandler(repo),
		listOrders:    queries.NewListOrdersQueryHandler(repo),
		orderHistory:  queries.NewOrderHistoryQueryHandler(repo),
		events:        events,
	}
}

// PlaceOrder creates a PENDING order for the acting buyer. Event
// publishing is best-effort: a failed publish is logged, never surfaced.
func (s *Service) PlaceOrder(ctx context.Context, actor Actor, productID int64, quantity int32) (*domain.Order, error) {
	cmd := commands.PlaceOrderCommand{
		BuyerID:   actor.UserID,
		ProductID: productID,
		Quantity:  quantity,
	}

	order, err := s.placeOrder.Handle(ctx, cmd)
	if err != nil {
		if order == nil {
			return nil, err
		}
		s.logger.WarnContext(ctx, "order placed but event not published", "order_id", order.ID, "error", err)
	}
	return order, nil
}

// GetOrder retrieves a single order scoped to the actor. Suppliers resolve
// through the product-ownership indirection; buyers through direct order
// ownership. Denial and absence look identical to the caller.
func (s *Service) GetOrder(ctx context.Context, actor Actor, orderID int64) (*domain.Order, error) {
	switch actor.Role {
	case domain.RoleSupplier:
		order, err := s.supplierOrder.Handle(ctx, queries.SupplierOrderQuery{
			OrderID:    orderID,
			SupplierID: actor.UserID,
		})
		if err != nil {
			s.recordDenial(ctx, actor, err)
			return nil, err
		}
		return order, nil

	case domain.RoleBuyer:
		// One fetch serves both the ownership check and the response.
		order, err := s.repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				err = ports.ErrNotFoundOrUnauthorized
			}
			s.recordDenial(ctx, actor, err)
			return nil, err
		}
		if order.UserID != actor.UserID {
			err := ports.ErrNotFoundOrUnauthorized
			s.recordDenial(ctx, actor, err)
			return nil, err
		}
		return order, nil

	default:
		err := ports.ErrNotFoundOrUnauthorized
		s.recordDenial(ctx, actor, err)
		return nil, err
	}
}

// ListOrders returns the actor's current orders, role-scoped and sorted.
func (s *Service) ListOrders(ctx context.Context, actor Actor) ([]domain.Order, error) {
	return s.listOrders.Handle(ctx, queries.ListOrdersQuery{UserID: actor.UserID, Role: actor.Role})
}

// OrderHistory returns the actor's order history, newest first.
func (s *Service) OrderHistory(ctx context.Context, actor Actor) ([]domain.Order, error) {
	return s.orderHistory.Handle(ctx, queries.OrderHistoryQuery{UserID: actor.UserID, Role: actor.Role})
}

// UpdateStatus overwrites the status of an order the actor is allowed to act on.
func (s *Service) UpdateStatus(ctx context.Context, actor Actor, orderID int64, status domain.OrderStatus) (*domain.Order, error) {
	if err := s.authorize(ctx, actor, orderID); err != nil {
		return nil, err
	}

	order, err := s.handleStatusUpdate(ctx, commands.UpdateStatusCommand{OrderID: orderID, Status: status})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordStatusUpdate(ctx, string(order.Status))
	return order, nil
}

// UpdateStatusWithCode performs a status change and attaches a freshly
// generated scannable-code reference in the same write. The reference is
// opaque here; generation lives in an external collaborator.
func (s *Service) UpdateStatusWithCode(ctx context.Context, actor Actor, orderID int64, status domain.OrderStatus) (*domain.Order, error) {
	if err := s.authorize(ctx, actor, orderID); err != nil {
		return nil, err
	}

	ref, err := s.artifacts.GenerateOrderCode(ctx, orderID)
	if err != nil {
		return nil, err
	}

	order, err := s.handleStatusUpdate(ctx, commands.UpdateStatusCommand{OrderID: orderID, Status: status, ArtifactRef: ref})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordStatusUpdate(ctx, string(order.Status))
	return order, nil
}

// AmendOrder corrects the quantity of an order the actor is allowed to act on.
func (s *Service) AmendOrder(ctx context.Context, actor Actor, orderID int64, quantity int32) (*domain.Order, error) {
	if err := s.authorize(ctx, actor, orderID); err != nil {
		return nil, err
	}

	return s.amendOrder.Handle(ctx, commands.AmendOrderCommand{OrderID: orderID, Quantity: quantity})
}

// DeleteOrder removes the order permanently. A buyer cancels their own
// order; a supplier removes one placed on their products.
func (s *Service) DeleteOrder(ctx context.Context, actor Actor, orderID int64) error {
	if err := s.authorize(ctx, actor, orderID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, orderID); err != nil {
		return err
	}

	if err := s.events.PublishOrderDeleted(ctx, orderID); err != nil {
		s.logger.WarnContext(ctx, "order deleted but event not published", "order_id", orderID, "error", err)
	}
	return nil
}

// SaveIdempotentResponse writes response details for a key.
func (s *Service) SaveIdempotentResponse(ctx context.Context, key string, response ports.StoredResponse) error {
	return s.idemStore.Save(ctx, key, response)
}

// GetIdempotentResponse retrieves previously stored response data.
func (s *Service) GetIdempotentResponse(ctx context.Context, key string) (*ports.StoredResponse, error) {
	return s.idemStore.Get(ctx, key)
}

func (s *Service) handleStatusUpdate(ctx context.Context, cmd commands.UpdateStatusCommand) (*domain.Order, error) {
	order, err := s.updateStatus.Handle(ctx, cmd)
	if err != nil {
		if order == nil {
			return nil, err
		}
		s.logger.WarnContext(ctx, "status updated but event not published", "order_id", order.ID, "error", err)
	}
	return order, nil
}

func (s *Service) authorize(ctx context.Context, actor Actor, orderID int64) error {
	err := s.guard.Authorize(ctx, actor.UserID, actor.Role, orderID)
	s.recordDenial(ctx, actor, err)
	return err
}

func (s *Service) recordDenial(ctx context.Context, actor Actor, err error) {
	if errors.Is(err, ports.ErrNotFoundOrUnauthorized) {
		s.metrics.RecordAuthorizationDenial(ctx, string(actor.Role))
	}
}
