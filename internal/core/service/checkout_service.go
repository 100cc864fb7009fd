package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/port"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrReservationRace   = errors.New("reservation lost to concurrent checkout")
	ErrPersistence       = errors.New("order persistence failed")
	ErrDuplicateRequest  = errors.New("duplicate request")
)

// CheckoutRequest is one checkout attempt: the buyer, the cart snapshot and
// an optional caller-supplied id for the idempotency guard.
type CheckoutRequest struct {
	RequestID string
	UserID    int64
	Cart      domain.CartSnapshot
}

type CheckoutResult struct {
	OrderID int64
	Err     error
}

// CheckoutJob pairs a request with its completion callback. Jobs travel
// through the bounded queue and are executed by the worker pool.
type CheckoutJob struct {
	Request CheckoutRequest
	Done    func(CheckoutResult)
}

// CheckoutService turns a cart snapshot into a committed order. The
// reservation runs in one transaction scope against the inventory, the
// order write in a second one; when the write fails after the reservation
// committed, the reserved stock is restored as compensation.
type CheckoutService struct {
	inventory port.InventoryStore
	orders    port.OrderRepository
	cache     port.CacheRepository
	logger    *slog.Logger
	jobs      chan CheckoutJob
}

func NewCheckoutService(
	inventory port.InventoryStore,
	orders port.OrderRepository,
	cache port.CacheRepository,
	logger *slog.Logger,
	queueSize int,
) *CheckoutService {
	return &CheckoutService{
		inventory: inventory,
		orders:    orders,
		cache:     cache,
		logger:    logger,
		jobs:      make(chan CheckoutJob, queueSize),
	}
}

// Submit enqueues an attempt for the worker pool and returns false when the
// queue is full. The callback receives the result exactly once.
func (s *CheckoutService) Submit(req CheckoutRequest, done func(CheckoutResult)) bool {
	select {
	case s.jobs <- CheckoutJob{Request: req, Done: done}:
		return true
	default:
		return false
	}
}

func (s *CheckoutService) Queue() <-chan CheckoutJob {
	return s.jobs
}

func (s *CheckoutService) Close() {
	close(s.jobs)
}

// Checkout runs one attempt to completion and returns the new order id.
// Every failure is reported as one of the exported error kinds or a
// validation error from the domain package; no driver error escapes raw.
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (int64, error) {
	if req.Cart.Len() == 0 {
		return 0, domain.ErrEmptyCart
	}

	s.logger.Info("checkout attempt",
		"user_id", req.UserID,
		"lines", req.Cart.Len(),
		"request_id", req.RequestID,
	)

	if req.RequestID != "" {
		ok, err := s.cache.SetIdempotency(ctx, req.RequestID)
		if err != nil {
			return 0, fmt.Errorf("idempotency check: %w", err)
		}
		if !ok {
			return 0, ErrDuplicateRequest
		}
	}

	orderID, err := s.fulfill(ctx, req)
	if err != nil && req.RequestID != "" {
		if relErr := s.cache.ReleaseIdempotency(context.WithoutCancel(ctx), req.RequestID); relErr != nil {
			s.logger.Warn("failed to release idempotency key",
				"request_id", req.RequestID, "error", relErr)
		}
	}
	return orderID, err
}

func (s *CheckoutService) fulfill(ctx context.Context, req CheckoutRequest) (int64, error) {
	scope, err := s.inventory.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("open reservation scope: %w", err)
	}

	items, err := s.reserveLines(ctx, scope, req.Cart)
	if err != nil {
		if rbErr := scope.Rollback(); rbErr != nil {
			s.logger.Error("reservation rollback failed", "error", rbErr)
		}
		s.logger.Warn("checkout aborted",
			"user_id", req.UserID, "reason", err.Error())
		return 0, err
	}

	if err := scope.Commit(); err != nil {
		return 0, fmt.Errorf("commit reservation: %w", err)
	}

	order := domain.NewOrder(req.UserID, items)
	orderID, err := s.orders.Create(ctx, order)
	if err != nil {
		s.compensate(ctx, req.Cart.Lines())
		s.logger.Error("order persistence failed, reservation compensated",
			"user_id", req.UserID, "error", err)
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.logger.Info("checkout committed",
		"order_id", orderID,
		"user_id", req.UserID,
		"total_quantity", order.TotalQuantity,
		"total_price", order.TotalPrice,
	)
	return orderID, nil
}

// reserveLines walks the snapshot in its iteration order. The first line
// that cannot be covered aborts the whole attempt; there is no partial
// fulfillment.
func (s *CheckoutService) reserveLines(ctx context.Context, scope port.ReservationScope, cart domain.CartSnapshot) ([]domain.OrderItem, error) {
	items := make([]domain.OrderItem, 0, cart.Len())
	for _, line := range cart.Lines() {
		ok, err := scope.CheckAvailable(ctx, line.BookID, line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("check stock for book %d: %w", line.BookID, err)
		}
		if !ok {
			return nil, fmt.Errorf("book %d: %w", line.BookID, ErrInsufficientStock)
		}

		price, err := scope.UnitPrice(ctx, line.BookID)
		if err != nil {
			return nil, fmt.Errorf("capture price for book %d: %w", line.BookID, err)
		}

		rows, err := scope.Reserve(ctx, line.BookID, line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("reserve book %d: %w", line.BookID, err)
		}
		if rows == 0 {
			return nil, fmt.Errorf("book %d: %w", line.BookID, ErrReservationRace)
		}

		items = append(items, domain.OrderItem{
			BookID:       line.BookID,
			Quantity:     line.Quantity,
			PriceAtOrder: price,
		})
	}
	return items, nil
}

func (s *CheckoutService) compensate(ctx context.Context, lines []domain.CartLine) {
	if err := s.inventory.Restore(context.WithoutCancel(ctx), lines); err != nil {
		s.logger.Error("stock restore failed, inventory and orders diverged",
			"lines", len(lines), "error", err)
	}
}
