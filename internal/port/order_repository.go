package port

import (
	"context"

	"github.com/rl1809/bookstore/internal/core/domain"
)

type OrderRepository interface {
	// Create persists the order header and every line item in one
	// transaction and returns the generated order id.
	Create(ctx context.Context, order *domain.Order) (int64, error)

	// Recent returns the most recent n orders system-wide, newest first,
	// hydrated with buyer and items.
	Recent(ctx context.Context, n int) ([]domain.Order, error)

	// ByUser returns all orders of one buyer with aggregated totals.
	ByUser(ctx context.Context, userID int64) ([]domain.Order, error)

	// ItemsByOrder returns the line items of one order, each hydrated with
	// its book.
	ItemsByOrder(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
}
