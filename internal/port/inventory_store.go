package port

import (
	"context"

	"github.com/rl1809/bookstore/internal/core/domain"
)

// ReservationScope is one transaction against the inventory. All calls see
// the same view of stock; nothing is durable until Commit. Rollback must be
// safe to call on every exit path, including after Commit.
type ReservationScope interface {
	// CheckAvailable reports whether current stock covers the desired
	// quantity. Advisory only: Reserve re-checks atomically.
	CheckAvailable(ctx context.Context, bookID int64, qty int) (bool, error)

	// UnitPrice reads the catalog price inside the scope, so the captured
	// price and the reservation come from the same snapshot.
	UnitPrice(ctx context.Context, bookID int64) (float64, error)

	// Reserve subtracts qty from stock iff enough remains and returns the
	// affected row count. Zero rows means the book vanished or a concurrent
	// reservation won the race; stock is never driven negative.
	Reserve(ctx context.Context, bookID int64, qty int) (int64, error)

	Commit() error
	Rollback() error
}

type InventoryStore interface {
	// Begin opens a reservation scope.
	Begin(ctx context.Context) (ReservationScope, error)

	// Restore adds reserved quantities back, compensating a reservation
	// whose order could not be persisted.
	Restore(ctx context.Context, lines []domain.CartLine) error
}
