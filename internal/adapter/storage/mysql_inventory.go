package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/port"
)

// InventoryAdapter implements port.InventoryStore against MySQL. The
// reservation itself is a conditional decrement, so the affected row count
// is the only thing that decides success and stock can never go negative.
type InventoryAdapter struct {
	db *sql.DB
}

func NewInventoryAdapter(db *sql.DB) *InventoryAdapter {
	return &InventoryAdapter{db: db}
}

func (a *InventoryAdapter) Begin(ctx context.Context) (port.ReservationScope, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin reservation tx: %w", err)
	}
	return &reservationScope{tx: tx}, nil
}

func (a *InventoryAdapter) Restore(ctx context.Context, lines []domain.CartLine) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin restore tx: %w", err)
	}
	defer tx.Rollback()

	for _, line := range lines {
		if _, err := tx.ExecContext(ctx,
			`UPDATE books SET quantity = quantity + ? WHERE id = ?`,
			line.Quantity, line.BookID,
		); err != nil {
			return fmt.Errorf("restore stock for book %d: %w", line.BookID, err)
		}
	}
	return tx.Commit()
}

type reservationScope struct {
	tx *sql.Tx
}

func (s *reservationScope) CheckAvailable(ctx context.Context, bookID int64, qty int) (bool, error) {
	var stock int
	err := s.tx.QueryRowContext(ctx,
		`SELECT quantity FROM books WHERE id = ?`, bookID,
	).Scan(&stock)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query stock: %w", err)
	}
	return stock >= qty, nil
}

func (s *reservationScope) UnitPrice(ctx context.Context, bookID int64) (float64, error) {
	var price float64
	err := s.tx.QueryRowContext(ctx,
		`SELECT price FROM books WHERE id = ?`, bookID,
	).Scan(&price)
	if err != nil {
		return 0, fmt.Errorf("query price: %w", err)
	}
	return price, nil
}

func (s *reservationScope) Reserve(ctx context.Context, bookID int64, qty int) (int64, error) {
	result, err := s.tx.ExecContext(ctx,
		`UPDATE books SET quantity = quantity - ? WHERE id = ? AND quantity >= ?`,
		qty, bookID, qty,
	)
	if err != nil {
		return 0, fmt.Errorf("decrement stock: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return rows, nil
}

func (s *reservationScope) Commit() error {
	return s.tx.Commit()
}

func (s *reservationScope) Rollback() error {
	err := s.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}
