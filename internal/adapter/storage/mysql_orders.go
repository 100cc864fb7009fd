package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/bookstore/internal/core/domain"
)

var ErrNoRowsInserted = errors.New("no rows inserted")

// OrderAdapter persists and reads orders. Create runs in its own
// transaction, separate from the reservation scope; the service layer
// compensates the reservation when Create fails.
type OrderAdapter struct {
	db *sql.DB
}

func NewOrderAdapter(db *sql.DB) *OrderAdapter {
	return &OrderAdapter{db: db}
}

func (a *OrderAdapter) Create(ctx context.Context, order *domain.Order) (int64, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO orders (user_id, order_date) VALUES (?, ?)`,
		order.UserID, order.OrderDate,
	)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}
	if rows, err := result.RowsAffected(); err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	} else if rows == 0 {
		return 0, fmt.Errorf("insert order: %w", ErrNoRowsInserted)
	}

	orderID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("order id: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		res, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, book_id, quantity, price_at_order)
			 VALUES (?, ?, ?, ?)`,
			orderID, item.BookID, item.Quantity, item.PriceAtOrder,
		)
		if err != nil {
			return 0, fmt.Errorf("insert order item (book %d): %w", item.BookID, err)
		}
		itemID, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("order item id: %w", err)
		}
		item.ID = itemID
		item.OrderID = orderID
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	order.ID = orderID
	return orderID, nil
}

func (a *OrderAdapter) Recent(ctx context.Context, n int) ([]domain.Order, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, user_id, order_date FROM orders
		 ORDER BY order_date DESC, id DESC LIMIT ?`, n,
	)
	if err != nil {
		return nil, fmt.Errorf("select recent orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.OrderDate); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	for i := range orders {
		o := &orders[i]
		user, err := a.userByID(ctx, o.UserID)
		if err != nil {
			return nil, err
		}
		o.User = user

		items, err := a.ItemsByOrder(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		o.Items = items
		o.CalculateTotals()
	}
	return orders, nil
}

func (a *OrderAdapter) ByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT o.id, o.order_date,
		        SUM(oi.quantity) AS total_quantity,
		        SUM(oi.price_at_order * oi.quantity) AS total_price
		 FROM orders o
		 JOIN order_items oi ON o.id = oi.order_id
		 WHERE o.user_id = ?
		 GROUP BY o.id, o.order_date
		 ORDER BY o.order_date DESC, o.id DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select orders by user: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o := domain.Order{UserID: userID}
		if err := rows.Scan(&o.ID, &o.OrderDate, &o.TotalQuantity, &o.TotalPrice); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	for i := range orders {
		items, err := a.ItemsByOrder(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (a *OrderAdapter) ItemsByOrder(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, order_id, book_id, quantity, price_at_order
		 FROM order_items WHERE order_id = ? ORDER BY id`, orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.BookID, &it.Quantity, &it.PriceAtOrder); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	for i := range items {
		book, err := a.bookByID(ctx, items[i].BookID)
		if err != nil {
			return nil, err
		}
		items[i].Book = book
	}
	return items, nil
}

func (a *OrderAdapter) userByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := a.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, role FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}

func (a *OrderAdapter) bookByID(ctx context.Context, id int64) (*domain.Book, error) {
	var b domain.Book
	err := a.db.QueryRowContext(ctx,
		`SELECT id, title, author, price, quantity, language, category
		 FROM books WHERE id = ?`, id,
	).Scan(&b.ID, &b.Title, &b.Author, &b.Price, &b.Quantity, &b.Language, &b.Category)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query book: %w", err)
	}
	return &b, nil
}
