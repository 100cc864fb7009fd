package storage

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	_ "github.com/go-sql-driver/mysql"

	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/db"
)

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/bookstore?parseTime=true&multiStatements=true"
	}

	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := conn.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.RunMigrations(conn); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}
	return conn
}

func seedBook(t *testing.T, conn *sql.DB, price float64, qty int) int64 {
	t.Helper()
	res, err := conn.ExecContext(context.Background(),
		`INSERT INTO books (title, author, price, quantity, language, category)
		 VALUES ('Test Book', 'Test Author', ?, ?, 'EN', 'FICTION')`, price, qty)
	if err != nil {
		t.Fatalf("seed book: %v", err)
	}
	id, _ := res.LastInsertId()
	t.Cleanup(func() {
		conn.ExecContext(context.Background(), `DELETE FROM order_items WHERE book_id = ?`, id)
		conn.ExecContext(context.Background(), `DELETE FROM books WHERE id = ?`, id)
	})
	return id
}

func seedUser(t *testing.T, conn *sql.DB, username string) int64 {
	t.Helper()
	res, err := conn.ExecContext(context.Background(),
		`INSERT INTO users (username, email, password_hash, role)
		 VALUES (?, ?, 'x', 'customer')`, username, username+"@example.com")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	id, _ := res.LastInsertId()
	t.Cleanup(func() {
		conn.ExecContext(context.Background(), `DELETE FROM users WHERE id = ?`, id)
	})
	return id
}

func bookQuantity(t *testing.T, conn *sql.DB, id int64) int {
	t.Helper()
	var qty int
	if err := conn.QueryRowContext(context.Background(),
		`SELECT quantity FROM books WHERE id = ?`, id).Scan(&qty); err != nil {
		t.Fatalf("query quantity: %v", err)
	}
	return qty
}

func TestReservationScope_CommitDecrements(t *testing.T) {
	conn := getMySQLDB(t)
	defer conn.Close()

	ctx := context.Background()
	adapter := NewInventoryAdapter(conn)
	bookID := seedBook(t, conn, 9.99, 10)

	scope, err := adapter.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	ok, err := scope.CheckAvailable(ctx, bookID, 3)
	if err != nil {
		t.Fatalf("check available: %v", err)
	}
	if !ok {
		t.Fatal("expected stock to be available")
	}

	price, err := scope.UnitPrice(ctx, bookID)
	if err != nil {
		t.Fatalf("unit price: %v", err)
	}
	if price != 9.99 {
		t.Errorf("expected price 9.99, got %v", price)
	}

	rows, err := scope.Reserve(ctx, bookID, 3)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected 1 row affected, got %d", rows)
	}

	if err := scope.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if got := bookQuantity(t, conn, bookID); got != 7 {
		t.Errorf("expected quantity 7, got %d", got)
	}
}

func TestReservationScope_RollbackLeavesStockUntouched(t *testing.T) {
	conn := getMySQLDB(t)
	defer conn.Close()

	ctx := context.Background()
	adapter := NewInventoryAdapter(conn)
	bookID := seedBook(t, conn, 9.99, 10)

	scope, err := adapter.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	if _, err := scope.Reserve(ctx, bookID, 4); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := scope.Rollback(); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	if got := bookQuantity(t, conn, bookID); got != 10 {
		t.Errorf("expected quantity 10 after rollback, got %d", got)
	}
}

func TestReservationScope_ReserveInsufficientStock(t *testing.T) {
	conn := getMySQLDB(t)
	defer conn.Close()

	ctx := context.Background()
	adapter := NewInventoryAdapter(conn)
	bookID := seedBook(t, conn, 9.99, 2)

	scope, err := adapter.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer scope.Rollback()

	ok, err := scope.CheckAvailable(ctx, bookID, 3)
	if err != nil {
		t.Fatalf("check available: %v", err)
	}
	if ok {
		t.Error("expected availability check to fail")
	}

	rows, err := scope.Reserve(ctx, bookID, 3)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if rows != 0 {
		t.Errorf("expected 0 rows affected, got %d", rows)
	}

	if err := scope.Rollback(); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	if got := bookQuantity(t, conn, bookID); got != 2 {
		t.Errorf("expected quantity 2, got %d", got)
	}
}

func TestReservationScope_UnknownBook(t *testing.T) {
	conn := getMySQLDB(t)
	defer conn.Close()

	ctx := context.Background()
	adapter := NewInventoryAdapter(conn)

	scope, err := adapter.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer scope.Rollback()

	ok, err := scope.CheckAvailable(ctx, 999999999, 1)
	if err != nil {
		t.Fatalf("check available: %v", err)
	}
	if ok {
		t.Error("expected availability check to fail for unknown book")
	}

	rows, err := scope.Reserve(ctx, 999999999, 1)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if rows != 0 {
		t.Errorf("expected 0 rows affected, got %d", rows)
	}
}

func TestRestore_AddsStockBack(t *testing.T) {
	conn := getMySQLDB(t)
	defer conn.Close()

	ctx := context.Background()
	adapter := NewInventoryAdapter(conn)
	bookID := seedBook(t, conn, 9.99, 5)

	err := adapter.Restore(ctx, []domain.CartLine{{BookID: bookID, Quantity: 3}})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got := bookQuantity(t, conn, bookID); got != 8 {
		t.Errorf("expected quantity 8, got %d", got)
	}
}

func TestReserve_ConcurrentNeverOversells(t *testing.T) {
	conn := getMySQLDB(t)
	defer conn.Close()

	ctx := context.Background()
	adapter := NewInventoryAdapter(conn)

	initialStock := 20
	totalRequests := 50
	bookID := seedBook(t, conn, 9.99, initialStock)

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			scope, err := adapter.Begin(ctx)
			if err != nil {
				t.Errorf("begin: %v", err)
				return
			}
			rows, err := scope.Reserve(ctx, bookID, 1)
			if err != nil {
				t.Errorf("reserve: %v", err)
				scope.Rollback()
				return
			}
			if rows == 0 {
				scope.Rollback()
				return
			}
			if err := scope.Commit(); err != nil {
				t.Errorf("commit: %v", err)
				return
			}
			successCount.Add(1)
		}()
	}
	wg.Wait()

	if successCount.Load() != int32(initialStock) {
		t.Errorf("expected %d successful reservations, got %d", initialStock, successCount.Load())
	}
	if got := bookQuantity(t, conn, bookID); got != 0 {
		t.Errorf("expected quantity 0, got %d", got)
	}
}
