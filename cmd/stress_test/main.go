package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/bookstore/internal/adapter/storage"
	"github.com/rl1809/bookstore/internal/config"
	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/core/service"
	"github.com/rl1809/bookstore/internal/db"
	"github.com/rl1809/bookstore/internal/logging"
)

const (
	initialStock  = 20
	totalRequests = 50
	queueSize     = 100
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	mysqlDB, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("failed to open mysql: %v", err)
	}
	defer mysqlDB.Close()
	if err := mysqlDB.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}
	if err := db.RunMigrations(mysqlDB); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer rdb.Close()

	// Seed a buyer and a book with finite stock
	userRes, err := mysqlDB.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, role) VALUES (?, ?, ?, 'customer')`,
		"stress-"+uuid.NewString()[:8], "stress@example.com", "x")
	if err != nil {
		log.Fatalf("seed user: %v", err)
	}
	userID, _ := userRes.LastInsertId()

	bookRes, err := mysqlDB.ExecContext(ctx,
		`INSERT INTO books (title, author, price, quantity, language, category)
		 VALUES ('Stress Test Book', 'Nobody', 9.99, ?, 'EN', 'FICTION')`, initialStock)
	if err != nil {
		log.Fatalf("seed book: %v", err)
	}
	bookID, _ := bookRes.LastInsertId()

	inventory := storage.NewInventoryAdapter(mysqlDB)
	orders := storage.NewOrderAdapter(mysqlDB)
	cache := storage.NewRedisAdapter(rdb)
	checkout := service.NewCheckoutService(inventory, orders, cache, logging.New("stress-test"), queueSize)
	defer checkout.Close()

	var successCount, stockFailCount, otherFailCount atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			cart, err := domain.NewCartSnapshot(map[int64]int{bookID: 1})
			if err != nil {
				log.Fatalf("build cart: %v", err)
			}
			_, err = checkout.Checkout(ctx, service.CheckoutRequest{
				RequestID: uuid.NewString(),
				UserID:    userID,
				Cart:      cart,
			})
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, service.ErrInsufficientStock), errors.Is(err, service.ErrReservationRace):
				stockFailCount.Add(1)
			default:
				otherFailCount.Add(1)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	success := successCount.Load()
	stockFail := stockFailCount.Load()
	otherFail := otherFailCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Initial Stock:    %d\n", initialStock)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Out of Stock:     %d\n", stockFail)
	fmt.Printf("Other Failures:   %d\n", otherFail)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if success == initialStock && stockFail == totalRequests-initialStock {
		fmt.Printf("PASS: Exactly %d orders succeeded, %d rejected\n", initialStock, totalRequests-initialStock)
	} else {
		fmt.Printf("FAIL: Expected %d success/%d rejected, got %d/%d\n",
			initialStock, totalRequests-initialStock, success, stockFail)
	}

	var finalStock int
	mysqlDB.QueryRowContext(ctx, `SELECT quantity FROM books WHERE id = ?`, bookID).Scan(&finalStock)
	fmt.Printf("Final Stock: %d\n", finalStock)

	var orderCount int
	mysqlDB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM order_items WHERE book_id = ?`, bookID).Scan(&orderCount)
	fmt.Printf("Committed Orders: %d\n", orderCount)

	if finalStock == 0 && orderCount == initialStock {
		fmt.Println("PASS: Stock depleted to 0 with matching order count")
	} else {
		fmt.Println("FAIL: Stock and order count do not match reservations")
	}
}
