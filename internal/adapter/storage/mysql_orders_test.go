package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/bookstore/internal/core/domain"
)

func TestOrderAdapter_CreateAndReadBack(t *testing.T) {
	conn := getMySQLDB(t)
	defer conn.Close()

	ctx := context.Background()
	adapter := NewOrderAdapter(conn)

	userID := seedUser(t, conn, "buyer-"+uuid.NewString()[:8])
	bookID := seedBook(t, conn, 9.99, 10)

	order := domain.NewOrder(userID, []domain.OrderItem{
		{BookID: bookID, Quantity: 2, PriceAtOrder: 9.99},
	})

	orderID, err := adapter.Create(ctx, order)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	t.Cleanup(func() {
		conn.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, orderID)
		conn.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, orderID)
	})

	if orderID == 0 {
		t.Fatal("expected a generated order id")
	}
	if order.ID != orderID {
		t.Errorf("expected order.ID set to %d, got %d", orderID, order.ID)
	}
	if order.Items[0].OrderID != orderID {
		t.Errorf("expected item linked to order %d, got %d", orderID, order.Items[0].OrderID)
	}

	items, err := adapter.ItemsByOrder(ctx, orderID)
	if err != nil {
		t.Fatalf("items by order: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Quantity != 2 || items[0].PriceAtOrder != 9.99 {
		t.Errorf("unexpected item: %+v", items[0])
	}
	if items[0].Book == nil || items[0].Book.ID != bookID {
		t.Errorf("expected item hydrated with book %d, got %+v", bookID, items[0].Book)
	}
}

func TestOrderAdapter_ByUserAggregatesTotals(t *testing.T) {
	conn := getMySQLDB(t)
	defer conn.Close()

	ctx := context.Background()
	adapter := NewOrderAdapter(conn)

	userID := seedUser(t, conn, "buyer-"+uuid.NewString()[:8])
	bookA := seedBook(t, conn, 9.99, 10)
	bookB := seedBook(t, conn, 4.50, 10)

	order := domain.NewOrder(userID, []domain.OrderItem{
		{BookID: bookA, Quantity: 2, PriceAtOrder: 9.99},
		{BookID: bookB, Quantity: 3, PriceAtOrder: 4.50},
	})
	orderID, err := adapter.Create(ctx, order)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	t.Cleanup(func() {
		conn.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, orderID)
		conn.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, orderID)
	})

	orders, err := adapter.ByUser(ctx, userID)
	if err != nil {
		t.Fatalf("by user: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}

	got := orders[0]
	if got.TotalQuantity != 5 {
		t.Errorf("expected total quantity 5, got %d", got.TotalQuantity)
	}
	if want := 2*9.99 + 3*4.50; got.TotalPrice != want {
		t.Errorf("expected total price %v, got %v", want, got.TotalPrice)
	}
	if len(got.Items) != 2 {
		t.Errorf("expected 2 items, got %d", len(got.Items))
	}
}

func TestOrderAdapter_RecentReturnsNewestFirst(t *testing.T) {
	conn := getMySQLDB(t)
	defer conn.Close()

	ctx := context.Background()
	adapter := NewOrderAdapter(conn)

	userID := seedUser(t, conn, "buyer-"+uuid.NewString()[:8])
	bookID := seedBook(t, conn, 9.99, 10)

	var orderIDs []int64
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		order := domain.NewOrder(userID, []domain.OrderItem{
			{BookID: bookID, Quantity: 1, PriceAtOrder: 9.99},
		})
		order.OrderDate = base.Add(time.Duration(i) * time.Minute)
		id, err := adapter.Create(ctx, order)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		orderIDs = append(orderIDs, id)
	}
	t.Cleanup(func() {
		for _, id := range orderIDs {
			conn.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, id)
			conn.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
		}
	})

	orders, err := adapter.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].OrderDate.Before(orders[1].OrderDate) {
		t.Error("expected newest order first")
	}
	if orders[0].User == nil || orders[0].User.ID != userID {
		t.Errorf("expected order hydrated with buyer %d, got %+v", userID, orders[0].User)
	}
	if orders[0].TotalQuantity != 1 {
		t.Errorf("expected derived total quantity 1, got %d", orders[0].TotalQuantity)
	}
}

func TestOrderAdapter_RepeatedItemLookupIsStable(t *testing.T) {
	conn := getMySQLDB(t)
	defer conn.Close()

	ctx := context.Background()
	adapter := NewOrderAdapter(conn)

	userID := seedUser(t, conn, "buyer-"+uuid.NewString()[:8])
	bookID := seedBook(t, conn, 9.99, 10)

	order := domain.NewOrder(userID, []domain.OrderItem{
		{BookID: bookID, Quantity: 2, PriceAtOrder: 9.99},
	})
	orderID, err := adapter.Create(ctx, order)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	t.Cleanup(func() {
		conn.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, orderID)
		conn.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, orderID)
	})

	first, err := adapter.ItemsByOrder(ctx, orderID)
	if err != nil {
		t.Fatalf("first lookup: %v", err)
	}
	second, err := adapter.ItemsByOrder(ctx, orderID)
	if err != nil {
		t.Fatalf("second lookup: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("lookups disagree on item count: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID ||
			first[i].Quantity != second[i].Quantity ||
			first[i].PriceAtOrder != second[i].PriceAtOrder {
			t.Errorf("lookup %d not stable: %+v vs %+v", i, first[i], second[i])
		}
	}
}
