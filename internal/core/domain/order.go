package domain

import "time"

// OrderItem is a line of a committed order. PriceAtOrder is the catalog
// price captured at checkout time and is never recomputed afterwards.
type OrderItem struct {
	ID           int64   `json:"id"`
	OrderID      int64   `json:"order_id"`
	BookID       int64   `json:"book_id"`
	Quantity     int     `json:"quantity"`
	PriceAtOrder float64 `json:"price_at_order"`
	Book         *Book   `json:"book,omitempty"`
}

func (i OrderItem) Subtotal() float64 {
	return float64(i.Quantity) * i.PriceAtOrder
}

// Order is a customer's completed transaction. ID is zero until the
// repository assigns it on persistence.
type Order struct {
	ID            int64       `json:"id"`
	UserID        int64       `json:"user_id"`
	OrderDate     time.Time   `json:"order_date"`
	Items         []OrderItem `json:"items"`
	TotalQuantity int         `json:"total_quantity"`
	TotalPrice    float64     `json:"total_price"`
	User          *User       `json:"user,omitempty"`
}

func NewOrder(userID int64, items []OrderItem) *Order {
	o := &Order{
		UserID:    userID,
		OrderDate: time.Now(),
		Items:     items,
	}
	o.CalculateTotals()
	return o
}

func (o *Order) CalculateTotals() {
	o.TotalQuantity = 0
	o.TotalPrice = 0
	for _, it := range o.Items {
		o.TotalQuantity += it.Quantity
		o.TotalPrice += it.Subtotal()
	}
}
