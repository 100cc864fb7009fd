package domain

import (
	"errors"
	"sort"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// CartLine is one (book, desired quantity) pair of a cart snapshot.
type CartLine struct {
	BookID   int64 `json:"book_id"`
	Quantity int   `json:"quantity"`
}

// CartSnapshot is the immutable book->quantity mapping handed over by the
// cart collaborator at checkout time. Lines are kept sorted by book id so
// every reservation walks books in the same order; concurrent checkouts
// that lock rows then cannot deadlock against each other.
type CartSnapshot struct {
	lines []CartLine
}

func NewCartSnapshot(items map[int64]int) (CartSnapshot, error) {
	if len(items) == 0 {
		return CartSnapshot{}, ErrEmptyCart
	}
	lines := make([]CartLine, 0, len(items))
	for bookID, qty := range items {
		if qty <= 0 {
			return CartSnapshot{}, ErrInvalidQuantity
		}
		lines = append(lines, CartLine{BookID: bookID, Quantity: qty})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].BookID < lines[j].BookID })
	return CartSnapshot{lines: lines}, nil
}

func (c CartSnapshot) Len() int { return len(c.lines) }

// Lines returns a copy; the snapshot itself stays immutable.
func (c CartSnapshot) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}
