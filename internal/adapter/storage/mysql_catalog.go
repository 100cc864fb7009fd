package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/bookstore/internal/core/domain"
)

// CatalogAdapter covers the book reads the admin views need plus AddBook.
// Stock is only ever mutated through the InventoryAdapter.
type CatalogAdapter struct {
	db *sql.DB
}

func NewCatalogAdapter(db *sql.DB) *CatalogAdapter {
	return &CatalogAdapter{db: db}
}

func (a *CatalogAdapter) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
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

func (a *CatalogAdapter) ListBooks(ctx context.Context) ([]domain.Book, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, title, author, price, quantity, language, category
		 FROM books ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("select books: %w", err)
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		var b domain.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Price, &b.Quantity, &b.Language, &b.Category); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return books, nil
}

func (a *CatalogAdapter) AddBook(ctx context.Context, book domain.Book) (int64, error) {
	result, err := a.db.ExecContext(ctx,
		`INSERT INTO books (title, author, price, quantity, language, category)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		book.Title, book.Author, book.Price, book.Quantity, book.Language, book.Category,
	)
	if err != nil {
		return 0, fmt.Errorf("insert book: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("book id: %w", err)
	}
	return id, nil
}
