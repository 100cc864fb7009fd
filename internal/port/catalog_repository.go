package port

import (
	"context"

	"github.com/rl1809/bookstore/internal/core/domain"
)

type CatalogRepository interface {
	// GetBook returns nil when no book has the given id.
	GetBook(ctx context.Context, id int64) (*domain.Book, error)

	ListBooks(ctx context.Context) ([]domain.Book, error)

	AddBook(ctx context.Context, book domain.Book) (int64, error)
}
