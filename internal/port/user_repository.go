package port

import (
	"context"

	"github.com/rl1809/bookstore/internal/core/domain"
)

type UserRepository interface {
	// GetByID returns nil when no user has the given id.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}
