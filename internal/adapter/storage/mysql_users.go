package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/bookstore/internal/core/domain"
)

type UserAdapter struct {
	db *sql.DB
}

func NewUserAdapter(db *sql.DB) *UserAdapter {
	return &UserAdapter{db: db}
}

func (a *UserAdapter) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return a.scanUser(a.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, role FROM users WHERE id = ?`, id))
}

func (a *UserAdapter) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return a.scanUser(a.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, role FROM users WHERE username = ?`, username))
}

func (a *UserAdapter) scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}
