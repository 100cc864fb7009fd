package storage

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/rl1809/bookstore/internal/core/domain"
)

func TestUserAdapter_GetByID(t *testing.T) {
	conn := getMySQLDB(t)
	defer conn.Close()

	ctx := context.Background()
	adapter := NewUserAdapter(conn)
	username := "reader-" + uuid.NewString()[:8]
	userID := seedUser(t, conn, username)

	user, err := adapter.GetByID(ctx, userID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if user == nil {
		t.Fatal("expected a user")
	}
	if user.Username != username || user.Role != domain.RoleCustomer {
		t.Errorf("unexpected user: %+v", user)
	}

	missing, err := adapter.GetByID(ctx, 999999999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown id, got %+v", missing)
	}
}

func TestUserAdapter_GetByUsername(t *testing.T) {
	conn := getMySQLDB(t)
	defer conn.Close()

	ctx := context.Background()
	adapter := NewUserAdapter(conn)
	username := "reader-" + uuid.NewString()[:8]
	userID := seedUser(t, conn, username)

	user, err := adapter.GetByUsername(ctx, username)
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if user == nil || user.ID != userID {
		t.Fatalf("expected user %d, got %+v", userID, user)
	}

	missing, err := adapter.GetByUsername(ctx, "no-such-user")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown username, got %+v", missing)
	}
}
