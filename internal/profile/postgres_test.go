package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adhikari-dikshant/kanban/internal/auth"
)

// The store validates ids before touching the database, so the error paths
// are testable without a live connection.

func TestGetByIDRejectsMalformedID(t *testing.T) {
	store := NewPostgresStore(nil)

	_, err := store.GetByID(context.Background(), "not-a-uuid")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid user id")
}

func TestInsertRejectsMalformedID(t *testing.T) {
	store := NewPostgresStore(nil)

	err := store.Insert(context.Background(), Profile{
		ID:    "not-a-uuid",
		Email: "a@x.com",
		Role:  auth.RoleUser,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid user id")
}
