package profile

import (
	"context"

	"github.com/adhikari-dikshant/kanban/internal/auth"
)

// Status controls whether a profile may enter the dashboards at all.
// Anything other than active blocks access regardless of role.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

// Profile is the local authorization record for an identity-provider
// account. Its existence means the user completed role selection (or was
// invited); its absence is the signal that the selection flow must run.
type Profile struct {
	ID     string // identity-provider user id
	Email  string
	Role   auth.Role
	Status Status
}

// Store persists profiles. Insert must be idempotent on id: concurrent
// callbacks for the same user race to create the row and the uniqueness
// constraint is the only arbiter.
type Store interface {
	// GetByID returns (nil, nil) when no profile exists.
	GetByID(ctx context.Context, id string) (*Profile, error)
	Insert(ctx context.Context, p Profile) error
}
