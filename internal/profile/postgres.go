package profile

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/adhikari-dikshant/kanban/internal/auth"
)

const migration = `
CREATE TABLE IF NOT EXISTS profiles (
    id uuid PRIMARY KEY,
    email text NOT NULL,
    role text NOT NULL,
    status text NOT NULL DEFAULT 'active',
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);
`

// RunMigration creates the profiles table. The id primary key doubles as
// the uniqueness constraint that arbitrates racing inserts.
func RunMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, migration)
	return err
}

// PostgresStore is the canonical profile store.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*Profile, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("profile: invalid user id: %w", err)
	}

	var p Profile
	var role string
	var status string

	err = s.db.QueryRowContext(ctx, `
		SELECT id, email, role, status
		FROM profiles
		WHERE id = $1
	`, userID).Scan(&p.ID, &p.Email, &role, &status)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("profile: select by id: %w", err)
	}

	p.Role = auth.Role(role)
	p.Status = Status(status)
	return &p, nil
}

func (s *PostgresStore) Insert(ctx context.Context, p Profile) error {
	userID, err := uuid.Parse(p.ID)
	if err != nil {
		return fmt.Errorf("profile: invalid user id: %w", err)
	}

	// Duplicate inserts are a silent no-op: the first writer wins and
	// concurrent callbacks converge on the same row.
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, email, role, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`, userID, p.Email, string(p.Role), string(p.Status))

	if err != nil {
		return fmt.Errorf("profile: insert: %w", err)
	}
	return nil
}
