package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ganot/showcase/internal/repository"
)

// PreferenceRepository implements repository.PreferenceRepository for SQLite
type PreferenceRepository struct {
	db *DB
}

// NewPreferenceRepository creates a new PreferenceRepository
func NewPreferenceRepository(db *DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Get returns the stored value for key
func (r *PreferenceRepository) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", repository.ErrInvalidInput
	}

	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get preference: %w", err)
	}

	return value, nil
}

// Set durably writes value under key, replacing any previous value
func (r *PreferenceRepository) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return repository.ErrInvalidInput
	}

	query := `
		INSERT INTO preferences (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, key, value, time.Now()); err != nil {
		return fmt.Errorf("failed to set preference: %w", err)
	}

	return nil
}
