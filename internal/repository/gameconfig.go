package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ErrConfigNotFound is returned when no value is stored for a
// (category, key) pair; consumers fall back to compiled defaults.
var ErrConfigNotFound = errors.New("configuration value not found")

// GameConfigRepository reads and writes the key-value game configuration
// store (category/key → JSON value).
type GameConfigRepository struct {
	db Querier
}

// NewGameConfigRepository creates a new GameConfigRepository instance.
func NewGameConfigRepository(db Querier) *GameConfigRepository {
	return &GameConfigRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *GameConfigRepository) WithTx(tx pgx.Tx) *GameConfigRepository {
	return &GameConfigRepository{db: tx}
}

// Get returns the raw JSON value stored for (category, key).
func (r *GameConfigRepository) Get(ctx context.Context, category, key string) ([]byte, error) {
	const query = `
		SELECT value FROM game_configurations
		WHERE category = $1 AND key = $2
	`

	var value []byte
	err := r.db.QueryRow(ctx, query, category, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to get configuration: %w", err)
	}
	return value, nil
}

// Upsert stores a JSON value for (category, key).
func (r *GameConfigRepository) Upsert(ctx context.Context, category, key string, value []byte) error {
	const query = `
		INSERT INTO game_configurations (category, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (category, key)
		DO UPDATE SET value = $3, updated_at = NOW()
	`

	if _, err := r.db.Exec(ctx, query, category, key, value); err != nil {
		return fmt.Errorf("failed to upsert configuration: %w", err)
	}
	return nil
}
