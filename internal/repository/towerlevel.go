package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"poke-collect/internal/model"
)

// ErrTowerLevelNotFound indicates an attempt against a floor the catalog
// does not define. Catalog gaps are deployment faults.
var ErrTowerLevelNotFound = errors.New("tower level not found")

// TowerLevelRepository reads the infernal tower floor catalog.
type TowerLevelRepository struct {
	db Querier
}

// NewTowerLevelRepository creates a new TowerLevelRepository instance.
func NewTowerLevelRepository(db Querier) *TowerLevelRepository {
	return &TowerLevelRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *TowerLevelRepository) WithTx(tx pgx.Tx) *TowerLevelRepository {
	return &TowerLevelRepository{db: tx}
}

// GetByLevel retrieves one floor definition.
func (r *TowerLevelRepository) GetByLevel(ctx context.Context, level int) (*model.TowerLevel, error) {
	const query = `
		SELECT level, team_cp, rewards FROM tower_levels
		WHERE level = $1
	`

	var t model.TowerLevel
	err := r.db.QueryRow(ctx, query, level).Scan(&t.Level, &t.TeamCP, &t.Rewards)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", ErrTowerLevelNotFound, level)
		}
		return nil, fmt.Errorf("failed to get tower level: %w", err)
	}
	return &t, nil
}

// Insert adds a floor definition. Used by seeding and tests.
func (r *TowerLevelRepository) Insert(ctx context.Context, t *model.TowerLevel) error {
	const query = `
		INSERT INTO tower_levels (level, team_cp, rewards)
		VALUES ($1, $2, $3)
	`

	if _, err := r.db.Exec(ctx, query, t.Level, t.TeamCP, t.Rewards); err != nil {
		return fmt.Errorf("failed to insert tower level: %w", err)
	}
	return nil
}
