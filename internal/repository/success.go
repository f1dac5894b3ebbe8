package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"poke-collect/internal/model"
)

// Success-related errors.
var (
	ErrSuccessNotFound = errors.New("success definition not found")
	ErrUnlockNotFound  = errors.New("success unlock not found")
)

// SuccessRepository handles achievement definitions and per-player unlocks.
type SuccessRepository struct {
	db Querier
}

// NewSuccessRepository creates a new SuccessRepository instance.
func NewSuccessRepository(db Querier) *SuccessRepository {
	return &SuccessRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *SuccessRepository) WithTx(tx pgx.Tx) *SuccessRepository {
	return &SuccessRepository{db: tx}
}

const successColumns = `id, key, type, requirements, reward_cash, reward_xp`

func scanSuccess(row pgx.Row) (*model.SuccessDefinition, error) {
	var d model.SuccessDefinition
	err := row.Scan(&d.ID, &d.Key, &d.Type, &d.Requirements, &d.RewardCash, &d.RewardXP)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// InsertDefinition adds a catalog success. Used by seeding and tests.
func (r *SuccessRepository) InsertDefinition(ctx context.Context, d *model.SuccessDefinition) (*model.SuccessDefinition, error) {
	query := `
		INSERT INTO success_definitions (key, type, requirements, reward_cash, reward_xp)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + successColumns

	out, err := scanSuccess(r.db.QueryRow(ctx, query,
		d.Key, d.Type, d.Requirements, d.RewardCash, d.RewardXP))
	if err != nil {
		return nil, fmt.Errorf("failed to insert success definition: %w", err)
	}
	return out, nil
}

// GetDefinition retrieves one success definition.
func (r *SuccessRepository) GetDefinition(ctx context.Context, successID int64) (*model.SuccessDefinition, error) {
	query := `SELECT ` + successColumns + ` FROM success_definitions WHERE id = $1`

	d, err := scanSuccess(r.db.QueryRow(ctx, query, successID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSuccessNotFound
		}
		return nil, fmt.Errorf("failed to get success definition: %w", err)
	}
	return d, nil
}

// PendingDefinitions lists the definitions the player has not unlocked yet.
func (r *SuccessRepository) PendingDefinitions(ctx context.Context, playerID int64) ([]*model.SuccessDefinition, error) {
	query := `
		SELECT ` + successColumns + `
		FROM success_definitions d
		WHERE NOT EXISTS (
			SELECT 1 FROM success_unlocks u
			WHERE u.success_id = d.id AND u.player_id = $1
		)
		ORDER BY d.id
	`

	rows, err := r.db.Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending successes: %w", err)
	}
	defer rows.Close()

	var defs []*model.SuccessDefinition
	for rows.Next() {
		d, err := scanSuccess(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan success definition: %w", err)
		}
		defs = append(defs, d)
	}
	return defs, rows.Err()
}

// CreateUnlock records that the player satisfied a success. The unique
// constraint makes the grant idempotent; returns false when it already
// existed.
func (r *SuccessRepository) CreateUnlock(ctx context.Context, playerID, successID int64) (bool, error) {
	const query = `
		INSERT INTO success_unlocks (player_id, success_id, unlocked_at, is_claimed)
		VALUES ($1, $2, NOW(), FALSE)
		ON CONFLICT (player_id, success_id) DO NOTHING
	`

	tag, err := r.db.Exec(ctx, query, playerID, successID)
	if err != nil {
		return false, fmt.Errorf("failed to create unlock: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetUnlock retrieves a player's unlock of a success.
func (r *SuccessRepository) GetUnlock(ctx context.Context, playerID, successID int64) (*model.SuccessUnlock, error) {
	const query = `
		SELECT player_id, success_id, unlocked_at, is_claimed, claimed_at
		FROM success_unlocks
		WHERE player_id = $1 AND success_id = $2
	`

	var u model.SuccessUnlock
	err := r.db.QueryRow(ctx, query, playerID, successID).Scan(
		&u.PlayerID, &u.SuccessID, &u.UnlockedAt, &u.IsClaimed, &u.ClaimedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnlockNotFound
		}
		return nil, fmt.Errorf("failed to get unlock: %w", err)
	}
	return &u, nil
}

// MarkClaimed flips is_claimed false→true exactly once. Returns false when
// the unlock is missing or already claimed.
func (r *SuccessRepository) MarkClaimed(ctx context.Context, playerID, successID int64) (bool, error) {
	const query = `
		UPDATE success_unlocks
		SET is_claimed = TRUE, claimed_at = NOW()
		WHERE player_id = $1 AND success_id = $2 AND NOT is_claimed
	`

	tag, err := r.db.Exec(ctx, query, playerID, successID)
	if err != nil {
		return false, fmt.Errorf("failed to mark claimed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
