package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"poke-collect/internal/model"
)

// Common errors for repository operations.
var (
	ErrPlayerNotFound   = errors.New("player not found")
	ErrInsufficientCash = errors.New("insufficient cash")
)

const playerColumns = `
	id, username, cash, experience, level, claimed_level_rewards,
	tower_level, tower_defeats_remaining, tower_last_reset,
	daily_bonus_claimed_at, friends_count, created_at, updated_at`

// PlayerRepository handles player account persistence.
type PlayerRepository struct {
	db Querier
}

// NewPlayerRepository creates a new PlayerRepository instance.
func NewPlayerRepository(db Querier) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *PlayerRepository) WithTx(tx pgx.Tx) *PlayerRepository {
	return &PlayerRepository{db: tx}
}

func scanPlayer(row pgx.Row) (*model.Player, error) {
	var p model.Player
	err := row.Scan(
		&p.ID,
		&p.Username,
		&p.Cash,
		&p.Experience,
		&p.Level,
		&p.ClaimedLevelRewards,
		&p.TowerLevel,
		&p.TowerDefeatsRemaining,
		&p.TowerLastReset,
		&p.DailyBonusClaimedAt,
		&p.FriendsCount,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player: %w", err)
	}
	return &p, nil
}

// Create creates a new player account with a default economy state.
func (r *PlayerRepository) Create(ctx context.Context, username string, initialCash int64, towerDefeats int) (*model.Player, error) {
	query := `
		INSERT INTO players (username, cash, tower_defeats_remaining, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING` + playerColumns

	p, err := scanPlayer(r.db.QueryRow(ctx, query, username, initialCash, towerDefeats))
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return p, nil
}

// GetByID retrieves a player by id.
// Returns ErrPlayerNotFound if the player does not exist.
func (r *PlayerRepository) GetByID(ctx context.Context, playerID int64) (*model.Player, error) {
	query := `SELECT` + playerColumns + ` FROM players WHERE id = $1`
	return scanPlayer(r.db.QueryRow(ctx, query, playerID))
}

// GetForUpdate retrieves a player with a row lock, serializing concurrent
// mutations of the same account within the surrounding transaction.
func (r *PlayerRepository) GetForUpdate(ctx context.Context, playerID int64) (*model.Player, error) {
	query := `SELECT` + playerColumns + ` FROM players WHERE id = $1 FOR UPDATE`
	return scanPlayer(r.db.QueryRow(ctx, query, playerID))
}

// AddCash adjusts a player's cash balance by amount (negative to debit).
// The balance can never go below zero: a debit past zero fails with
// ErrInsufficientCash and leaves the row untouched.
func (r *PlayerRepository) AddCash(ctx context.Context, playerID int64, amount int64) (int64, error) {
	const query = `
		UPDATE players
		SET cash = cash + $2, updated_at = NOW()
		WHERE id = $1 AND cash + $2 >= 0
		RETURNING cash
	`

	var cash int64
	err := r.db.QueryRow(ctx, query, playerID, amount).Scan(&cash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := r.GetByID(ctx, playerID); getErr != nil {
				return 0, getErr
			}
			return 0, ErrInsufficientCash
		}
		return 0, fmt.Errorf("failed to update cash: %w", err)
	}
	return cash, nil
}

// UpdateProgression sets a player's experience total and derived level.
func (r *PlayerRepository) UpdateProgression(ctx context.Context, playerID int64, experience int64, level int) error {
	const query = `
		UPDATE players
		SET experience = $2, level = $3, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, playerID, experience, level)
	if err != nil {
		return fmt.Errorf("failed to update progression: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

// ClaimLevelReward appends a milestone key to the player's claimed set.
// Returns false when the key was already claimed; the check and the append
// are a single statement so the claim is race-free.
func (r *PlayerRepository) ClaimLevelReward(ctx context.Context, playerID int64, key string) (bool, error) {
	const query = `
		UPDATE players
		SET claimed_level_rewards = claimed_level_rewards || to_jsonb($2::text),
		    updated_at = NOW()
		WHERE id = $1 AND NOT claimed_level_rewards ? $2
	`

	tag, err := r.db.Exec(ctx, query, playerID, key)
	if err != nil {
		return false, fmt.Errorf("failed to claim level reward: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ResetTowerBudget restores the daily defeat allotment if the stored reset
// date is before today. Returns true when a reset happened.
func (r *PlayerRepository) ResetTowerBudget(ctx context.Context, playerID int64, allotment int) (bool, error) {
	const query = `
		UPDATE players
		SET tower_defeats_remaining = $2, tower_last_reset = CURRENT_DATE, updated_at = NOW()
		WHERE id = $1 AND tower_last_reset < CURRENT_DATE
	`

	tag, err := r.db.Exec(ctx, query, playerID, allotment)
	if err != nil {
		return false, fmt.Errorf("failed to reset tower budget: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ConsumeTowerDefeat decrements the daily defeat budget by one. Returns
// false when the budget is already exhausted.
func (r *PlayerRepository) ConsumeTowerDefeat(ctx context.Context, playerID int64) (bool, error) {
	const query = `
		UPDATE players
		SET tower_defeats_remaining = tower_defeats_remaining - 1, updated_at = NOW()
		WHERE id = $1 AND tower_defeats_remaining > 0
	`

	tag, err := r.db.Exec(ctx, query, playerID)
	if err != nil {
		return false, fmt.Errorf("failed to consume tower defeat: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// SetTowerLevel advances the player's cleared-floor marker.
func (r *PlayerRepository) SetTowerLevel(ctx context.Context, playerID int64, level int) error {
	const query = `
		UPDATE players
		SET tower_level = $2, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, playerID, level)
	if err != nil {
		return fmt.Errorf("failed to set tower level: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

// ClaimDailyBonus marks today's quest bonus as claimed. Returns false when
// it was already claimed today.
func (r *PlayerRepository) ClaimDailyBonus(ctx context.Context, playerID int64) (bool, error) {
	const query = `
		UPDATE players
		SET daily_bonus_claimed_at = CURRENT_DATE, updated_at = NOW()
		WHERE id = $1
		  AND (daily_bonus_claimed_at IS NULL OR daily_bonus_claimed_at < CURRENT_DATE)
	`

	tag, err := r.db.Exec(ctx, query, playerID)
	if err != nil {
		return false, fmt.Errorf("failed to claim daily bonus: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
