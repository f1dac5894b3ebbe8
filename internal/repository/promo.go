package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"poke-collect/internal/model"
)

// ErrPromoNotFound is returned when a promo code does not exist or is
// inactive.
var ErrPromoNotFound = errors.New("promo code not found")

// PromoRepository handles promo codes and their per-player redemption log.
type PromoRepository struct {
	db Querier
}

// NewPromoRepository creates a new PromoRepository instance.
func NewPromoRepository(db Querier) *PromoRepository {
	return &PromoRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *PromoRepository) WithTx(tx pgx.Tx) *PromoRepository {
	return &PromoRepository{db: tx}
}

// GetActive retrieves an active promo code.
func (r *PromoRepository) GetActive(ctx context.Context, code string) (*model.PromoCode, error) {
	const query = `
		SELECT code, rewards, active FROM promo_codes
		WHERE code = $1 AND active
	`

	var p model.PromoCode
	err := r.db.QueryRow(ctx, query, code).Scan(&p.Code, &p.Rewards, &p.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPromoNotFound
		}
		return nil, fmt.Errorf("failed to get promo code: %w", err)
	}
	return &p, nil
}

// Insert adds a promo code. Used by seeding and tests.
func (r *PromoRepository) Insert(ctx context.Context, p *model.PromoCode) error {
	const query = `
		INSERT INTO promo_codes (code, rewards, active)
		VALUES ($1, $2, $3)
	`

	if _, err := r.db.Exec(ctx, query, p.Code, p.Rewards, p.Active); err != nil {
		return fmt.Errorf("failed to insert promo code: %w", err)
	}
	return nil
}

// Redeem records the player's redemption. Returns false when the player
// already redeemed this code.
func (r *PromoRepository) Redeem(ctx context.Context, playerID int64, code string) (bool, error) {
	const query = `
		INSERT INTO promo_redemptions (player_id, code, redeemed_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (player_id, code) DO NOTHING
	`

	tag, err := r.db.Exec(ctx, query, playerID, code)
	if err != nil {
		return false, fmt.Errorf("failed to redeem promo code: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
