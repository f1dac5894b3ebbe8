package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"poke-collect/internal/model"
)

// InventoryRepository handles item inventory persistence. Quantities are
// bounded to [0, 999]; additions clamp at the ceiling and consumption never
// drives a line negative.
type InventoryRepository struct {
	db Querier
}

// NewInventoryRepository creates a new InventoryRepository instance.
func NewInventoryRepository(db Querier) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *InventoryRepository) WithTx(tx pgx.Tx) *InventoryRepository {
	return &InventoryRepository{db: tx}
}

// Quantity returns the player's current quantity of an item; a missing
// line counts as zero.
func (r *InventoryRepository) Quantity(ctx context.Context, playerID int64, itemSlug string) (int, error) {
	const query = `
		SELECT quantity FROM inventory_lines
		WHERE player_id = $1 AND item_slug = $2
	`

	var quantity int
	err := r.db.QueryRow(ctx, query, playerID, itemSlug).Scan(&quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get quantity: %w", err)
	}
	return quantity, nil
}

// Add credits quantity of an item, clamping at the 999 ceiling.
func (r *InventoryRepository) Add(ctx context.Context, playerID int64, itemSlug string, quantity int) error {
	if quantity <= 0 {
		return nil
	}

	const query = `
		INSERT INTO inventory_lines (player_id, item_slug, quantity, updated_at)
		VALUES ($1, $2, LEAST($3, 999), NOW())
		ON CONFLICT (player_id, item_slug)
		DO UPDATE SET quantity = LEAST(inventory_lines.quantity + $3, 999), updated_at = NOW()
	`

	if _, err := r.db.Exec(ctx, query, playerID, itemSlug, quantity); err != nil {
		return fmt.Errorf("failed to add item: %w", err)
	}
	return nil
}

// Consume debits quantity of an item. Returns false without mutating when
// the line holds fewer than quantity.
func (r *InventoryRepository) Consume(ctx context.Context, playerID int64, itemSlug string, quantity int) (bool, error) {
	const query = `
		UPDATE inventory_lines
		SET quantity = quantity - $3, updated_at = NOW()
		WHERE player_id = $1 AND item_slug = $2 AND quantity >= $3
	`

	tag, err := r.db.Exec(ctx, query, playerID, itemSlug, quantity)
	if err != nil {
		return false, fmt.Errorf("failed to consume item: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Lines returns every non-empty inventory line of the player.
func (r *InventoryRepository) Lines(ctx context.Context, playerID int64) ([]model.InventoryLine, error) {
	const query = `
		SELECT player_id, item_slug, quantity, updated_at
		FROM inventory_lines
		WHERE player_id = $1 AND quantity > 0
		ORDER BY item_slug
	`

	rows, err := r.db.Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	defer rows.Close()

	var lines []model.InventoryLine
	for rows.Next() {
		var line model.InventoryLine
		if err := rows.Scan(&line.PlayerID, &line.ItemSlug, &line.Quantity, &line.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan inventory line: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
