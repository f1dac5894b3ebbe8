package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"poke-collect/internal/model"
)

// ErrEntryNotFound is returned when a collection entry does not exist.
var ErrEntryNotFound = errors.New("collection entry not found")

// CollectionRepository handles collection entry ("Pokédex") persistence.
type CollectionRepository struct {
	db Querier
}

// NewCollectionRepository creates a new CollectionRepository instance.
func NewCollectionRepository(db Querier) *CollectionRepository {
	return &CollectionRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *CollectionRepository) WithTx(tx pgx.Tx) *CollectionRepository {
	return &CollectionRepository{db: tx}
}

const entryWithSpeciesColumns = `
	c.id, c.player_id, c.species_id, c.level, c.star, c.is_in_team,
	c.team_position, c.is_favorite, c.hp_left, c.obtained_at,
	s.id, s.name, s.rarity, s.is_shiny, s.hp, s.attack, s.defense, s.types`

func scanEntryWithSpecies(row pgx.Row) (*model.CollectionEntry, error) {
	var e model.CollectionEntry
	var s model.Species
	err := row.Scan(
		&e.ID, &e.PlayerID, &e.SpeciesID, &e.Level, &e.Star, &e.IsInTeam,
		&e.TeamPosition, &e.IsFavorite, &e.HPLeft, &e.ObtainedAt,
		&s.ID, &s.Name, &s.Rarity, &s.IsShiny, &s.HP, &s.Attack, &s.Defense, &s.Types,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to scan collection entry: %w", err)
	}
	e.Species = &s
	return &e, nil
}

// Create materializes a freshly drawn entry for the player.
func (r *CollectionRepository) Create(ctx context.Context, playerID, speciesID int64, hpLeft int) (*model.CollectionEntry, error) {
	const query = `
		INSERT INTO collection_entries
			(player_id, species_id, level, star, is_in_team, is_favorite, hp_left, obtained_at)
		VALUES ($1, $2, 1, 0, FALSE, FALSE, $3, NOW())
		RETURNING id, player_id, species_id, level, star, is_in_team,
		          team_position, is_favorite, hp_left, obtained_at
	`

	var e model.CollectionEntry
	err := r.db.QueryRow(ctx, query, playerID, speciesID, hpLeft).Scan(
		&e.ID, &e.PlayerID, &e.SpeciesID, &e.Level, &e.Star, &e.IsInTeam,
		&e.TeamPosition, &e.IsFavorite, &e.HPLeft, &e.ObtainedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection entry: %w", err)
	}
	return &e, nil
}

// GetByID retrieves one entry with its species joined.
func (r *CollectionRepository) GetByID(ctx context.Context, entryID int64) (*model.CollectionEntry, error) {
	query := `
		SELECT` + entryWithSpeciesColumns + `
		FROM collection_entries c
		JOIN species s ON s.id = c.species_id
		WHERE c.id = $1
	`
	return scanEntryWithSpecies(r.db.QueryRow(ctx, query, entryID))
}

// GetByIDForUpdate retrieves one entry with a row lock on the entry.
func (r *CollectionRepository) GetByIDForUpdate(ctx context.Context, entryID int64) (*model.CollectionEntry, error) {
	query := `
		SELECT` + entryWithSpeciesColumns + `
		FROM collection_entries c
		JOIN species s ON s.id = c.species_id
		WHERE c.id = $1
		FOR UPDATE OF c
	`
	return scanEntryWithSpecies(r.db.QueryRow(ctx, query, entryID))
}

// GetOwned retrieves the given entries if they belong to the player, with
// species joined, locking the entry rows. Missing or foreign ids are simply
// absent from the result; callers compare lengths.
func (r *CollectionRepository) GetOwned(ctx context.Context, playerID int64, entryIDs []int64) ([]*model.CollectionEntry, error) {
	query := `
		SELECT` + entryWithSpeciesColumns + `
		FROM collection_entries c
		JOIN species s ON s.id = c.species_id
		WHERE c.player_id = $1 AND c.id = ANY($2)
		ORDER BY array_position($2, c.id)
		FOR UPDATE OF c
	`

	rows, err := r.db.Query(ctx, query, playerID, entryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get owned entries: %w", err)
	}
	defer rows.Close()

	var entries []*model.CollectionEntry
	for rows.Next() {
		e, err := scanEntryWithSpecies(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}
	return entries, nil
}

// CountBySpecies counts the player's copies of one species.
func (r *CollectionRepository) CountBySpecies(ctx context.Context, playerID, speciesID int64) (int, error) {
	const query = `
		SELECT COUNT(*) FROM collection_entries
		WHERE player_id = $1 AND species_id = $2
	`

	var count int
	if err := r.db.QueryRow(ctx, query, playerID, speciesID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count species copies: %w", err)
	}
	return count, nil
}

// CountAll counts every entry the player owns.
func (r *CollectionRepository) CountAll(ctx context.Context, playerID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM collection_entries WHERE player_id = $1`

	var count int
	if err := r.db.QueryRow(ctx, query, playerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return count, nil
}

// CountDistinctSpecies counts how many different species the player owns.
func (r *CollectionRepository) CountDistinctSpecies(ctx context.Context, playerID int64) (int, error) {
	const query = `
		SELECT COUNT(DISTINCT species_id) FROM collection_entries
		WHERE player_id = $1
	`

	var count int
	if err := r.db.QueryRow(ctx, query, playerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count distinct species: %w", err)
	}
	return count, nil
}

// CountByRarity counts owned entries of a rarity, optionally shiny-only.
func (r *CollectionRepository) CountByRarity(ctx context.Context, playerID int64, rarity string, shinyOnly bool) (int, error) {
	const query = `
		SELECT COUNT(*)
		FROM collection_entries c
		JOIN species s ON s.id = c.species_id
		WHERE c.player_id = $1 AND s.rarity = $2 AND ($3 = FALSE OR s.is_shiny)
	`

	var count int
	if err := r.db.QueryRow(ctx, query, playerID, rarity, shinyOnly).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count by rarity: %w", err)
	}
	return count, nil
}

// DeleteByIDs removes the given entries of the player, returning how many
// rows were deleted.
func (r *CollectionRepository) DeleteByIDs(ctx context.Context, playerID int64, entryIDs []int64) (int64, error) {
	const query = `
		DELETE FROM collection_entries
		WHERE player_id = $1 AND id = ANY($2)
	`

	tag, err := r.db.Exec(ctx, query, playerID, entryIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to delete entries: %w", err)
	}
	return tag.RowsAffected(), nil
}

// BusyEntryIDs returns which of the given entries have an active, unclaimed
// expedition participation and are therefore ineligible elsewhere.
func (r *CollectionRepository) BusyEntryIDs(ctx context.Context, entryIDs []int64) ([]int64, error) {
	const query = `
		SELECT DISTINCT entry_id FROM expedition_participants
		WHERE entry_id = ANY($1) AND claimed_at IS NULL
	`

	rows, err := r.db.Query(ctx, query, entryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query busy entries: %w", err)
	}
	defer rows.Close()

	var busy []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan busy entry: %w", err)
		}
		busy = append(busy, id)
	}
	return busy, rows.Err()
}

// TeamPower sums the combat power of the player's in-team entries. CP per
// entry scales base stats by level and a 10% bonus per star.
func (r *CollectionRepository) TeamPower(ctx context.Context, playerID int64) (int64, error) {
	const query = `
		SELECT COALESCE(SUM((s.hp + s.attack + s.defense) * c.level * (10 + c.star) / 10), 0)
		FROM collection_entries c
		JOIN species s ON s.id = c.species_id
		WHERE c.player_id = $1 AND c.is_in_team
	`

	var power int64
	if err := r.db.QueryRow(ctx, query, playerID).Scan(&power); err != nil {
		return 0, fmt.Errorf("failed to compute team power: %w", err)
	}
	return power, nil
}

// SetStar writes an entry's upgrade rank.
func (r *CollectionRepository) SetStar(ctx context.Context, playerID, entryID int64, star int) error {
	const query = `
		UPDATE collection_entries
		SET star = $3
		WHERE id = $2 AND player_id = $1
	`

	tag, err := r.db.Exec(ctx, query, playerID, entryID, star)
	if err != nil {
		return fmt.Errorf("failed to set star: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// OccupantAtPosition returns the id of the entry holding a team position,
// or 0 when the position is free.
func (r *CollectionRepository) OccupantAtPosition(ctx context.Context, playerID int64, position int) (int64, error) {
	const query = `
		SELECT id FROM collection_entries
		WHERE player_id = $1 AND team_position = $2
	`

	var id int64
	err := r.db.QueryRow(ctx, query, playerID, position).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up team position: %w", err)
	}
	return id, nil
}

// SetTeamMembership places an entry on or off the team. A nil position
// removes it from the team.
func (r *CollectionRepository) SetTeamMembership(ctx context.Context, playerID, entryID int64, position *int) error {
	const query = `
		UPDATE collection_entries
		SET is_in_team = $3, team_position = $4
		WHERE id = $2 AND player_id = $1
	`

	tag, err := r.db.Exec(ctx, query, playerID, entryID, position != nil, position)
	if err != nil {
		return fmt.Errorf("failed to set team membership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}
