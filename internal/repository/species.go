package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"poke-collect/internal/model"
)

// ErrNoSpeciesForRarity indicates a broken catalog: a rarity was drawn for
// which no species exists. This is a deployment fault, never substituted.
var ErrNoSpeciesForRarity = errors.New("no species exists for drawn rarity")

// SpeciesRepository reads the immutable species catalog.
type SpeciesRepository struct {
	db Querier
}

// NewSpeciesRepository creates a new SpeciesRepository instance.
func NewSpeciesRepository(db Querier) *SpeciesRepository {
	return &SpeciesRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *SpeciesRepository) WithTx(tx pgx.Tx) *SpeciesRepository {
	return &SpeciesRepository{db: tx}
}

const speciesColumns = `id, name, rarity, is_shiny, hp, attack, defense, types`

func scanSpecies(row pgx.Row) (*model.Species, error) {
	var s model.Species
	err := row.Scan(&s.ID, &s.Name, &s.Rarity, &s.IsShiny, &s.HP, &s.Attack, &s.Defense, &s.Types)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByID retrieves one species.
func (r *SpeciesRepository) GetByID(ctx context.Context, speciesID int64) (*model.Species, error) {
	query := `SELECT ` + speciesColumns + ` FROM species WHERE id = $1`

	s, err := scanSpecies(r.db.QueryRow(ctx, query, speciesID))
	if err != nil {
		return nil, fmt.Errorf("failed to get species: %w", err)
	}
	return s, nil
}

// RandomByRarity picks one species uniformly among the rows of a rarity.
// Shiny variants are separate catalog rows, so they participate in the
// uniform pick like any other. An empty rarity is a catalog fault.
func (r *SpeciesRepository) RandomByRarity(ctx context.Context, rarity string) (*model.Species, error) {
	query := `
		SELECT ` + speciesColumns + `
		FROM species
		WHERE rarity = $1
		ORDER BY random()
		LIMIT 1
	`

	s, err := scanSpecies(r.db.QueryRow(ctx, query, rarity))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNoSpeciesForRarity, rarity)
		}
		return nil, fmt.Errorf("failed to pick species: %w", err)
	}
	return s, nil
}

// Insert adds a catalog row. Used by seeding and tests.
func (r *SpeciesRepository) Insert(ctx context.Context, s *model.Species) (*model.Species, error) {
	query := `
		INSERT INTO species (name, rarity, is_shiny, hp, attack, defense, types)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + speciesColumns

	out, err := scanSpecies(r.db.QueryRow(ctx, query,
		s.Name, s.Rarity, s.IsShiny, s.HP, s.Attack, s.Defense, s.Types))
	if err != nil {
		return nil, fmt.Errorf("failed to insert species: %w", err)
	}
	return out, nil
}
