package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// migration is one ordered schema step. Every statement is idempotent so
// Migrate can run at every startup.
type migration struct {
	name string
	stmt string
}

var migrations = []migration{
	{
		name: "players table",
		stmt: `
			CREATE TABLE IF NOT EXISTS players (
				id BIGSERIAL PRIMARY KEY,
				username VARCHAR(255) NOT NULL UNIQUE,
				cash BIGINT NOT NULL DEFAULT 0 CHECK (cash >= 0),
				experience BIGINT NOT NULL DEFAULT 0,
				level INT NOT NULL DEFAULT 1,
				claimed_level_rewards JSONB NOT NULL DEFAULT '[]',
				tower_level INT NOT NULL DEFAULT 1,
				tower_defeats_remaining INT NOT NULL DEFAULT 3,
				tower_last_reset DATE NOT NULL DEFAULT CURRENT_DATE,
				daily_bonus_claimed_at DATE,
				friends_count INT NOT NULL DEFAULT 0,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
		`,
	},
	{
		name: "species catalog",
		stmt: `
			CREATE TABLE IF NOT EXISTS species (
				id BIGSERIAL PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				rarity VARCHAR(20) NOT NULL,
				is_shiny BOOLEAN NOT NULL DEFAULT FALSE,
				hp INT NOT NULL DEFAULT 0,
				attack INT NOT NULL DEFAULT 0,
				defense INT NOT NULL DEFAULT 0,
				types TEXT[] NOT NULL DEFAULT '{}'
			);
			CREATE INDEX IF NOT EXISTS idx_species_rarity ON species(rarity);
		`,
	},
	{
		name: "collection entries",
		stmt: `
			CREATE TABLE IF NOT EXISTS collection_entries (
				id BIGSERIAL PRIMARY KEY,
				player_id BIGINT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
				species_id BIGINT NOT NULL REFERENCES species(id),
				level INT NOT NULL DEFAULT 1,
				star INT NOT NULL DEFAULT 0 CHECK (star >= 0 AND star <= 6),
				is_in_team BOOLEAN NOT NULL DEFAULT FALSE,
				team_position INT,
				is_favorite BOOLEAN NOT NULL DEFAULT FALSE,
				hp_left INT NOT NULL DEFAULT 0,
				obtained_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_entries_player ON collection_entries(player_id);
			CREATE INDEX IF NOT EXISTS idx_entries_player_species ON collection_entries(player_id, species_id);
			CREATE UNIQUE INDEX IF NOT EXISTS idx_entries_team_position ON collection_entries(player_id, team_position) WHERE team_position IS NOT NULL;
		`,
	},
	{
		name: "inventory lines",
		stmt: `
			CREATE TABLE IF NOT EXISTS inventory_lines (
				player_id BIGINT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
				item_slug VARCHAR(50) NOT NULL,
				quantity INT NOT NULL DEFAULT 0 CHECK (quantity >= 0 AND quantity <= 999),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				PRIMARY KEY (player_id, item_slug)
			);
		`,
	},
	{
		name: "expedition tables",
		stmt: `
			CREATE TABLE IF NOT EXISTS expedition_templates (
				id BIGSERIAL PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				rarity VARCHAR(20) NOT NULL,
				duration_minutes INT NOT NULL,
				requirements JSONB NOT NULL DEFAULT '[]',
				rewards JSONB NOT NULL DEFAULT '[]'
			);
			CREATE TABLE IF NOT EXISTS expedition_assignments (
				id BIGSERIAL PRIMARY KEY,
				player_id BIGINT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
				template_id BIGINT NOT NULL REFERENCES expedition_templates(id),
				assigned_date DATE NOT NULL,
				status VARCHAR(20) NOT NULL,
				started_at TIMESTAMPTZ,
				ends_at TIMESTAMPTZ,
				UNIQUE (player_id, template_id)
			);
			CREATE TABLE IF NOT EXISTS expedition_participants (
				id BIGSERIAL PRIMARY KEY,
				assignment_id BIGINT NOT NULL,
				entry_id BIGINT NOT NULL REFERENCES collection_entries(id) ON DELETE CASCADE,
				started_at TIMESTAMPTZ NOT NULL,
				ends_at TIMESTAMPTZ NOT NULL,
				claimed_at TIMESTAMPTZ
			);
			CREATE INDEX IF NOT EXISTS idx_participants_entry ON expedition_participants(entry_id) WHERE claimed_at IS NULL;
			CREATE INDEX IF NOT EXISTS idx_participants_assignment ON expedition_participants(assignment_id);
			CREATE TABLE IF NOT EXISTS expedition_completions (
				player_id BIGINT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
				template_id BIGINT NOT NULL REFERENCES expedition_templates(id),
				completed_date DATE NOT NULL,
				PRIMARY KEY (player_id, template_id, completed_date)
			);
		`,
	},
	{
		name: "tower levels",
		stmt: `
			CREATE TABLE IF NOT EXISTS tower_levels (
				level INT PRIMARY KEY,
				team_cp BIGINT NOT NULL,
				rewards JSONB NOT NULL DEFAULT '[]'
			);
		`,
	},
	{
		name: "success tables",
		stmt: `
			CREATE TABLE IF NOT EXISTS success_definitions (
				id BIGSERIAL PRIMARY KEY,
				key VARCHAR(100) NOT NULL UNIQUE,
				type VARCHAR(30) NOT NULL,
				requirements JSONB NOT NULL DEFAULT '{}',
				reward_cash BIGINT NOT NULL DEFAULT 0,
				reward_xp BIGINT NOT NULL DEFAULT 0
			);
			CREATE TABLE IF NOT EXISTS success_unlocks (
				player_id BIGINT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
				success_id BIGINT NOT NULL REFERENCES success_definitions(id) ON DELETE CASCADE,
				unlocked_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				is_claimed BOOLEAN NOT NULL DEFAULT FALSE,
				claimed_at TIMESTAMPTZ,
				PRIMARY KEY (player_id, success_id)
			);
		`,
	},
	{
		name: "promo tables",
		stmt: `
			CREATE TABLE IF NOT EXISTS promo_codes (
				code VARCHAR(50) PRIMARY KEY,
				rewards JSONB NOT NULL DEFAULT '[]',
				active BOOLEAN NOT NULL DEFAULT TRUE
			);
			CREATE TABLE IF NOT EXISTS promo_redemptions (
				player_id BIGINT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
				code VARCHAR(50) NOT NULL REFERENCES promo_codes(code),
				redeemed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				PRIMARY KEY (player_id, code)
			);
		`,
	},
	{
		name: "game configuration store",
		stmt: `
			CREATE TABLE IF NOT EXISTS game_configurations (
				category VARCHAR(50) NOT NULL,
				key VARCHAR(50) NOT NULL,
				value JSONB NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				PRIMARY KEY (category, key)
			);
		`,
	},
}

// Migrate applies the database schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, m := range migrations {
		if _, err := pool.Exec(ctx, m.stmt); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", i+1, m.name, err)
		}
		log.Debug().Str("migration", m.name).Msg("migration applied")
	}
	return nil
}
