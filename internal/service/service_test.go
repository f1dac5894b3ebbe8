// Tests use testcontainers-go to spin up a PostgreSQL container and drive
// the engines against a real schema.
package service

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"poke-collect/internal/config"
	"poke-collect/internal/model"
	"poke-collect/internal/pkg/db"
	"poke-collect/internal/pkg/lock"
	"poke-collect/internal/repository"
	"poke-collect/internal/rng"
)

// fixedSource always yields the same value, scripting the weighted draws.
type fixedSource struct{ v float64 }

func (s fixedSource) Float64() float64 { return s.v }

// checkDockerAvailable checks if Docker is available and running
func checkDockerAvailable() bool {
	cmd := exec.Command("docker", "info")
	err := cmd.Run()
	return err == nil
}

// setupTestDB creates a PostgreSQL container and returns a migrated pool.
// Skips the test if Docker is not available.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, db.Migrate(ctx, pool))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// testEnv bundles repositories and the always-needed services against one
// test database. Engines that take a random source are built per test.
type testEnv struct {
	pool        *pgxpool.Pool
	players     *repository.PlayerRepository
	species     *repository.SpeciesRepository
	entries     *repository.CollectionRepository
	inventory   *repository.InventoryRepository
	expeditions *repository.ExpeditionRepository
	successes   *repository.SuccessRepository
	towers      *repository.TowerLevelRepository
	promos      *repository.PromoRepository
	configs     *repository.GameConfigRepository

	configSvc   *GameConfigService
	rewardSvc   *RewardService
	levelingSvc *LevelingService
	successSvc  *SuccessService
}

func newTestEnv(t *testing.T) (*testEnv, func()) {
	pool, cleanup := setupTestDB(t)

	e := &testEnv{
		pool:        pool,
		players:     repository.NewPlayerRepository(pool),
		species:     repository.NewSpeciesRepository(pool),
		entries:     repository.NewCollectionRepository(pool),
		inventory:   repository.NewInventoryRepository(pool),
		expeditions: repository.NewExpeditionRepository(pool),
		successes:   repository.NewSuccessRepository(pool),
		towers:      repository.NewTowerLevelRepository(pool),
		promos:      repository.NewPromoRepository(pool),
		configs:     repository.NewGameConfigRepository(pool),
	}
	e.configSvc = NewGameConfigService(e.configs)
	e.rewardSvc = NewRewardService(pool, e.players, e.inventory, e.promos, e.configSvc,
		config.DailyConfig{BonusCash: 500, BonusPokeballs: 1})
	e.levelingSvc = NewLevelingService(pool, e.players, e.configSvc, e.rewardSvc)
	e.rewardSvc.SetExperienceGranter(e.levelingSvc)
	e.successSvc = NewSuccessService(pool, e.successes, e.players, e.entries, e.expeditions, e.levelingSvc)

	return e, cleanup
}

func (e *testEnv) gacha(src rng.Source) *GachaService {
	return NewGachaService(e.pool, e.species, e.entries, e.inventory,
		e.configSvc, e.levelingSvc, e.successSvc, src)
}

func (e *testEnv) expeditionSvc(src rng.Source) *ExpeditionService {
	return NewExpeditionService(e.pool, e.expeditions, e.entries, e.rewardSvc, src, 3)
}

func (e *testEnv) towerSvc(locker lock.Locker, src rng.Source) *TowerService {
	return NewTowerService(e.pool, e.players, e.entries, e.towers, e.rewardSvc, locker, src,
		config.TowerConfig{DailyDefeats: 3, LockTTL: 10 * time.Second})
}

func (e *testEnv) upgradeSvc() *UpgradeService {
	return NewUpgradeService(e.pool, e.entries)
}

func (e *testEnv) seedPlayer(t *testing.T, cash int64, towerDefeats int) *model.Player {
	t.Helper()
	player, err := e.players.Create(context.Background(), "trainer", cash, towerDefeats)
	require.NoError(t, err)
	return player
}

func (e *testEnv) seedSpecies(t *testing.T, name, rarity string, shiny bool, stat int, types ...string) *model.Species {
	t.Helper()
	s, err := e.species.Insert(context.Background(), &model.Species{
		Name: name, Rarity: rarity, IsShiny: shiny,
		HP: stat, Attack: stat, Defense: stat, Types: types,
	})
	require.NoError(t, err)
	return s
}

func (e *testEnv) seedEntry(t *testing.T, playerID, speciesID int64) *model.CollectionEntry {
	t.Helper()
	entry, err := e.entries.Create(context.Background(), playerID, speciesID, 10)
	require.NoError(t, err)
	return entry
}
