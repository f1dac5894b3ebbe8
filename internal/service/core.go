package service

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"poke-collect/internal/config"
	"poke-collect/internal/pkg/lock"
	"poke-collect/internal/repository"
	"poke-collect/internal/rng"
)

// Core bundles every game engine behind one composition root. Request
// controllers own transport concerns and call into these services.
type Core struct {
	Config     *GameConfigService
	Reward     *RewardService
	Leveling   *LevelingService
	Success    *SuccessService
	Gacha      *GachaService
	Expedition *ExpeditionService
	Tower      *TowerService
	Upgrade    *UpgradeService
	Team       *TeamService
}

// NewCore builds the repositories and wires every service together.
func NewCore(pool *pgxpool.Pool, locker lock.Locker, rand rng.Source, cfg *config.Config) *Core {
	playerRepo := repository.NewPlayerRepository(pool)
	speciesRepo := repository.NewSpeciesRepository(pool)
	collectionRepo := repository.NewCollectionRepository(pool)
	inventoryRepo := repository.NewInventoryRepository(pool)
	expeditionRepo := repository.NewExpeditionRepository(pool)
	successRepo := repository.NewSuccessRepository(pool)
	towerLevelRepo := repository.NewTowerLevelRepository(pool)
	promoRepo := repository.NewPromoRepository(pool)
	gameConfigRepo := repository.NewGameConfigRepository(pool)

	configSvc := NewGameConfigService(gameConfigRepo)
	rewardSvc := NewRewardService(pool, playerRepo, inventoryRepo, promoRepo, configSvc, cfg.Daily)
	levelingSvc := NewLevelingService(pool, playerRepo, configSvc, rewardSvc)
	rewardSvc.SetExperienceGranter(levelingSvc)

	successSvc := NewSuccessService(pool, successRepo, playerRepo, collectionRepo, expeditionRepo, levelingSvc)

	return &Core{
		Config:   configSvc,
		Reward:   rewardSvc,
		Leveling: levelingSvc,
		Success:  successSvc,
		Gacha: NewGachaService(pool, speciesRepo, collectionRepo, inventoryRepo,
			configSvc, levelingSvc, successSvc, rand),
		Expedition: NewExpeditionService(pool, expeditionRepo, collectionRepo,
			rewardSvc, rand, cfg.Expedition.DailySlots),
		Tower: NewTowerService(pool, playerRepo, collectionRepo, towerLevelRepo,
			rewardSvc, locker, rand, cfg.Tower),
		Upgrade: NewUpgradeService(pool, collectionRepo),
		Team:    NewTeamService(pool, collectionRepo),
	}
}

// ValidateConfig loads every tunable table once so a broken configuration
// store fails the deployment at startup rather than mid-request.
func (c *Core) ValidateConfig(ctx context.Context) error {
	if _, err := c.Config.BallTables(ctx); err != nil {
		return err
	}
	if _, err := c.Config.MilestoneRewards(ctx); err != nil {
		return err
	}
	if _, err := c.Config.XPTables(ctx); err != nil {
		return err
	}
	_, err := c.Config.LevelThresholds(ctx)
	return err
}
