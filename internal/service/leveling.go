package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"poke-collect/internal/game/milestone"
	"poke-collect/internal/game/xp"
	"poke-collect/internal/model"
	"poke-collect/internal/pkg/db"
	"poke-collect/internal/repository"
)

// LevelingService grants experience, recomputes levels against the
// configured curve and issues milestone payouts for every newly crossed
// level exactly once.
type LevelingService struct {
	pool       *pgxpool.Pool
	playerRepo *repository.PlayerRepository
	configSvc  *GameConfigService
	rewardSvc  *RewardService
}

// NewLevelingService creates a new LevelingService instance.
func NewLevelingService(
	pool *pgxpool.Pool,
	playerRepo *repository.PlayerRepository,
	configSvc *GameConfigService,
	rewardSvc *RewardService,
) *LevelingService {
	return &LevelingService{
		pool:       pool,
		playerRepo: playerRepo,
		configSvc:  configSvc,
		rewardSvc:  rewardSvc,
	}
}

// GrantExperience adds experience to the player and pays any milestones the
// resulting level-ups cross. Non-positive amounts change nothing.
func (s *LevelingService) GrantExperience(ctx context.Context, playerID int64, amount int64) (*model.Result, error) {
	if amount <= 0 {
		return model.Ok("no experience granted"), nil
	}

	var granted []model.RewardEntry
	err := db.RunInTx(ctx, s.pool, func(tx pgx.Tx) error {
		var txErr error
		granted, txErr = s.grantTx(ctx, tx, playerID, amount)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return model.Ok(fmt.Sprintf("granted %d experience", amount), granted...), nil
}

// grantExperienceTx satisfies the distributor's experienceGranter hook so
// xp reward entries resolve inside the surrounding transaction.
func (s *LevelingService) grantExperienceTx(ctx context.Context, tx pgx.Tx, playerID int64, amount int64) error {
	if amount <= 0 {
		return nil
	}
	_, err := s.grantTx(ctx, tx, playerID, amount)
	return err
}

// grantTx performs the locked read-modify-write and returns the milestone
// entries paid out along the way.
func (s *LevelingService) grantTx(ctx context.Context, tx pgx.Tx, playerID int64, amount int64) ([]model.RewardEntry, error) {
	player, err := s.playerRepo.WithTx(tx).GetForUpdate(ctx, playerID)
	if err != nil {
		return nil, err
	}

	thresholds, err := s.configSvc.LevelThresholds(ctx)
	if err != nil {
		return nil, err
	}

	newXP := player.Experience + amount
	newLevel := xp.LevelForXP(thresholds, newXP)
	if err := s.playerRepo.WithTx(tx).UpdateProgression(ctx, playerID, newXP, newLevel); err != nil {
		return nil, err
	}

	var granted []model.RewardEntry
	for level := player.Level + 1; level <= newLevel; level++ {
		for _, key := range milestone.KeysForLevel(level) {
			entries, err := s.rewardSvc.distributeLevelRewardTx(ctx, tx, playerID, key)
			if err != nil {
				return nil, err
			}
			granted = append(granted, entries...)
		}
	}
	return granted, nil
}

// addXPForNewEntryTx awards the catch experience for a freshly created
// collection entry inside the caller's transaction.
func (s *LevelingService) addXPForNewEntryTx(ctx context.Context, tx pgx.Tx, playerID int64, rarity string, shiny, firstCatch bool) error {
	tables, err := s.configSvc.XPTables(ctx)
	if err != nil {
		return err
	}
	return s.grantExperienceTx(ctx, tx, playerID, tables.ForNewEntry(rarity, shiny, firstCatch))
}
