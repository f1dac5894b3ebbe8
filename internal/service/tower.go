package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"poke-collect/internal/config"
	"poke-collect/internal/game/tower"
	"poke-collect/internal/model"
	"poke-collect/internal/pkg/db"
	"poke-collect/internal/pkg/lock"
	"poke-collect/internal/repository"
	"poke-collect/internal/rng"
)

// TowerService resolves infernal tower attempts. A short-TTL per-player
// lock guards the whole attempt: the budget check, the roll and the
// conditional budget decrement span several statements and would otherwise
// race against a second concurrent attempt.
type TowerService struct {
	pool           *pgxpool.Pool
	playerRepo     *repository.PlayerRepository
	collectionRepo *repository.CollectionRepository
	towerLevelRepo *repository.TowerLevelRepository
	rewardSvc      *RewardService
	locker         lock.Locker
	rand           rng.Source
	cfg            config.TowerConfig
}

// NewTowerService creates a new TowerService instance.
func NewTowerService(
	pool *pgxpool.Pool,
	playerRepo *repository.PlayerRepository,
	collectionRepo *repository.CollectionRepository,
	towerLevelRepo *repository.TowerLevelRepository,
	rewardSvc *RewardService,
	locker lock.Locker,
	rand rng.Source,
	cfg config.TowerConfig,
) *TowerService {
	return &TowerService{
		pool:           pool,
		playerRepo:     playerRepo,
		collectionRepo: collectionRepo,
		towerLevelRepo: towerLevelRepo,
		rewardSvc:      rewardSvc,
		locker:         locker,
		rand:           rand,
		cfg:            cfg,
	}
}

// AttemptLevel resolves one combat attempt against the given tower floor.
// A held lock fails immediately with a busy result, never queued. The lock
// is released on every path; a crashed request at worst holds it until the
// TTL expires.
func (s *TowerService) AttemptLevel(ctx context.Context, playerID int64, levelNumber int) (*model.Result, error) {
	if levelNumber < 1 {
		return model.Fail(model.ReasonValidation, "tower level must be positive"), nil
	}

	key := lock.TowerAttemptKey(playerID)
	token, err := s.locker.TryAcquire(ctx, key, s.cfg.LockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrAlreadyLocked) {
			return model.Fail(model.ReasonBusy, "another tower attempt is in progress"), nil
		}
		return nil, err
	}
	defer func() {
		if err := s.locker.Release(ctx, key, token); err != nil {
			log.Warn().Err(err).Int64("player_id", playerID).Msg("failed to release tower lock")
		}
	}()

	var result *model.Result
	err = db.RunInTx(ctx, s.pool, func(tx pgx.Tx) error {
		playerRepo := s.playerRepo.WithTx(tx)

		player, err := playerRepo.GetForUpdate(ctx, playerID)
		if err != nil {
			return err
		}
		// The frontier floor and the one just cleared are fightable; a win
		// on the latter pays rewards without advancing.
		if levelNumber < player.TowerLevel-1 {
			result = model.Fail(model.ReasonValidation, "tower floor already cleared")
			return nil
		}

		wasReset, err := playerRepo.ResetTowerBudget(ctx, playerID, s.cfg.DailyDefeats)
		if err != nil {
			return err
		}
		remaining := player.TowerDefeatsRemaining
		if wasReset {
			remaining = s.cfg.DailyDefeats
		}
		if remaining <= 0 {
			result = model.Fail(model.ReasonBudget, "no tower attempts left today")
			return nil
		}

		floor, err := s.towerLevelRepo.WithTx(tx).GetByLevel(ctx, levelNumber)
		if err != nil {
			if errors.Is(err, repository.ErrTowerLevelNotFound) {
				result = model.Fail(model.ReasonValidation, "unknown tower floor")
				return nil
			}
			return err
		}

		power, err := s.collectionRepo.WithTx(tx).TeamPower(ctx, playerID)
		if err != nil {
			return err
		}
		chance := tower.Chance(power, floor.TeamCP)
		roll := rng.RollPercent(s.rand)

		if roll > chance {
			if _, err := playerRepo.ConsumeTowerDefeat(ctx, playerID); err != nil {
				return err
			}
			result = &model.Result{
				Success: false,
				Message: fmt.Sprintf("defeated on floor %d (%d%% chance)", levelNumber, chance),
			}
			return nil
		}

		if levelNumber >= player.TowerLevel {
			if err := playerRepo.SetTowerLevel(ctx, playerID, levelNumber+1); err != nil {
				return err
			}
		}
		if err := s.rewardSvc.distributeTx(ctx, tx, playerID, floor.Rewards); err != nil {
			return err
		}
		result = model.Ok(fmt.Sprintf("floor %d cleared (%d%% chance)", levelNumber, chance), floor.Rewards...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
