package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"poke-collect/internal/model"
	"poke-collect/internal/pkg/db"
	"poke-collect/internal/repository"
)

// SuccessService evaluates achievement predicates and handles claims.
type SuccessService struct {
	pool           *pgxpool.Pool
	successRepo    *repository.SuccessRepository
	playerRepo     *repository.PlayerRepository
	collectionRepo *repository.CollectionRepository
	expeditionRepo *repository.ExpeditionRepository
	levelingSvc    *LevelingService
}

// NewSuccessService creates a new SuccessService instance.
func NewSuccessService(
	pool *pgxpool.Pool,
	successRepo *repository.SuccessRepository,
	playerRepo *repository.PlayerRepository,
	collectionRepo *repository.CollectionRepository,
	expeditionRepo *repository.ExpeditionRepository,
	levelingSvc *LevelingService,
) *SuccessService {
	return &SuccessService{
		pool:           pool,
		successRepo:    successRepo,
		playerRepo:     playerRepo,
		collectionRepo: collectionRepo,
		expeditionRepo: expeditionRepo,
		levelingSvc:    levelingSvc,
	}
}

// CheckAndUnlock evaluates every not-yet-unlocked success for the player and
// records the ones whose predicate now holds. Returns the newly unlocked
// definitions.
func (s *SuccessService) CheckAndUnlock(ctx context.Context, playerID int64) ([]*model.SuccessDefinition, error) {
	var unlocked []*model.SuccessDefinition
	err := db.RunInTx(ctx, s.pool, func(tx pgx.Tx) error {
		var txErr error
		unlocked, txErr = s.checkAndUnlockTx(ctx, tx, playerID)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return unlocked, nil
}

func (s *SuccessService) checkAndUnlockTx(ctx context.Context, tx pgx.Tx, playerID int64) ([]*model.SuccessDefinition, error) {
	pending, err := s.successRepo.WithTx(tx).PendingDefinitions(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, nil
	}

	var unlocked []*model.SuccessDefinition
	for _, def := range pending {
		ok, err := s.satisfiedTx(ctx, tx, playerID, def)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		created, err := s.successRepo.WithTx(tx).CreateUnlock(ctx, playerID, def.ID)
		if err != nil {
			return nil, err
		}
		if created {
			unlocked = append(unlocked, def)
		}
	}
	return unlocked, nil
}

// satisfiedTx evaluates one definition's typed predicate against current
// aggregate player state.
func (s *SuccessService) satisfiedTx(ctx context.Context, tx pgx.Tx, playerID int64, def *model.SuccessDefinition) (bool, error) {
	req := def.Requirements
	switch def.Type {
	case model.SuccessPokedex:
		count, err := s.collectionRepo.WithTx(tx).CountDistinctSpecies(ctx, playerID)
		if err != nil {
			return false, err
		}
		return count >= req.Count, nil
	case model.SuccessCapture:
		count, err := s.collectionRepo.WithTx(tx).CountAll(ctx, playerID)
		if err != nil {
			return false, err
		}
		return count >= req.Count, nil
	case model.SuccessRarity:
		count, err := s.collectionRepo.WithTx(tx).CountByRarity(ctx, playerID, req.Rarity, req.Shiny)
		if err != nil {
			return false, err
		}
		return count >= req.Count, nil
	case model.SuccessTower:
		player, err := s.playerRepo.WithTx(tx).GetByID(ctx, playerID)
		if err != nil {
			return false, err
		}
		return player.TowerLevel >= req.Count, nil
	case model.SuccessExpedition:
		count, err := s.expeditionRepo.WithTx(tx).CountCompletions(ctx, playerID)
		if err != nil {
			return false, err
		}
		return count >= req.Count, nil
	case model.SuccessFriend:
		player, err := s.playerRepo.WithTx(tx).GetByID(ctx, playerID)
		if err != nil {
			return false, err
		}
		return player.FriendsCount >= req.Count, nil
	default:
		return false, fmt.Errorf("unknown success type %q", def.Type)
	}
}

// Claim marks an unlocked success claimed and credits its cash/xp reward.
// Success rewards never carry items, so the payout stays a local fast path
// instead of going through the reward distributor.
func (s *SuccessService) Claim(ctx context.Context, playerID, successID int64) (*model.Result, error) {
	var result *model.Result
	err := db.RunInTx(ctx, s.pool, func(tx pgx.Tx) error {
		def, err := s.successRepo.WithTx(tx).GetDefinition(ctx, successID)
		if err != nil {
			if errors.Is(err, repository.ErrSuccessNotFound) {
				result = model.Fail(model.ReasonValidation, "unknown success")
				return nil
			}
			return err
		}

		claimed, err := s.successRepo.WithTx(tx).MarkClaimed(ctx, playerID, successID)
		if err != nil {
			return err
		}
		if !claimed {
			result = model.Fail(model.ReasonValidation, "success not unlocked or already claimed")
			return nil
		}

		var rewards []model.RewardEntry
		if def.RewardCash > 0 {
			if _, err := s.playerRepo.WithTx(tx).AddCash(ctx, playerID, def.RewardCash); err != nil {
				return err
			}
			rewards = append(rewards, model.RewardEntry{Type: model.RewardCash, Amount: def.RewardCash})
		}
		if def.RewardXP > 0 {
			if err := s.levelingSvc.grantExperienceTx(ctx, tx, playerID, def.RewardXP); err != nil {
				return err
			}
			rewards = append(rewards, model.RewardEntry{Type: model.RewardXP, Amount: def.RewardXP})
		}
		result = model.Ok(fmt.Sprintf("success %s claimed", def.Key), rewards...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
