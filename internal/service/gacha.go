package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"poke-collect/internal/game/rarity"
	"poke-collect/internal/model"
	"poke-collect/internal/pkg/db"
	"poke-collect/internal/repository"
	"poke-collect/internal/rng"
)

// maxDrawsPerOpen caps how many balls one call may open.
const maxDrawsPerOpen = 10

// GachaService opens balls: weighted rarity draws, species selection and
// collection entry creation, all inside one transaction with the ball debit.
type GachaService struct {
	pool           *pgxpool.Pool
	speciesRepo    *repository.SpeciesRepository
	collectionRepo *repository.CollectionRepository
	inventoryRepo  *repository.InventoryRepository
	configSvc      *GameConfigService
	levelingSvc    *LevelingService
	successSvc     *SuccessService
	rand           rng.Source
}

// NewGachaService creates a new GachaService instance.
func NewGachaService(
	pool *pgxpool.Pool,
	speciesRepo *repository.SpeciesRepository,
	collectionRepo *repository.CollectionRepository,
	inventoryRepo *repository.InventoryRepository,
	configSvc *GameConfigService,
	levelingSvc *LevelingService,
	successSvc *SuccessService,
	rand rng.Source,
) *GachaService {
	return &GachaService{
		pool:           pool,
		speciesRepo:    speciesRepo,
		collectionRepo: collectionRepo,
		inventoryRepo:  inventoryRepo,
		configSvc:      configSvc,
		levelingSvc:    levelingSvc,
		successSvc:     successSvc,
		rand:           rand,
	}
}

// Open consumes count balls of the given kind and draws that many new
// collection entries. Either every draw, every xp award and the ball debit
// commit together, or none of them do. A drawn rarity with no species in
// the catalog aborts the whole opening: that is a broken deployment, not a
// user error.
func (s *GachaService) Open(ctx context.Context, playerID int64, ball string, count int) (*model.Result, error) {
	if count < 1 || count > maxDrawsPerOpen {
		return model.Fail(model.ReasonValidation,
			fmt.Sprintf("count must be between 1 and %d", maxDrawsPerOpen)), nil
	}

	tables, err := s.configSvc.BallTables(ctx)
	if err != nil {
		return nil, err
	}
	table, ok := tables[ball]
	if !ok {
		return nil, fmt.Errorf("%w: %s", rarity.ErrUnknownTable, ball)
	}

	var result *model.Result
	err = db.RunInTx(ctx, s.pool, func(tx pgx.Tx) error {
		consumed, err := s.inventoryRepo.WithTx(tx).Consume(ctx, playerID, ball, count)
		if err != nil {
			return err
		}
		if !consumed {
			result = model.Fail(model.ReasonInsufficient,
				fmt.Sprintf("not enough %s: need %d", ball, count))
			return nil
		}

		draws := make([]model.DrawSummary, 0, count)
		for i := 0; i < count; i++ {
			tier, err := table.Pick(s.rand)
			if err != nil {
				return err
			}
			species, err := s.speciesRepo.WithTx(tx).RandomByRarity(ctx, tier)
			if err != nil {
				return err
			}

			owned, err := s.collectionRepo.WithTx(tx).CountBySpecies(ctx, playerID, species.ID)
			if err != nil {
				return err
			}
			entry, err := s.collectionRepo.WithTx(tx).Create(ctx, playerID, species.ID, species.HP)
			if err != nil {
				return err
			}

			if err := s.levelingSvc.addXPForNewEntryTx(ctx, tx, playerID, species.Rarity, species.IsShiny, owned == 0); err != nil {
				return err
			}

			draws = append(draws, model.DrawSummary{
				EntryID:     entry.ID,
				SpeciesName: species.Name,
				Rarity:      species.Rarity,
				IsShiny:     species.IsShiny,
				Types:       species.Types,
			})
		}

		if _, err := s.successSvc.checkAndUnlockTx(ctx, tx, playerID); err != nil {
			return err
		}

		result = model.Ok(fmt.Sprintf("opened %d %s", count, ball))
		result.Draws = draws
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
