package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"poke-collect/internal/game/fusion"
	"poke-collect/internal/model"
	"poke-collect/internal/pkg/db"
	"poke-collect/internal/repository"
)

// UpgradeService promotes collection entries one star at a time by
// consuming material entries.
type UpgradeService struct {
	pool           *pgxpool.Pool
	collectionRepo *repository.CollectionRepository
}

// NewUpgradeService creates a new UpgradeService instance.
func NewUpgradeService(pool *pgxpool.Pool, collectionRepo *repository.CollectionRepository) *UpgradeService {
	return &UpgradeService{
		pool:           pool,
		collectionRepo: collectionRepo,
	}
}

// Requirements returns the recipe for promoting the given entry.
func (s *UpgradeService) Requirements(ctx context.Context, playerID, entryID int64) (fusion.Recipe, error) {
	entry, err := s.collectionRepo.GetByID(ctx, entryID)
	if err != nil {
		return fusion.Recipe{}, err
	}
	if entry.PlayerID != playerID {
		return fusion.Recipe{}, repository.ErrEntryNotFound
	}
	return fusion.Requirements(entry.Star)
}

// Upgrade consumes the required materials and raises the target's star by
// exactly one. Surplus materials in the selection stay untouched, and the
// deletion of consumed materials commits together with the star write.
func (s *UpgradeService) Upgrade(ctx context.Context, playerID, entryID int64, materialIDs []int64) (*model.Result, error) {
	seen := make(map[int64]struct{}, len(materialIDs))
	for _, id := range materialIDs {
		if id == entryID {
			return model.Fail(model.ReasonValidation, "the target cannot be its own material"), nil
		}
		if _, dup := seen[id]; dup {
			return model.Fail(model.ReasonValidation, "duplicate material selected"), nil
		}
		seen[id] = struct{}{}
	}

	var result *model.Result
	err := db.RunInTx(ctx, s.pool, func(tx pgx.Tx) error {
		repo := s.collectionRepo.WithTx(tx)

		target, err := repo.GetByIDForUpdate(ctx, entryID)
		if err != nil {
			if errors.Is(err, repository.ErrEntryNotFound) {
				result = model.Fail(model.ReasonValidation, "collection entry not found")
				return nil
			}
			return err
		}
		if target.PlayerID != playerID {
			result = model.Fail(model.ReasonValidation, "collection entry not found")
			return nil
		}

		recipe, err := fusion.Requirements(target.Star)
		if err != nil {
			if errors.Is(err, fusion.ErrMaxStar) {
				result = model.Fail(model.ReasonValidation, "entry is already at maximum star")
				return nil
			}
			return err
		}

		materials, err := repo.GetOwned(ctx, playerID, materialIDs)
		if err != nil {
			return err
		}
		if len(materials) != len(materialIDs) {
			result = model.Fail(model.ReasonValidation, "some materials are not yours")
			return nil
		}
		for _, m := range materials {
			if m.Species.IsShiny != target.Species.IsShiny {
				result = model.Fail(model.ReasonValidation, "materials must match the target's shininess")
				return nil
			}
		}

		// Entries on an expedition cannot be consumed while their
		// participation rows are still open.
		busy, err := repo.BusyEntryIDs(ctx, materialIDs)
		if err != nil {
			return err
		}
		if len(busy) > 0 {
			result = model.Fail(model.ReasonValidation, "some materials are on an expedition")
			return nil
		}

		consumed := selectMaterials(target, recipe, materials)
		if consumed == nil {
			result = model.Fail(model.ReasonInsufficient,
				fmt.Sprintf("recipe needs %d matching materials", recipe.MaterialCount()))
			return nil
		}

		deleted, err := repo.DeleteByIDs(ctx, playerID, consumed)
		if err != nil {
			return err
		}
		if deleted != int64(len(consumed)) {
			return fmt.Errorf("expected to consume %d materials, deleted %d", len(consumed), deleted)
		}
		if err := repo.SetStar(ctx, playerID, target.ID, target.Star+1); err != nil {
			return err
		}

		result = model.Ok(fmt.Sprintf("upgraded to star %d", target.Star+1))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// selectMaterials picks exactly the recipe's quantities out of the offered
// materials: primaries are same-species duplicates at the target's star,
// secondaries any species at the secondary star. Returns nil when the offer
// cannot fill the recipe. Extra matching materials are simply not selected.
func selectMaterials(target *model.CollectionEntry, recipe fusion.Recipe, materials []*model.CollectionEntry) []int64 {
	var primaries, secondaries []int64
	for _, m := range materials {
		switch {
		case len(primaries) < recipe.PrimaryCount &&
			m.SpeciesID == target.SpeciesID && m.Star == recipe.FromStar:
			primaries = append(primaries, m.ID)
		case recipe.SecondaryCount > 0 && len(secondaries) < recipe.SecondaryCount &&
			m.Star == recipe.SecondaryStar:
			secondaries = append(secondaries, m.ID)
		}
	}
	if len(primaries) < recipe.PrimaryCount || len(secondaries) < recipe.SecondaryCount {
		return nil
	}
	return append(primaries, secondaries...)
}
