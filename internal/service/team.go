package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"poke-collect/internal/model"
	"poke-collect/internal/pkg/db"
	"poke-collect/internal/repository"
)

// teamSize is the number of team positions.
const teamSize = 6

// TeamService manages which collection entries fight in the tower team.
type TeamService struct {
	pool           *pgxpool.Pool
	collectionRepo *repository.CollectionRepository
}

// NewTeamService creates a new TeamService instance.
func NewTeamService(pool *pgxpool.Pool, collectionRepo *repository.CollectionRepository) *TeamService {
	return &TeamService{
		pool:           pool,
		collectionRepo: collectionRepo,
	}
}

// Add places an entry on the team at the given position. Entries currently
// on an expedition cannot join, and a position holds one entry at a time.
func (s *TeamService) Add(ctx context.Context, playerID, entryID int64, position int) (*model.Result, error) {
	if position < 1 || position > teamSize {
		return model.Fail(model.ReasonValidation, "invalid team position"), nil
	}

	var result *model.Result
	err := db.RunInTx(ctx, s.pool, func(tx pgx.Tx) error {
		repo := s.collectionRepo.WithTx(tx)

		entry, err := repo.GetByIDForUpdate(ctx, entryID)
		if err != nil {
			if errors.Is(err, repository.ErrEntryNotFound) {
				result = model.Fail(model.ReasonValidation, "collection entry not found")
				return nil
			}
			return err
		}
		if entry.PlayerID != playerID {
			result = model.Fail(model.ReasonValidation, "collection entry not found")
			return nil
		}

		busy, err := repo.BusyEntryIDs(ctx, []int64{entryID})
		if err != nil {
			return err
		}
		if len(busy) > 0 {
			result = model.Fail(model.ReasonValidation, "entry is on an expedition")
			return nil
		}

		occupant, err := repo.OccupantAtPosition(ctx, playerID, position)
		if err != nil {
			return err
		}
		if occupant != 0 && occupant != entryID {
			result = model.Fail(model.ReasonValidation, "team position already occupied")
			return nil
		}

		if err := repo.SetTeamMembership(ctx, playerID, entryID, &position); err != nil {
			return err
		}
		result = model.Ok("entry added to the team")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Remove takes an entry off the team.
func (s *TeamService) Remove(ctx context.Context, playerID, entryID int64) (*model.Result, error) {
	err := s.collectionRepo.SetTeamMembership(ctx, playerID, entryID, nil)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return model.Fail(model.ReasonValidation, "collection entry not found"), nil
		}
		return nil, err
	}
	return model.Ok("entry removed from the team"), nil
}

// Power returns the summed combat power of the player's team.
func (s *TeamService) Power(ctx context.Context, playerID int64) (int64, error) {
	return s.collectionRepo.TeamPower(ctx, playerID)
}
