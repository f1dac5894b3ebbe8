package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"poke-collect/internal/game/rarity"
	"poke-collect/internal/model"
	"poke-collect/internal/pkg/db"
	"poke-collect/internal/repository"
	"poke-collect/internal/rng"
)

// ExpeditionService manages the daily assignment pool and the
// available → in_progress → claimed-and-removed lifecycle.
type ExpeditionService struct {
	pool           *pgxpool.Pool
	expeditionRepo *repository.ExpeditionRepository
	collectionRepo *repository.CollectionRepository
	rewardSvc      *RewardService
	rand           rng.Source
	dailySlots     int
}

// NewExpeditionService creates a new ExpeditionService instance.
func NewExpeditionService(
	pool *pgxpool.Pool,
	expeditionRepo *repository.ExpeditionRepository,
	collectionRepo *repository.CollectionRepository,
	rewardSvc *RewardService,
	rand rng.Source,
	dailySlots int,
) *ExpeditionService {
	return &ExpeditionService{
		pool:           pool,
		expeditionRepo: expeditionRepo,
		collectionRepo: collectionRepo,
		rewardSvc:      rewardSvc,
		rand:           rand,
		dailySlots:     dailySlots,
	}
}

// EnsureDailyAssignments tops the player's live assignments back up to the
// daily slot count. Replacements are drawn by weighted rarity over the
// templates the player is still eligible for today; when no template of the
// drawn rarity remains, any remaining eligible template serves. Fewer
// eligible templates than open slots just means fewer assignments.
func (s *ExpeditionService) EnsureDailyAssignments(ctx context.Context, playerID int64) ([]*model.ExpeditionAssignment, error) {
	var assignments []*model.ExpeditionAssignment
	err := db.RunInTx(ctx, s.pool, func(tx pgx.Tx) error {
		repo := s.expeditionRepo.WithTx(tx)

		current, err := repo.ListAssignments(ctx, playerID)
		if err != nil {
			return err
		}
		if len(current) >= s.dailySlots {
			assignments = current
			return nil
		}

		eligible, err := repo.EligibleTemplates(ctx, playerID)
		if err != nil {
			return err
		}

		table := rarity.DefaultExpeditionTable()
		for len(current) < s.dailySlots && len(eligible) > 0 {
			tier, err := table.Pick(s.rand)
			if err != nil {
				return err
			}

			idx := 0
			for i, tpl := range eligible {
				if tpl.Rarity == tier {
					idx = i
					break
				}
			}
			chosen := eligible[idx]
			eligible = append(eligible[:idx], eligible[idx+1:]...)

			created, err := repo.CreateAssignment(ctx, playerID, chosen.ID)
			if err != nil {
				return err
			}
			current = append(current, created)
		}
		assignments = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

// matchesRequirement reports whether one entry counts toward a requirement.
// Rarity requirements compare tiers, type requirements check the species'
// type list, both case-insensitively.
func matchesRequirement(entry *model.CollectionEntry, req model.RequirementEntry) bool {
	switch req.Type {
	case model.RequirementRarity:
		return strings.EqualFold(entry.Species.Rarity, req.Value)
	case model.RequirementType:
		for _, t := range entry.Species.Types {
			if strings.EqualFold(t, req.Value) {
				return true
			}
		}
	}
	return false
}

// meetsRequirements checks every requirement independently: one entry may
// count toward several requirements at once.
func meetsRequirements(entries []*model.CollectionEntry, reqs []model.RequirementEntry) bool {
	for _, req := range reqs {
		matching := 0
		for _, entry := range entries {
			if matchesRequirement(entry, req) {
				matching++
			}
		}
		if matching < req.Quantity {
			return false
		}
	}
	return true
}

// Start sends the selected entries on an available assignment.
func (s *ExpeditionService) Start(ctx context.Context, playerID, assignmentID int64, entryIDs []int64) (*model.Result, error) {
	if len(entryIDs) == 0 {
		return model.Fail(model.ReasonValidation, "no collection entries selected"), nil
	}

	var result *model.Result
	err := db.RunInTx(ctx, s.pool, func(tx pgx.Tx) error {
		repo := s.expeditionRepo.WithTx(tx)

		assignment, err := repo.GetAssignmentForUpdate(ctx, playerID, assignmentID)
		if err != nil {
			if errors.Is(err, repository.ErrAssignmentNotFound) {
				result = model.Fail(model.ReasonValidation, "expedition assignment not found")
				return nil
			}
			return err
		}
		if assignment.Status != model.ExpeditionAvailable {
			result = model.Fail(model.ReasonValidation, "expedition is not available")
			return nil
		}

		entries, err := s.collectionRepo.WithTx(tx).GetOwned(ctx, playerID, entryIDs)
		if err != nil {
			return err
		}
		if len(entries) != len(entryIDs) {
			result = model.Fail(model.ReasonValidation, "some selected entries are not yours")
			return nil
		}
		for _, entry := range entries {
			if entry.IsInTeam {
				result = model.Fail(model.ReasonValidation, "team members cannot join an expedition")
				return nil
			}
		}

		busy, err := s.collectionRepo.WithTx(tx).BusyEntryIDs(ctx, entryIDs)
		if err != nil {
			return err
		}
		if len(busy) > 0 {
			result = model.Fail(model.ReasonValidation, "some selected entries are already on an expedition")
			return nil
		}

		if !meetsRequirements(entries, assignment.Template.Requirements) {
			result = model.Fail(model.ReasonValidation, "selected entries do not satisfy the expedition requirements")
			return nil
		}

		startedAt := time.Now()
		endsAt := startedAt.Add(assignment.Template.Duration)
		started, err := repo.StartAssignment(ctx, assignment.ID, startedAt, endsAt)
		if err != nil {
			return err
		}
		if !started {
			result = model.Fail(model.ReasonValidation, "expedition is not available")
			return nil
		}
		if err := repo.CreateParticipants(ctx, assignment.ID, entryIDs, startedAt, endsAt); err != nil {
			return err
		}

		result = model.Ok("expedition started")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Claim resolves a finished expedition: stamps the participants claimed,
// pays the template's rewards, logs today's completion and deletes the
// assignment so the slot replenishes tomorrow. All in one transaction. The
// claimed participation rows outlive the assignment as the claim record.
func (s *ExpeditionService) Claim(ctx context.Context, playerID, assignmentID int64) (*model.Result, error) {
	var result *model.Result
	err := db.RunInTx(ctx, s.pool, func(tx pgx.Tx) error {
		repo := s.expeditionRepo.WithTx(tx)

		assignment, err := repo.GetAssignmentForUpdate(ctx, playerID, assignmentID)
		if err != nil {
			if errors.Is(err, repository.ErrAssignmentNotFound) {
				result = model.Fail(model.ReasonValidation, "expedition assignment not found")
				return nil
			}
			return err
		}
		if assignment.Status != model.ExpeditionInProgress || assignment.EndsAt == nil {
			result = model.Fail(model.ReasonValidation, "expedition is not in progress")
			return nil
		}
		now := time.Now()
		if now.Before(*assignment.EndsAt) {
			result = model.Fail(model.ReasonValidation, "expedition has not finished yet")
			return nil
		}

		if _, err := repo.ClaimParticipants(ctx, assignment.ID, now); err != nil {
			return err
		}
		if err := s.rewardSvc.distributeTx(ctx, tx, playerID, assignment.Template.Rewards); err != nil {
			return err
		}
		if err := repo.RecordCompletion(ctx, playerID, assignment.TemplateID); err != nil {
			return err
		}
		if err := repo.DeleteAssignment(ctx, assignment.ID); err != nil {
			return err
		}

		result = model.Ok("expedition completed", assignment.Template.Rewards...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
