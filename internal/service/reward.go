package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"poke-collect/internal/config"
	"poke-collect/internal/game/milestone"
	"poke-collect/internal/model"
	"poke-collect/internal/pkg/db"
	"poke-collect/internal/repository"
)

// experienceGranter lets the reward distributor hand xp entries to the
// leveling service without a construction cycle between the two.
type experienceGranter interface {
	grantExperienceTx(ctx context.Context, tx pgx.Tx, playerID int64, amount int64) error
}

// RewardService distributes reward lists and milestone payouts atomically.
type RewardService struct {
	pool          *pgxpool.Pool
	playerRepo    *repository.PlayerRepository
	inventoryRepo *repository.InventoryRepository
	promoRepo     *repository.PromoRepository
	configSvc     *GameConfigService
	daily         config.DailyConfig
	xp            experienceGranter
}

// NewRewardService creates a new RewardService instance. The experience
// granter is attached afterwards via SetExperienceGranter.
func NewRewardService(
	pool *pgxpool.Pool,
	playerRepo *repository.PlayerRepository,
	inventoryRepo *repository.InventoryRepository,
	promoRepo *repository.PromoRepository,
	configSvc *GameConfigService,
	daily config.DailyConfig,
) *RewardService {
	return &RewardService{
		pool:          pool,
		playerRepo:    playerRepo,
		inventoryRepo: inventoryRepo,
		promoRepo:     promoRepo,
		configSvc:     configSvc,
		daily:         daily,
	}
}

// SetExperienceGranter wires the leveling service in after construction.
func (s *RewardService) SetExperienceGranter(g experienceGranter) {
	s.xp = g
}

// Distribute credits a reward list to the player in one transaction.
func (s *RewardService) Distribute(ctx context.Context, playerID int64, rewards []model.RewardEntry) error {
	return db.RunInTx(ctx, s.pool, func(tx pgx.Tx) error {
		return s.distributeTx(ctx, tx, playerID, rewards)
	})
}

// distributeTx credits each reward entry inside the caller's transaction.
// Cash never drives the balance negative here since reward amounts are
// credits; xp entries route through the leveling service so level-ups and
// their milestone payouts land in the same transaction.
func (s *RewardService) distributeTx(ctx context.Context, tx pgx.Tx, playerID int64, rewards []model.RewardEntry) error {
	for _, entry := range rewards {
		switch entry.Type {
		case model.RewardCash:
			if entry.Amount == 0 {
				continue
			}
			if _, err := s.playerRepo.WithTx(tx).AddCash(ctx, playerID, entry.Amount); err != nil {
				return fmt.Errorf("failed to credit cash: %w", err)
			}
		case model.RewardXP:
			if entry.Amount <= 0 {
				continue
			}
			if err := s.xp.grantExperienceTx(ctx, tx, playerID, entry.Amount); err != nil {
				return err
			}
		case model.RewardPokeball:
			if err := s.inventoryRepo.WithTx(tx).Add(ctx, playerID, model.BallPokeball, entry.Quantity); err != nil {
				return err
			}
		case model.RewardMasterball:
			if err := s.inventoryRepo.WithTx(tx).Add(ctx, playerID, model.BallMasterball, entry.Quantity); err != nil {
				return err
			}
		case model.RewardItem:
			if err := s.inventoryRepo.WithTx(tx).Add(ctx, playerID, entry.ItemSlug, entry.Quantity); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown reward type %q", entry.Type)
		}
	}
	return nil
}

// milestoneEntries converts a milestone payout into reward entries.
func milestoneEntries(payout milestone.Reward) []model.RewardEntry {
	var entries []model.RewardEntry
	if payout.Cash > 0 {
		entries = append(entries, model.RewardEntry{Type: model.RewardCash, Amount: payout.Cash})
	}
	if payout.Pokeballs > 0 {
		entries = append(entries, model.RewardEntry{Type: model.RewardPokeball, Quantity: payout.Pokeballs})
	}
	if payout.Masterballs > 0 {
		entries = append(entries, model.RewardEntry{Type: model.RewardMasterball, Quantity: payout.Masterballs})
	}
	return entries
}

// distributeLevelRewardTx claims one milestone key and credits its payout.
// The claim and the credit share the caller's transaction, so a crash can
// never grant the payout without recording the claim or vice versa. Returns
// nil entries when the key was already claimed. Milestone payouts carry no
// xp entries, which keeps the leveling recursion finite.
func (s *RewardService) distributeLevelRewardTx(ctx context.Context, tx pgx.Tx, playerID int64, key milestone.Key) ([]model.RewardEntry, error) {
	claimed, err := s.playerRepo.WithTx(tx).ClaimLevelReward(ctx, playerID, key.String())
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, nil
	}

	table, err := s.configSvc.MilestoneRewards(ctx)
	if err != nil {
		return nil, err
	}
	payout, ok := table[key.Type]
	if !ok {
		// Aborting rolls back the claim, so the key stays payable once the
		// table is repaired.
		return nil, fmt.Errorf("no milestone payout configured for type %q", key.Type)
	}
	entries := milestoneEntries(payout)
	if err := s.distributeTx(ctx, tx, playerID, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// DistributeLevelReward claims and pays out one milestone key in its own
// transaction. A nil result means the key was already claimed.
func (s *RewardService) DistributeLevelReward(ctx context.Context, playerID int64, key milestone.Key) (*model.Result, error) {
	var entries []model.RewardEntry
	err := db.RunInTx(ctx, s.pool, func(tx pgx.Tx) error {
		var txErr error
		entries, txErr = s.distributeLevelRewardTx(ctx, tx, playerID, key)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	if entries == nil {
		return nil, nil
	}
	return model.Ok(fmt.Sprintf("reward %s distributed", key), entries...), nil
}

// ClaimDailyQuestBonus pays the once-per-day quest bonus.
func (s *RewardService) ClaimDailyQuestBonus(ctx context.Context, playerID int64) (*model.Result, error) {
	var result *model.Result
	err := db.RunInTx(ctx, s.pool, func(tx pgx.Tx) error {
		claimed, err := s.playerRepo.WithTx(tx).ClaimDailyBonus(ctx, playerID)
		if err != nil {
			return err
		}
		if !claimed {
			result = model.Fail(model.ReasonValidation, "daily bonus already claimed today")
			return nil
		}

		rewards := []model.RewardEntry{
			{Type: model.RewardCash, Amount: s.daily.BonusCash},
			{Type: model.RewardPokeball, Quantity: s.daily.BonusPokeballs},
		}
		if err := s.distributeTx(ctx, tx, playerID, rewards); err != nil {
			return err
		}
		result = model.Ok("daily bonus claimed", rewards...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RedeemPromoCode redeems a promo code once per player and credits its
// reward list.
func (s *RewardService) RedeemPromoCode(ctx context.Context, playerID int64, code string) (*model.Result, error) {
	var result *model.Result
	err := db.RunInTx(ctx, s.pool, func(tx pgx.Tx) error {
		promo, err := s.promoRepo.WithTx(tx).GetActive(ctx, code)
		if err != nil {
			if errors.Is(err, repository.ErrPromoNotFound) {
				result = model.Fail(model.ReasonValidation, "unknown or inactive promo code")
				return nil
			}
			return err
		}

		redeemed, err := s.promoRepo.WithTx(tx).Redeem(ctx, playerID, promo.Code)
		if err != nil {
			return err
		}
		if !redeemed {
			result = model.Fail(model.ReasonValidation, "promo code already redeemed")
			return nil
		}

		if err := s.distributeTx(ctx, tx, playerID, promo.Rewards); err != nil {
			return err
		}
		result = model.Ok("promo code redeemed", promo.Rewards...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
