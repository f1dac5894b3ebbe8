package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poke-collect/internal/game/milestone"
	"poke-collect/internal/model"
)

func TestRewardService_DistributeLevelReward_Idempotent(t *testing.T) {
	e, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	player := e.seedPlayer(t, 1000, 3)
	key := milestone.Key{Type: milestone.TypeEvery10, Level: 50}

	result, err := e.rewardSvc.DistributeLevelReward(ctx, player.ID, key)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Success)

	updated, err := e.players.GetByID(ctx, player.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), updated.Cash) // 1000 + 3000
	assert.Contains(t, updated.ClaimedLevelRewards, "milestone_10_50")

	masterballs, err := e.inventory.Quantity(ctx, player.ID, model.BallMasterball)
	require.NoError(t, err)
	assert.Equal(t, 5, masterballs)

	// Second claim of the same key is a no-op returning nil.
	result, err = e.rewardSvc.DistributeLevelReward(ctx, player.ID, key)
	require.NoError(t, err)
	assert.Nil(t, result)

	updated, err = e.players.GetByID(ctx, player.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), updated.Cash)
}

func TestRewardService_ClaimDailyQuestBonus_OncePerDay(t *testing.T) {
	e, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	player := e.seedPlayer(t, 0, 3)

	result, err := e.rewardSvc.ClaimDailyQuestBonus(ctx, player.ID)
	require.NoError(t, err)
	assert.True(t, result.Success)

	updated, err := e.players.GetByID(ctx, player.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), updated.Cash)

	result, err = e.rewardSvc.ClaimDailyQuestBonus(ctx, player.ID)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, model.ReasonValidation, result.Reason)
}

func TestRewardService_RedeemPromoCode(t *testing.T) {
	e, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	player := e.seedPlayer(t, 0, 3)
	require.NoError(t, e.promos.Insert(ctx, &model.PromoCode{
		Code: "WELCOME",
		Rewards: []model.RewardEntry{
			{Type: model.RewardCash, Amount: 250},
			{Type: model.RewardPokeball, Quantity: 3},
			{Type: model.RewardXP, Amount: 10},
		},
		Active: true,
	}))

	result, err := e.rewardSvc.RedeemPromoCode(ctx, player.ID, "WELCOME")
	require.NoError(t, err)
	require.True(t, result.Success)

	updated, err := e.players.GetByID(ctx, player.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(250), updated.Cash)
	assert.Equal(t, int64(10), updated.Experience)

	pokeballs, err := e.inventory.Quantity(ctx, player.ID, model.BallPokeball)
	require.NoError(t, err)
	assert.Equal(t, 3, pokeballs)

	// Same code twice is rejected.
	result, err = e.rewardSvc.RedeemPromoCode(ctx, player.ID, "WELCOME")
	require.NoError(t, err)
	assert.False(t, result.Success)

	// Unknown code.
	result, err = e.rewardSvc.RedeemPromoCode(ctx, player.ID, "NOPE")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, model.ReasonValidation, result.Reason)
}

func TestRewardService_Distribute_InactivePromo(t *testing.T) {
	e, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	player := e.seedPlayer(t, 0, 3)
	require.NoError(t, e.promos.Insert(ctx, &model.PromoCode{
		Code:    "EXPIRED",
		Rewards: []model.RewardEntry{{Type: model.RewardCash, Amount: 100}},
		Active:  false,
	}))

	result, err := e.rewardSvc.RedeemPromoCode(ctx, player.ID, "EXPIRED")
	require.NoError(t, err)
	assert.False(t, result.Success)
}
