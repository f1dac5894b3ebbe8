package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poke-collect/internal/game/rarity"
	"poke-collect/internal/model"
)

func TestGachaService_Open_InsufficientBalls(t *testing.T) {
	e, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	player := e.seedPlayer(t, 1000, 3)
	e.seedSpecies(t, "Rattata", model.RarityNormal, false, 10, "Normal")

	result, err := e.gacha(fixedSource{0.9}).Open(ctx, player.ID, model.BallPokeball, 1)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, model.ReasonInsufficient, result.Reason)

	count, err := e.entries.CountAll(ctx, player.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestGachaService_Open_CountValidation(t *testing.T) {
	e, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	player := e.seedPlayer(t, 1000, 3)

	result, err := e.gacha(fixedSource{0.9}).Open(ctx, player.ID, model.BallPokeball, 0)
	require.NoError(t, err)
	assert.Equal(t, model.ReasonValidation, result.Reason)

	result, err = e.gacha(fixedSource{0.9}).Open(ctx, player.ID, model.BallPokeball, 11)
	require.NoError(t, err)
	assert.Equal(t, model.ReasonValidation, result.Reason)
}

func TestGachaService_Open_DrawsDebitAndAwardXP(t *testing.T) {
	e, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	player := e.seedPlayer(t, 1000, 3)
	species := e.seedSpecies(t, "Rattata", model.RarityNormal, false, 10, "Normal")
	require.NoError(t, e.inventory.Add(ctx, player.ID, model.BallPokeball, 5))

	// A draw of 10 on the pokeball table always lands in the normal bucket.
	result, err := e.gacha(fixedSource{0.9}).Open(ctx, player.ID, model.BallPokeball, 3)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Len(t, result.Draws, 3)
	for _, draw := range result.Draws {
		assert.Equal(t, "Rattata", draw.SpeciesName)
		assert.Equal(t, model.RarityNormal, draw.Rarity)
		assert.False(t, draw.IsShiny)
	}

	quantity, err := e.inventory.Quantity(ctx, player.ID, model.BallPokeball)
	require.NoError(t, err)
	assert.Equal(t, 2, quantity)

	count, err := e.entries.CountBySpecies(ctx, player.ID, species.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// First catch pays 1+1 xp, the two repeats 1 each.
	updated, err := e.players.GetByID(ctx, player.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), updated.Experience)
}

// A drawn rarity with no species in the catalog must abort the whole
// opening: no entries and no ball debit survive.
func TestGachaService_Open_MissingSpeciesRollsBack(t *testing.T) {
	e, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	player := e.seedPlayer(t, 1000, 3)
	require.NoError(t, e.inventory.Add(ctx, player.ID, model.BallPokeball, 2))

	_, err := e.gacha(fixedSource{0.9}).Open(ctx, player.ID, model.BallPokeball, 2)
	require.Error(t, err)

	quantity, err := e.inventory.Quantity(ctx, player.ID, model.BallPokeball)
	require.NoError(t, err)
	assert.Equal(t, 2, quantity)

	count, err := e.entries.CountAll(ctx, player.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestGachaService_Open_UnknownBall(t *testing.T) {
	e, cleanup := newTestEnv(t)
	defer cleanup()

	player := e.seedPlayer(t, 1000, 3)

	_, err := e.gacha(fixedSource{0.9}).Open(context.Background(), player.ID, "dreamball", 1)
	assert.ErrorIs(t, err, rarity.ErrUnknownTable)
}

func TestGachaService_Open_UnlocksSuccesses(t *testing.T) {
	e, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	player := e.seedPlayer(t, 1000, 3)
	e.seedSpecies(t, "Rattata", model.RarityNormal, false, 10, "Normal")
	require.NoError(t, e.inventory.Add(ctx, player.ID, model.BallPokeball, 1))

	def, err := e.successes.InsertDefinition(ctx, &model.SuccessDefinition{
		Key:          "first_capture",
		Type:         model.SuccessCapture,
		Requirements: model.SuccessRequirements{Count: 1},
		RewardCash:   100,
	})
	require.NoError(t, err)

	result, err := e.gacha(fixedSource{0.9}).Open(ctx, player.ID, model.BallPokeball, 1)
	require.NoError(t, err)
	require.True(t, result.Success)

	unlock, err := e.successes.GetUnlock(ctx, player.ID, def.ID)
	require.NoError(t, err)
	assert.False(t, unlock.IsClaimed)
}
