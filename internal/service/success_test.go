package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poke-collect/internal/model"
)

func (e *testEnv) seedSuccess(t *testing.T, key, kind string, reqs model.SuccessRequirements, cash, xp int64) *model.SuccessDefinition {
	t.Helper()
	def, err := e.successes.InsertDefinition(context.Background(), &model.SuccessDefinition{
		Key:          key,
		Type:         kind,
		Requirements: reqs,
		RewardCash:   cash,
		RewardXP:     xp,
	})
	require.NoError(t, err)
	return def
}

func TestSuccessService_CheckAndUnlock_Idempotent(t *testing.T) {
	e, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	player := e.seedPlayer(t, 0, 3)
	species := e.seedSpecies(t, "Rattata", model.RarityNormal, false, 10, "Normal")
	e.seedEntry(t, player.ID, species.ID)

	def := e.seedSuccess(t, "first_capture", model.SuccessCapture,
		model.SuccessRequirements{Count: 1}, 100, 5)
	e.seedSuccess(t, "collector", model.SuccessCapture,
		model.SuccessRequirements{Count: 100}, 1000, 50)

	unlocked, err := e.successSvc.CheckAndUnlock(ctx, player.ID)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, def.ID, unlocked[0].ID)

	// A second pass finds nothing new.
	unlocked, err = e.successSvc.CheckAndUnlock(ctx, player.ID)
	require.NoError(t, err)
	assert.Empty(t, unlocked)
}

func TestSuccessService_CheckAndUnlock_RarityShiny(t *testing.T) {
	e, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	player := e.seedPlayer(t, 0, 3)
	plain := e.seedSpecies(t, "Evoli", model.RarityRare, false, 10, "Normal")
	shiny := e.seedSpecies(t, "Evoli", model.RarityRare, true, 10, "Normal")
	e.seedEntry(t, player.ID, plain.ID)

	def := e.seedSuccess(t, "shiny_rare", model.SuccessRarity,
		model.SuccessRequirements{Count: 1, Rarity: model.RarityRare, Shiny: true}, 200, 0)

	unlocked, err := e.successSvc.CheckAndUnlock(ctx, player.ID)
	require.NoError(t, err)
	assert.Empty(t, unlocked)

	e.seedEntry(t, player.ID, shiny.ID)
	unlocked, err = e.successSvc.CheckAndUnlock(ctx, player.ID)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, def.ID, unlocked[0].ID)
}

func TestSuccessService_Claim(t *testing.T) {
	e, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	player := e.seedPlayer(t, 0, 3)
	species := e.seedSpecies(t, "Rattata", model.RarityNormal, false, 10, "Normal")
	e.seedEntry(t, player.ID, species.ID)
	def := e.seedSuccess(t, "first_capture", model.SuccessCapture,
		model.SuccessRequirements{Count: 1}, 100, 5)

	// Claiming before the unlock exists fails.
	result, err := e.successSvc.Claim(ctx, player.ID, def.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReasonValidation, result.Reason)

	_, err = e.successSvc.CheckAndUnlock(ctx, player.ID)
	require.NoError(t, err)

	result, err = e.successSvc.Claim(ctx, player.ID, def.ID)
	require.NoError(t, err)
	require.True(t, result.Success)

	updated, err := e.players.GetByID(ctx, player.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), updated.Cash)
	assert.Equal(t, int64(5), updated.Experience)

	// Claiming twice fails.
	result, err = e.successSvc.Claim(ctx, player.ID, def.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReasonValidation, result.Reason)

	// Unknown success id.
	result, err = e.successSvc.Claim(ctx, player.ID, def.ID+999)
	require.NoError(t, err)
	assert.Equal(t, model.ReasonValidation, result.Reason)
}
