package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poke-collect/internal/model"
)

func TestUpgradeService_Upgrade_FirstStar(t *testing.T) {
	e, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	player := e.seedPlayer(t, 0, 3)
	species := e.seedSpecies(t, "Evoli", model.RarityRare, false, 10, "Normal")
	target := e.seedEntry(t, player.ID, species.ID)
	dup := e.seedEntry(t, player.ID, species.ID)

	result, err := e.upgradeSvc().Upgrade(ctx, player.ID, target.ID, []int64{dup.ID})
	require.NoError(t, err)
	require.True(t, result.Success)

	upgraded, err := e.entries.GetByID(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, upgraded.Star)

	_, err = e.entries.GetByID(ctx, dup.ID)
	assert.Error(t, err)
}

// Offering more materials than the recipe needs consumes exactly the
// recipe's quantities and raises the star by exactly one.
func TestUpgradeService_Upgrade_SurplusUntouched(t *testing.T) {
	e, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	player := e.seedPlayer(t, 0, 3)
	species := e.seedSpecies(t, "Evoli", model.RarityRare, false, 10, "Normal")
	target := e.seedEntry(t, player.ID, species.ID)
	dup1 := e.seedEntry(t, player.ID, species.ID)
	dup2 := e.seedEntry(t, player.ID, species.ID)

	result, err := e.upgradeSvc().Upgrade(ctx, player.ID, target.ID, []int64{dup1.ID, dup2.ID})
	require.NoError(t, err)
	require.True(t, result.Success)

	upgraded, err := e.entries.GetByID(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, upgraded.Star)

	// One duplicate survived.
	count, err := e.entries.CountBySpecies(ctx, player.ID, species.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestUpgradeService_Upgrade_SecondaryRequirement(t *testing.T) {
	e, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	player := e.seedPlayer(t, 0, 3)
	species := e.seedSpecies(t, "Evoli", model.RarityRare, false, 10, "Normal")
	other := e.seedSpecies(t, "Rattata", model.RarityNormal, false, 5, "Normal")

	target := e.seedEntry(t, player.ID, species.ID)
	require.NoError(t, e.entries.SetStar(ctx, player.ID, target.ID, 2))

	dup1 := e.seedEntry(t, player.ID, species.ID)
	dup2 := e.seedEntry(t, player.ID, species.ID)
	require.NoError(t, e.entries.SetStar(ctx, player.ID, dup1.ID, 2))
	require.NoError(t, e.entries.SetStar(ctx, player.ID, dup2.ID, 2))
	secondary := e.seedEntry(t, player.ID, other.ID)
	require.NoError(t, e.entries.SetStar(ctx, player.ID, secondary.ID, 1))

	svc := e.upgradeSvc()

	// Without the secondary the recipe is short.
	result, err := svc.Upgrade(ctx, player.ID, target.ID, []int64{dup1.ID, dup2.ID})
	require.NoError(t, err)
	assert.Equal(t, model.ReasonInsufficient, result.Reason)

	result, err = svc.Upgrade(ctx, player.ID, target.ID, []int64{dup1.ID, dup2.ID, secondary.ID})
	require.NoError(t, err)
	require.True(t, result.Success)

	upgraded, err := e.entries.GetByID(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, upgraded.Star)

	count, err := e.entries.CountAll(ctx, player.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUpgradeService_Upgrade_ShinyMismatch(t *testing.T) {
	e, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	player := e.seedPlayer(t, 0, 3)
	shiny := e.seedSpecies(t, "Evoli", model.RarityRare, true, 10, "Normal")
	plain := e.seedSpecies(t, "Evoli", model.RarityRare, false, 10, "Normal")
	target := e.seedEntry(t, player.ID, shiny.ID)
	mat := e.seedEntry(t, player.ID, plain.ID)

	result, err := e.upgradeSvc().Upgrade(ctx, player.ID, target.ID, []int64{mat.ID})
	require.NoError(t, err)
	assert.Equal(t, model.ReasonValidation, result.Reason)
}

func TestUpgradeService_Upgrade_Rejections(t *testing.T) {
	e, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	player := e.seedPlayer(t, 0, 3)
	species := e.seedSpecies(t, "Evoli", model.RarityRare, false, 10, "Normal")
	target := e.seedEntry(t, player.ID, species.ID)
	dup := e.seedEntry(t, player.ID, species.ID)

	svc := e.upgradeSvc()

	// The target cannot feed itself.
	result, err := svc.Upgrade(ctx, player.ID, target.ID, []int64{target.ID})
	require.NoError(t, err)
	assert.Equal(t, model.ReasonValidation, result.Reason)

	// Duplicate material ids.
	result, err = svc.Upgrade(ctx, player.ID, target.ID, []int64{dup.ID, dup.ID})
	require.NoError(t, err)
	assert.Equal(t, model.ReasonValidation, result.Reason)

	// Star ceiling.
	require.NoError(t, e.entries.SetStar(ctx, player.ID, target.ID, model.MaxStar))
	result, err = svc.Upgrade(ctx, player.ID, target.ID, []int64{dup.ID})
	require.NoError(t, err)
	assert.Equal(t, model.ReasonValidation, result.Reason)
}
