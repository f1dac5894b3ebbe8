package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poke-collect/internal/game/fusion"
	"poke-collect/internal/model"
)

func material(id, speciesID int64, star int) *model.CollectionEntry {
	return &model.CollectionEntry{
		ID:        id,
		SpeciesID: speciesID,
		Star:      star,
		Species:   &model.Species{ID: speciesID},
	}
}

func TestSelectMaterials_PrimaryOnly(t *testing.T) {
	target := material(1, 100, 0)
	recipe, err := fusion.Requirements(0)
	require.NoError(t, err)

	// One same-species duplicate at star 0 fills the recipe; the second
	// stays untouched.
	offered := []*model.CollectionEntry{material(2, 100, 0), material(3, 100, 0)}
	consumed := selectMaterials(target, recipe, offered)
	assert.Equal(t, []int64{2}, consumed)
}

func TestSelectMaterials_WithSecondary(t *testing.T) {
	target := material(1, 100, 2)
	recipe, err := fusion.Requirements(2)
	require.NoError(t, err)

	offered := []*model.CollectionEntry{
		material(2, 100, 2), // primary
		material(3, 200, 1), // secondary, any species
		material(4, 100, 2), // primary
	}
	consumed := selectMaterials(target, recipe, offered)
	assert.ElementsMatch(t, []int64{2, 3, 4}, consumed)
}

func TestSelectMaterials_WrongSpecies(t *testing.T) {
	target := material(1, 100, 0)
	recipe, err := fusion.Requirements(0)
	require.NoError(t, err)

	consumed := selectMaterials(target, recipe, []*model.CollectionEntry{material(2, 200, 0)})
	assert.Nil(t, consumed)
}

func TestSelectMaterials_WrongStar(t *testing.T) {
	target := material(1, 100, 1)
	recipe, err := fusion.Requirements(1)
	require.NoError(t, err)

	// Duplicates must sit at the target's current star.
	consumed := selectMaterials(target, recipe, []*model.CollectionEntry{
		material(2, 100, 0),
		material(3, 100, 2),
	})
	assert.Nil(t, consumed)
}

func TestSelectMaterials_MissingSecondary(t *testing.T) {
	target := material(1, 100, 3)
	recipe, err := fusion.Requirements(3)
	require.NoError(t, err)

	consumed := selectMaterials(target, recipe, []*model.CollectionEntry{
		material(2, 100, 3),
		material(3, 100, 3),
		material(4, 100, 3),
	})
	assert.Nil(t, consumed)
}
