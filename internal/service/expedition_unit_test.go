package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"poke-collect/internal/model"
)

func entryWith(rarity string, types ...string) *model.CollectionEntry {
	return &model.CollectionEntry{
		Species: &model.Species{Rarity: rarity, Types: types},
	}
}

func TestMatchesRequirement(t *testing.T) {
	fire := entryWith(model.RarityRare, "Feu", "Vol")

	assert.True(t, matchesRequirement(fire, model.RequirementEntry{Type: model.RequirementRarity, Value: "rare"}))
	assert.True(t, matchesRequirement(fire, model.RequirementEntry{Type: model.RequirementRarity, Value: "RARE"}))
	assert.False(t, matchesRequirement(fire, model.RequirementEntry{Type: model.RequirementRarity, Value: "epic"}))

	assert.True(t, matchesRequirement(fire, model.RequirementEntry{Type: model.RequirementType, Value: "feu"}))
	assert.True(t, matchesRequirement(fire, model.RequirementEntry{Type: model.RequirementType, Value: "VOL"}))
	assert.False(t, matchesRequirement(fire, model.RequirementEntry{Type: model.RequirementType, Value: "eau"}))

	assert.False(t, matchesRequirement(fire, model.RequirementEntry{Type: "unknown", Value: "rare"}))
}

// Requirements are independent: the same entry may count toward several
// requirements at once.
func TestMeetsRequirements_Independent(t *testing.T) {
	entries := []*model.CollectionEntry{
		entryWith(model.RarityEpic, "Feu"),
		entryWith(model.RarityNormal, "Eau"),
	}
	reqs := []model.RequirementEntry{
		{Type: model.RequirementRarity, Value: "epic", Quantity: 1},
		{Type: model.RequirementType, Value: "feu", Quantity: 1},
	}

	// One epic fire entry satisfies both requirements simultaneously.
	assert.True(t, meetsRequirements(entries, reqs))
}

func TestMeetsRequirements_Shortfall(t *testing.T) {
	entries := []*model.CollectionEntry{
		entryWith(model.RarityNormal, "Feu"),
		entryWith(model.RarityNormal, "Plante"),
	}
	reqs := []model.RequirementEntry{
		{Type: model.RequirementType, Value: "feu", Quantity: 2},
	}

	assert.False(t, meetsRequirements(entries, reqs))
}

func TestMeetsRequirements_NoRequirements(t *testing.T) {
	assert.True(t, meetsRequirements(nil, nil))
}
