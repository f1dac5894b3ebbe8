package xp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"poke-collect/internal/model"
)

func TestForNewEntry(t *testing.T) {
	tests := []struct {
		name       string
		rarity     string
		shiny      bool
		firstCatch bool
		expected   int64
	}{
		{"normal", model.RarityNormal, false, false, 1},
		{"normal shiny", model.RarityNormal, true, false, 5},
		{"normal first catch", model.RarityNormal, false, true, 2},
		{"rare", model.RarityRare, false, false, 5},
		{"rare shiny first", model.RarityRare, true, true, 15},
		{"epic", model.RarityEpic, false, false, 10},
		{"epic shiny", model.RarityEpic, true, false, 20},
		{"legendary", model.RarityLegendary, false, false, 35},
		{"legendary shiny", model.RarityLegendary, true, false, 70},
		{"legendary shiny first", model.RarityLegendary, true, true, 85},
		{"unknown rarity", "mythic", true, true, 0},
	}

	tables := DefaultTables()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tables.ForNewEntry(tt.rarity, tt.shiny, tt.firstCatch))
		})
	}
}

func TestLevelForXP(t *testing.T) {
	thresholds := DefaultThresholds(100)

	assert.Equal(t, 1, LevelForXP(thresholds, 0))
	assert.Equal(t, 1, LevelForXP(thresholds, 299))
	assert.Equal(t, 2, LevelForXP(thresholds, 300)) // 50*2*3
	assert.Equal(t, 3, LevelForXP(thresholds, 600)) // 50*3*4
	assert.Equal(t, 1, LevelForXP(nil, 1<<40))
}

// Level is non-decreasing in total xp.
func TestLevelForXP_Monotonic(t *testing.T) {
	thresholds := DefaultThresholds(200)
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Int64Range(0, 5_000_000).Draw(t, "a")
		b := rapid.Int64Range(0, 5_000_000).Draw(t, "b")
		if a > b {
			a, b = b, a
		}
		if LevelForXP(thresholds, a) > LevelForXP(thresholds, b) {
			t.Fatalf("level decreased between xp %d and %d", a, b)
		}
	})
}
