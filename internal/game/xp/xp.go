// Package xp holds the experience tables and the level curve.
package xp

import "poke-collect/internal/model"

// RarityXP is the base experience for a new entry of one rarity, with the
// shiny column roughly doubled.
type RarityXP struct {
	Normal int64 `json:"normal"`
	Shiny  int64 `json:"shiny"`
}

// Tables groups the per-rarity experience values. The zero value awards
// nothing; configuration can override the defaults wholesale.
type Tables struct {
	Base       map[string]RarityXP `json:"base"`
	FirstCatch map[string]int64    `json:"first_catch"`
}

// DefaultTables returns the compiled experience tables.
func DefaultTables() Tables {
	return Tables{
		Base: map[string]RarityXP{
			model.RarityNormal:    {Normal: 1, Shiny: 5},
			model.RarityRare:      {Normal: 5, Shiny: 10},
			model.RarityEpic:      {Normal: 10, Shiny: 20},
			model.RarityLegendary: {Normal: 35, Shiny: 70},
		},
		FirstCatch: map[string]int64{
			model.RarityNormal:    1,
			model.RarityRare:      5,
			model.RarityEpic:      10,
			model.RarityLegendary: 15,
		},
	}
}

// ForNewEntry computes the experience awarded for a freshly created
// collection entry. The first-catch bonus applies only when the player
// owned zero copies of the species before this entry. Unknown rarities
// award nothing.
func (t Tables) ForNewEntry(rarity string, shiny, firstCatch bool) int64 {
	base, ok := t.Base[rarity]
	if !ok {
		return 0
	}
	amount := base.Normal
	if shiny {
		amount = base.Shiny
	}
	if firstCatch {
		amount += t.FirstCatch[rarity]
	}
	return amount
}

// DefaultThresholds builds the fallback cumulative level curve up to
// maxLevel: reaching level n requires 50*n*(n+1) total experience.
// thresholds[i] is the total xp needed for level i+2 (level 1 is free).
func DefaultThresholds(maxLevel int) []int64 {
	if maxLevel < 2 {
		return nil
	}
	thresholds := make([]int64, 0, maxLevel-1)
	for n := int64(2); n <= int64(maxLevel); n++ {
		thresholds = append(thresholds, 50*n*(n+1))
	}
	return thresholds
}

// LevelForXP derives the level for a total experience value against a
// sorted cumulative threshold table. With an empty table every xp value
// maps to level 1.
func LevelForXP(thresholds []int64, totalXP int64) int {
	level := 1
	for _, need := range thresholds {
		if totalXP < need {
			break
		}
		level++
	}
	return level
}
