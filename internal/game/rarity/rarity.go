// Package rarity implements the weighted rarity draw used by ball
// openings and expedition generation.
package rarity

import (
	"errors"
	"fmt"

	"poke-collect/internal/model"
	"poke-collect/internal/rng"
)

// Errors for rarity draws.
var (
	ErrEmptyTable   = errors.New("rarity table has no buckets")
	ErrUnknownTable = errors.New("unknown ball kind")
)

// Bucket is one category of an ordered weighted table.
type Bucket struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// Table is an ordered discrete distribution. Order matters: the draw walks
// the buckets cumulatively and the first bucket whose cumulative weight
// reaches the drawn value absorbs floating-point rounding slack.
type Table []Bucket

// DefaultBallTables returns the catalog draw tables per ball kind.
func DefaultBallTables() map[string]Table {
	return map[string]Table{
		model.BallPokeball: {
			{Name: model.RarityNormal, Weight: 70},
			{Name: model.RarityRare, Weight: 27},
			{Name: model.RarityEpic, Weight: 2.7},
			{Name: model.RarityLegendary, Weight: 0.3},
		},
		model.BallMasterball: {
			{Name: model.RarityNormal, Weight: 34},
			{Name: model.RarityRare, Weight: 60},
			{Name: model.RarityEpic, Weight: 5},
			{Name: model.RarityLegendary, Weight: 1},
		},
	}
}

// DefaultExpeditionTable returns the rarity weights used when generating
// daily expedition assignments.
func DefaultExpeditionTable() Table {
	return Table{
		{Name: model.RarityNormal, Weight: 50},
		{Name: model.RarityRare, Weight: 30},
		{Name: model.RarityEpic, Weight: 15},
		{Name: model.RarityLegendary, Weight: 5},
	}
}

// Total returns the sum of all bucket weights.
func (t Table) Total() float64 {
	var total float64
	for _, b := range t {
		total += b.Weight
	}
	return total
}

// Validate checks that the table is drawable.
func (t Table) Validate() error {
	if len(t) == 0 {
		return ErrEmptyTable
	}
	for _, b := range t {
		if b.Weight <= 0 {
			return fmt.Errorf("bucket %q has non-positive weight %v", b.Name, b.Weight)
		}
	}
	return nil
}

// Pick draws one bucket name with probability weight/total. The draw is
// uniform in (0, total]; the walk returns the first bucket whose cumulative
// weight is >= the drawn value, so a draw landing exactly on a boundary
// resolves to the earlier bucket. If accumulation never reaches the draw
// (floating-point loss), the last bucket wins.
func (t Table) Pick(src rng.Source) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	// The complement maps the source's [0, 1) onto (0, total].
	draw := (1 - src.Float64()) * t.Total()

	var cumulative float64
	for _, b := range t {
		cumulative += b.Weight
		if cumulative >= draw {
			return b.Name, nil
		}
	}
	return t[len(t)-1].Name, nil
}
