// Package fusion defines the star-upgrade recipes.
//
// The primary requirement always consumes duplicates of the target's own
// species at the target's current star. From star 2 up a secondary
// requirement additionally consumes entries of any species one star below
// the target. Materials must match the target's shininess exactly.
package fusion

import (
	"errors"

	"poke-collect/internal/model"
)

// ErrMaxStar is returned when the target already sits at the star ceiling.
var ErrMaxStar = errors.New("entry is already at maximum star")

// Recipe describes what one star promotion consumes.
type Recipe struct {
	// FromStar is the target's current star; the promotion yields FromStar+1.
	FromStar int
	// PrimaryCount duplicates of the same species at FromStar.
	PrimaryCount int
	// SecondaryCount entries of any species at SecondaryStar. Zero means
	// the recipe has no secondary requirement.
	SecondaryCount int
	SecondaryStar  int
}

var recipes = [model.MaxStar]Recipe{
	{FromStar: 0, PrimaryCount: 1},
	{FromStar: 1, PrimaryCount: 2},
	{FromStar: 2, PrimaryCount: 2, SecondaryCount: 1, SecondaryStar: 1},
	{FromStar: 3, PrimaryCount: 3, SecondaryCount: 1, SecondaryStar: 2},
	{FromStar: 4, PrimaryCount: 3, SecondaryCount: 2, SecondaryStar: 3},
	{FromStar: 5, PrimaryCount: 4, SecondaryCount: 2, SecondaryStar: 4},
}

// Requirements returns the recipe for promoting an entry at the given star.
func Requirements(star int) (Recipe, error) {
	if star < 0 || star >= model.MaxStar {
		return Recipe{}, ErrMaxStar
	}
	return recipes[star], nil
}

// MaterialCount is the total number of entries the recipe consumes.
func (r Recipe) MaterialCount() int {
	return r.PrimaryCount + r.SecondaryCount
}
