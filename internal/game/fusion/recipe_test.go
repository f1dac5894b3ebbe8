package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequirements(t *testing.T) {
	tests := []struct {
		star      int
		primary   int
		secondary int
		secStar   int
	}{
		{0, 1, 0, 0},
		{1, 2, 0, 0},
		{2, 2, 1, 1},
		{3, 3, 1, 2},
		{4, 3, 2, 3},
		{5, 4, 2, 4},
	}

	for _, tt := range tests {
		r, err := Requirements(tt.star)
		require.NoError(t, err, "star %d", tt.star)
		assert.Equal(t, tt.star, r.FromStar)
		assert.Equal(t, tt.primary, r.PrimaryCount, "star %d primary", tt.star)
		assert.Equal(t, tt.secondary, r.SecondaryCount, "star %d secondary", tt.star)
		assert.Equal(t, tt.secStar, r.SecondaryStar, "star %d secondary star", tt.star)
		assert.Equal(t, tt.primary+tt.secondary, r.MaterialCount())
	}
}

func TestRequirements_Ceiling(t *testing.T) {
	_, err := Requirements(6)
	assert.ErrorIs(t, err, ErrMaxStar)

	_, err = Requirements(-1)
	assert.ErrorIs(t, err, ErrMaxStar)
}
