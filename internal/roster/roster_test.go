package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamesAreUniqueAndFresh(t *testing.T) {
	names := Names()
	require.Equal(t, Size(), len(names))

	seen := map[string]bool{}
	for _, n := range names {
		assert.Falsef(t, seen[n], "duplicate catalog entry %q", n)
		seen[n] = true
		assert.True(t, Known(n))
	}

	names[0] = "Scaramouche"
	assert.NotEqual(t, "Scaramouche", Names()[0], "Names must return a copy")
}

func TestGet(t *testing.T) {
	r, ok := Get("Jiyan")
	require.True(t, ok)
	assert.Equal(t, 5, r.Rarity)
	assert.True(t, r.Limited)

	_, ok = Get("Jiyann")
	assert.False(t, ok)
}

func TestScoreSequences(t *testing.T) {
	cases := []struct {
		name      string
		in        map[string]int
		wantClean map[string]int
		wantScore int
	}{
		{
			name:      "empty",
			in:        map[string]int{},
			wantClean: map[string]int{},
		},
		{
			name:      "levels sum per point table",
			in:        map[string]int{"Jiyan": 0, "Yinlin": 6, "Verina": 3},
			wantClean: map[string]int{"Jiyan": 0, "Yinlin": 6, "Verina": 3},
			wantScore: 2 + 16 + 10,
		},
		{
			name:      "invalid level dropped, rest kept",
			in:        map[string]int{"Jiyan": 7, "Verina": -1, "Encore": 2},
			wantClean: map[string]int{"Encore": 2},
			wantScore: 8,
		},
		{
			name:      "unknown resonator dropped",
			in:        map[string]int{"Paimon": 6, "Sanhua": 1},
			wantClean: map[string]int{"Sanhua": 1},
			wantScore: 4,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clean, score := ScoreSequences(tc.in)
			assert.Equal(t, tc.wantClean, clean)
			assert.Equal(t, tc.wantScore, score)
		})
	}
}
