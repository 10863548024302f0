package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountVotes(t *testing.T) {
	cases := []struct {
		name    string
		votes   []string
		counts  map[string]int
		leaders []string
	}{
		{
			name:    "clear majority",
			votes:   []string{"x", "x", "y"},
			counts:  map[string]int{"x": 2, "y": 1},
			leaders: []string{"x"},
		},
		{
			name:    "two way tie",
			votes:   []string{"y", "x", "x", "y"},
			counts:  map[string]int{"x": 2, "y": 2},
			leaders: []string{"x", "y"},
		},
		{
			name:    "empty votes ignored",
			votes:   []string{"", "z", ""},
			counts:  map[string]int{"z": 1},
			leaders: []string{"z"},
		},
		{
			name:   "no votes",
			votes:  nil,
			counts: map[string]int{},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			counts, leaders := CountVotes(tc.votes)
			assert.Equal(t, tc.counts, counts)
			assert.Equal(t, tc.leaders, leaders)
		})
	}
}

func TestEliminate(t *testing.T) {
	assert.Equal(t, "", Eliminate(nil, seeded(1)))
	assert.Equal(t, "x", Eliminate([]string{"x"}, seeded(1)))
}

func TestEliminate_TieIsRoughlyUniform(t *testing.T) {
	rng := seeded(99)
	hits := map[string]int{}
	const trials = 2000
	for i := 0; i < trials; i++ {
		hits[Eliminate([]string{"x", "y"}, rng)]++
	}
	assert.InDelta(t, trials/2, hits["x"], 150)
	assert.InDelta(t, trials/2, hits["y"], 150)
}
