package lotofacil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrizeTierFor(t *testing.T) {
	tests := []struct {
		hits int
		want PrizeTier
	}{
		{0, TierNone},
		{10, TierNone},
		{11, "11"},
		{12, "12"},
		{13, "13"},
		{14, "14"},
		{15, "15"},
		{18, "15"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PrizeTierFor(tt.hits), "hits %d", tt.hits)
	}
}

func TestCheckGames(t *testing.T) {
	drawn := seq(1, 15)
	games := []Game{
		Game(seq(1, 15)),
		Game(seq(2, 16)),
		Game(append(seq(1, 11), seq(20, 24)...)),
		Game(seq(11, 25)),
	}

	checks := CheckGames(games, drawn)
	require.Len(t, checks, 4)

	assert.Equal(t, GameCheck{Game: games[0], Hits: 15, Tier: "15"}, checks[0])
	assert.Equal(t, 14, checks[1].Hits)
	assert.Equal(t, PrizeTier("14"), checks[1].Tier)
	assert.Equal(t, 11, checks[2].Hits)
	assert.Equal(t, PrizeTier("11"), checks[2].Tier)
	assert.Equal(t, 5, checks[3].Hits)
	assert.Equal(t, TierNone, checks[3].Tier)

	assert.Equal(t, []int{15, 14, 11, 5}, RepetitionCounts(games, drawn))
}

func TestCountHits(t *testing.T) {
	assert.Equal(t, 0, CountHits(nil, seq(1, 15)))
	assert.Equal(t, 3, CountHits(nums(1, 2, 3, 24), nums(3, 2, 1)))
}

func TestLowHighAndRowColumn(t *testing.T) {
	games := []Game{Game(seq(1, 15)), Game(seq(11, 25))}

	assert.Equal(t, []LowHigh{{Low: 13, High: 2}, {Low: 3, High: 12}}, LowHighSplits(games))

	stats := RowColumnStats(games)
	require.Len(t, stats, 2)
	assert.Equal(t, [GridSide]int{5, 5, 5, 0, 0}, stats[0].Rows)
	assert.Equal(t, [GridSide]int{0, 0, 5, 5, 5}, stats[1].Rows)
	assert.Equal(t, [GridSide]int{3, 3, 3, 3, 3}, stats[1].Columns)
}
