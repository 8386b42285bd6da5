package lotofacil

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(universe []Number, k int) []Game {
	var out []Game
	ForEachCombination(universe, k, func(g Game) bool {
		out = append(out, g)
		return true
	})
	return out
}

func TestCombinationIterator(t *testing.T) {
	t.Run("lexicographic_order", func(t *testing.T) {
		got := collect(nums(5, 3, 1, 2, 4, 3), 3)
		want := []Game{
			{1, 2, 3}, {1, 2, 4}, {1, 2, 5}, {1, 3, 4}, {1, 3, 5},
			{1, 4, 5}, {2, 3, 4}, {2, 3, 5}, {2, 4, 5}, {3, 4, 5},
		}
		assert.Equal(t, want, got)
	})

	t.Run("k_zero_yields_empty_combination", func(t *testing.T) {
		got := collect(seq(1, 4), 0)
		require.Len(t, got, 1)
		assert.Empty(t, got[0])
	})

	t.Run("k_larger_than_universe", func(t *testing.T) {
		assert.Empty(t, collect(seq(1, 4), 5))
	})

	t.Run("k_equal_to_universe", func(t *testing.T) {
		assert.Equal(t, []Game{{1, 2, 3, 4}}, collect(seq(1, 4), 4))
	})

	t.Run("exhausted_iterator_stays_exhausted", func(t *testing.T) {
		it := NewCombinationIterator(seq(1, 2), 2)
		_, ok := it.Next()
		require.True(t, ok)
		_, ok = it.Next()
		assert.False(t, ok)
		_, ok = it.Next()
		assert.False(t, ok)
	})

	t.Run("returned_games_are_independent", func(t *testing.T) {
		it := NewCombinationIterator(seq(1, 4), 2)
		first, _ := it.Next()
		second, _ := it.Next()
		first[0] = 9
		assert.Equal(t, Game{1, 3}, second)
	})

	t.Run("early_stop", func(t *testing.T) {
		calls := 0
		ForEachCombination(seq(1, 25), 15, func(Game) bool {
			calls++
			return calls < 3
		})
		assert.Equal(t, 3, calls)
	})
}

func TestCombinationCount(t *testing.T) {
	tests := []struct {
		name string
		n, k int
		want uint64
	}{
		{"c_5_3", 5, 3, 10},
		{"c_25_15", 25, 15, 3268760},
		{"c_25_20", 25, 20, 53130},
		{"c_10_0", 10, 0, 1},
		{"c_10_10", 10, 10, 1},
		{"k_too_large", 3, 4, 0},
		{"negative_k", 3, -1, 0},
		{"saturates", 200, 100, math.MaxUint64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CombinationCount(tt.n, tt.k))
		})
	}
}

func TestGenerateCombinations(t *testing.T) {
	t.Run("first_games_in_order", func(t *testing.T) {
		result, err := GenerateCombinations(CombinationRequest{GameSize: 15, Limit: 3})
		require.NoError(t, err)
		require.Len(t, result.Games, 3)

		assert.Equal(t, Game(append(seq(1, 14), 15)), result.Games[0])
		assert.Equal(t, Game(append(seq(1, 14), 16)), result.Games[1])
		assert.Equal(t, Game(append(seq(1, 14), 17)), result.Games[2])
		assert.Equal(t, ModeCombinations, result.Metadata.Strategy)
		assert.Equal(t, 3, result.Metadata.GamesGenerated)
		assert.Equal(t, AllNumbers(), result.Metadata.Universe)
	})

	t.Run("default_limit", func(t *testing.T) {
		result, err := GenerateCombinations(CombinationRequest{GameSize: 15})
		require.NoError(t, err)
		assert.Len(t, result.Games, DefaultCombinationLimit)
	})

	t.Run("small_universe_enumerates_everything", func(t *testing.T) {
		result, err := GenerateCombinations(CombinationRequest{Universe: seq(1, 17), GameSize: 15, Limit: 1000})
		require.NoError(t, err)
		assert.Len(t, result.Games, int(CombinationCount(17, 15)))
	})

	t.Run("filters_applied", func(t *testing.T) {
		result, err := GenerateCombinations(CombinationRequest{
			GameSize: 15,
			Limit:    20,
			Filters:  &FilterSet{Sum: ptr(AtLeast(195))},
		})
		require.NoError(t, err)
		require.NotEmpty(t, result.Games)
		for _, g := range result.Games {
			assert.GreaterOrEqual(t, CalculateMetrics(g, nil).Sum, 195)
		}
	})

	t.Run("balanced_mode", func(t *testing.T) {
		result, err := GenerateCombinations(CombinationRequest{GameSize: 15, Limit: 1, Balanced: true})
		require.NoError(t, err)
		require.Len(t, result.Games, 1)
		assert.Equal(t, Game(nums(1, 2, 3, 4, 5, 6, 7, 8, 9, 14, 15, 19, 23, 24, 25)), result.Games[0])
		assert.Equal(t, ModeBalanced, result.Metadata.Strategy)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := GenerateCombinations(CombinationRequest{GameSize: 14})
		assert.True(t, errors.Is(err, ErrInvalidGameSize))

		_, err = GenerateCombinations(CombinationRequest{GameSize: 15, Universe: seq(1, 10)})
		assert.True(t, errors.Is(err, ErrInsufficientUniverse))

		_, err = GenerateCombinations(CombinationRequest{GameSize: 15, Universe: append(seq(1, 15), 30)})
		assert.True(t, errors.Is(err, ErrInvalidNumber))
	})
}
