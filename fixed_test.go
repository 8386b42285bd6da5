package lotofacil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateFixedNumbers(t *testing.T) {
	t.Run("rotates_default_pool", func(t *testing.T) {
		result, err := GenerateFixedNumbers(FixedNumbersOptions{
			Fixed:    seq(1, 5),
			GameSize: 15,
			Count:    3,
			Random:   NewSeededSource(1),
		})
		require.NoError(t, err)
		require.Len(t, result.Games, 3)

		assert.Equal(t, Game(seq(1, 15)), result.Games[0])
		assert.Equal(t, Game(append(seq(1, 5), seq(16, 25)...)), result.Games[1])
		assert.Equal(t, result.Games[0], result.Games[2])
		assert.Equal(t, ModeFixedNumbers, result.Metadata.Strategy)
		assert.Equal(t, AllNumbers(), result.Metadata.Universe)
	})

	t.Run("explicit_pool_is_padded", func(t *testing.T) {
		result, err := GenerateFixedNumbers(FixedNumbersOptions{
			Fixed:    seq(1, 5),
			Floating: nums(7, 6, 3),
			GameSize: 15,
			Count:    2,
		})
		require.NoError(t, err)
		for _, g := range result.Games {
			assert.Equal(t, Game(seq(1, 15)), g)
		}
		assert.Equal(t, seq(1, 15), result.Metadata.Universe)
	})

	t.Run("filtered_games_keep_fixed_numbers", func(t *testing.T) {
		fixed := nums(2, 4, 6, 8, 10, 12)
		result, err := GenerateFixedNumbers(FixedNumbersOptions{
			Fixed:    fixed,
			GameSize: 16,
			Count:    5,
			Filters:  &FilterSet{Sum: ptr(Between(190, 230))},
			Random:   NewSeededSource(42),
		})
		require.NoError(t, err)
		require.NotEmpty(t, result.Games)
		for _, g := range result.Games {
			require.NoError(t, g.Validate())
			assert.Len(t, g, 16)
			for _, n := range fixed {
				assert.True(t, g.Contains(n))
			}
			sum := CalculateMetrics(g, nil).Sum
			assert.True(t, sum >= 190 && sum <= 230, "sum %d", sum)
		}
	})

	t.Run("impossible_filters", func(t *testing.T) {
		_, err := GenerateFixedNumbers(FixedNumbersOptions{
			Fixed:    seq(1, 5),
			GameSize: 15,
			Count:    3,
			Filters:  &FilterSet{Sum: ptr(AtLeast(1000))},
			Random:   NewSeededSource(7),
		})
		assert.True(t, errors.Is(err, ErrNoGamesGenerated))
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name    string
			opts    FixedNumbersOptions
			wantErr error
		}{
			{"too_few_fixed", FixedNumbersOptions{Fixed: seq(1, 4), GameSize: 15, Count: 1}, ErrInvalidFixedCount},
			{"too_many_fixed", FixedNumbersOptions{Fixed: seq(1, 11), GameSize: 15, Count: 1}, ErrInvalidFixedCount},
			{"duplicates_do_not_count", FixedNumbersOptions{Fixed: nums(1, 1, 2, 2, 3), GameSize: 15, Count: 1}, ErrInvalidFixedCount},
			{"bad_size", FixedNumbersOptions{Fixed: seq(1, 5), GameSize: 21, Count: 1}, ErrInvalidGameSize},
			{"bad_count", FixedNumbersOptions{Fixed: seq(1, 5), GameSize: 15, Count: 0}, ErrInvalidCount},
			{"bad_fixed_number", FixedNumbersOptions{Fixed: nums(1, 2, 3, 4, 26), GameSize: 15, Count: 1}, ErrInvalidNumber},
			{"bad_floating_number", FixedNumbersOptions{Fixed: seq(1, 5), Floating: nums(0), GameSize: 15, Count: 1}, ErrInvalidNumber},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := GenerateFixedNumbers(tt.opts)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			})
		}
	})
}

func TestFloatingPool(t *testing.T) {
	assert.Equal(t, seq(6, 25), floatingPool(seq(1, 5), nil, 10))
	assert.Equal(t, nums(9, 10, 6, 7), floatingPool(seq(1, 5), nums(10, 9, 3), 4))
	assert.Equal(t, nums(20, 21, 22), floatingPool(seq(1, 5), nums(22, 21, 20), 2))
}
