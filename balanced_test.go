package lotofacil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBalanced(t *testing.T) {
	tests := []struct {
		name string
		game []Number
		want bool
	}{
		{"first_balanced_game", nums(1, 2, 3, 4, 5, 6, 7, 8, 9, 14, 15, 19, 23, 24, 25), true},
		{"too_many_low", seq(1, 15), false},
		{"too_many_high", seq(11, 25), false},
		{"too_many_even", nums(1, 2, 3, 5, 7, 8, 10, 12, 14, 16, 18, 20, 22, 24, 25), false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBalanced(tt.game))
		})
	}
}

func TestBalanceScore(t *testing.T) {
	assert.Zero(t, BalanceScore(nil))

	score := BalanceScore(nums(1, 2, 3, 4, 5, 6, 7, 8, 9, 14, 15, 19, 23, 24, 25))
	assert.Greater(t, score, 0.9)
	assert.LessOrEqual(t, score, 1.0)

	// 1..15 leaves two rows empty and is heavily low
	assert.Less(t, BalanceScore(seq(1, 15)), score)
}

func TestGenerateBalanced(t *testing.T) {
	t.Run("returns_balanced_games", func(t *testing.T) {
		result, err := GenerateBalanced(BalancedOptions{GameSize: 15, Count: 5})
		require.NoError(t, err)
		require.Len(t, result.Games, 5)
		for _, g := range result.Games {
			assert.True(t, IsBalanced(g))
		}
		assert.Equal(t, ModeBalanced, result.Metadata.Strategy)
		assert.NotEmpty(t, result.Metadata.Notes)
	})

	t.Run("honours_filters", func(t *testing.T) {
		result, err := GenerateBalanced(BalancedOptions{
			GameSize: 16,
			Count:    3,
			Filters:  &FilterSet{Even: ptr(Between(8, 8))},
		})
		require.NoError(t, err)
		for _, g := range result.Games {
			assert.Len(t, g, 16)
			assert.Equal(t, 8, CalculateMetrics(g, nil).Even)
		}
	})

	t.Run("invalid_count", func(t *testing.T) {
		_, err := GenerateBalanced(BalancedOptions{GameSize: 15, Count: 0})
		assert.True(t, errors.Is(err, ErrInvalidCount))
	})
}
