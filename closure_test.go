package lotofacil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uncoveredSubsets brute forces the t-subsets of universe not contained in any chosen set
func uncoveredSubsets(universe []Number, t int, chosen []numberSet) int {
	missing := 0
	forEachMask(universe, t, func(s numberSet) {
		for _, c := range chosen {
			if c&s == s {
				return
			}
		}
		missing++
	})
	return missing
}

func TestGreedyCover(t *testing.T) {
	t.Run("covers_every_target", func(t *testing.T) {
		universe := seq(1, 8)
		res, err := greedyCover(universe, 5, 3, 0, nil, defaultClosureBudget())
		require.NoError(t, err)

		assert.Equal(t, 56, res.total)
		assert.Equal(t, 56, res.covered)
		assert.Zero(t, uncoveredSubsets(universe, 3, res.chosen))
		// C(8,5) = 56 candidates; greedy needs far fewer than that
		assert.Less(t, len(res.chosen), 20)
		for _, c := range res.chosen {
			assert.Equal(t, 5, c.count())
		}
	})

	t.Run("first_pick_is_lexicographic", func(t *testing.T) {
		res, err := greedyCover(seq(1, 8), 5, 3, 1, nil, defaultClosureBudget())
		require.NoError(t, err)
		require.Len(t, res.chosen, 1)
		assert.Equal(t, seq(1, 5), res.chosen[0].numbers())
		assert.Equal(t, 10, res.covered)
	})

	t.Run("zero_subset_returns_first_candidate", func(t *testing.T) {
		res, err := greedyCover(seq(3, 9), 4, 0, 0, nil, defaultClosureBudget())
		require.NoError(t, err)
		require.Len(t, res.chosen, 1)
		assert.Equal(t, seq(3, 6), res.chosen[0].numbers())
		assert.Zero(t, res.total)
	})

	t.Run("accept_vetoes_candidates", func(t *testing.T) {
		no7 := func(m numberSet) bool { return !m.has(7) }
		res, err := greedyCover(seq(1, 8), 5, 3, 0, no7, defaultClosureBudget())
		require.NoError(t, err)
		for _, c := range res.chosen {
			assert.False(t, c.has(7))
		}
		// subsets containing 7 can never be covered: C(7,2) = 21
		assert.Equal(t, 56-21, res.covered)
	})

	t.Run("budget_exceeded", func(t *testing.T) {
		_, err := greedyCover(seq(1, 8), 5, 3, 0, nil, closureBudget{maxWork: 5, maxTargets: 1000})
		assert.True(t, errors.Is(err, ErrClosureTooLarge))

		_, err = greedyCover(seq(1, 8), 5, 3, 0, nil, closureBudget{maxWork: 1000, maxTargets: 10})
		assert.True(t, errors.Is(err, ErrClosureTooLarge))
	})
}

func TestGenerateGuaranteedClosure(t *testing.T) {
	opts := ClosureOptions{
		Fixed:     seq(1, 10),
		Floating:  seq(11, 18),
		GameSize:  15,
		Guarantee: 13,
	}

	t.Run("full_coverage", func(t *testing.T) {
		result, err := GenerateGuaranteedClosure(opts)
		require.NoError(t, err)
		require.NotEmpty(t, result.Games)

		chosen := make([]numberSet, len(result.Games))
		for i, g := range result.Games {
			require.NoError(t, g.Validate())
			for _, n := range seq(1, 10) {
				assert.True(t, g.Contains(n))
			}
			chosen[i] = setOf(g) &^ setOf(seq(1, 10))
		}
		assert.Zero(t, uncoveredSubsets(seq(11, 18), 3, chosen))

		meta := result.Metadata
		assert.Equal(t, ModeClosure, meta.Strategy)
		assert.Equal(t, GuaranteeLevel(13), meta.Guarantee)
		assert.Equal(t, 56, meta.TotalSubsets)
		assert.Equal(t, 56, meta.CoveredSubsets)
		require.NotNil(t, meta.Coverage)
		assert.Equal(t, 1.0, *meta.Coverage)
		assert.Equal(t, seq(1, 18), meta.Universe)
	})

	t.Run("deterministic", func(t *testing.T) {
		a, err := GenerateGuaranteedClosure(opts)
		require.NoError(t, err)
		b, err := GenerateGuaranteedClosure(opts)
		require.NoError(t, err)
		assert.Equal(t, a.Games, b.Games)
	})

	t.Run("max_games_caps_result", func(t *testing.T) {
		capped := opts
		capped.MaxGames = 1
		result, err := GenerateGuaranteedClosure(capped)
		require.NoError(t, err)
		require.Len(t, result.Games, 1)
		assert.Equal(t, Game(seq(1, 15)), result.Games[0])
		assert.Equal(t, 10, result.Metadata.CoveredSubsets)
		assert.InDelta(t, 10.0/56.0, *result.Metadata.Coverage, 1e-9)
	})

	t.Run("fixed_numbers_already_guarantee", func(t *testing.T) {
		result, err := GenerateGuaranteedClosure(ClosureOptions{
			Fixed:     seq(1, 11),
			Floating:  seq(12, 20),
			GameSize:  15,
			Guarantee: 11,
		})
		require.NoError(t, err)
		require.Len(t, result.Games, 1)
		assert.Equal(t, Game(seq(1, 15)), result.Games[0])
		assert.Equal(t, 1.0, *result.Metadata.Coverage)
		assert.Contains(t, result.Metadata.Notes, "fixed numbers alone")
	})

	t.Run("filters_rejecting_everything", func(t *testing.T) {
		filtered := opts
		filtered.Filters = &FilterSet{Sum: ptr(AtLeast(1000))}
		result, err := GenerateGuaranteedClosure(filtered)
		require.NoError(t, err)
		assert.Empty(t, result.Games)
		assert.Equal(t, 56, result.Metadata.TotalSubsets)
		assert.Zero(t, *result.Metadata.Coverage)
	})

	t.Run("work_budget", func(t *testing.T) {
		_, err := generateGuaranteedClosure(opts, closureBudget{maxWork: 1, maxTargets: 1_000_000})
		assert.True(t, errors.Is(err, ErrClosureTooLarge))
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name    string
			opts    ClosureOptions
			wantErr error
		}{
			{"bad_size", ClosureOptions{Floating: seq(1, 25), GameSize: 14, Guarantee: 11}, ErrInvalidGameSize},
			{"guarantee_too_low", ClosureOptions{Floating: seq(1, 25), GameSize: 15, Guarantee: 10}, ErrInvalidGuarantee},
			{"guarantee_too_high", ClosureOptions{Floating: seq(1, 25), GameSize: 15, Guarantee: 15}, ErrInvalidGuarantee},
			{"no_floating", ClosureOptions{Fixed: seq(1, 15), GameSize: 15, Guarantee: 11}, ErrInsufficientFloatingPool},
			{"bad_number", ClosureOptions{Floating: append(seq(1, 15), 26), GameSize: 15, Guarantee: 11}, ErrInvalidNumber},
			{"small_universe", ClosureOptions{Floating: seq(1, 10), GameSize: 15, Guarantee: 11}, ErrInsufficientUniverse},
			{"no_room_for_floating", ClosureOptions{Fixed: seq(1, 15), Floating: nums(16), GameSize: 15, Guarantee: 11}, ErrInvalidFixedCount},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := GenerateGuaranteedClosure(tt.opts)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			})
		}
	})
}

func TestForEachMask(t *testing.T) {
	var masks []numberSet
	forEachMask(nums(2, 4, 6), 2, func(m numberSet) { masks = append(masks, m) })
	require.Len(t, masks, 3)
	assert.Equal(t, nums(2, 4), masks[0].numbers())
	assert.Equal(t, nums(4, 6), masks[2].numbers())

	calls := 0
	forEachMask(nums(1, 2), 0, func(numberSet) { calls++ })
	assert.Equal(t, 1, calls)
}
