package lotofacil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCycleClosure(t *testing.T) {
	t.Run("games_carry_missing_numbers", func(t *testing.T) {
		result, err := GenerateCycleClosure(CycleClosureOptions{History: openCycleHistory(), GameSize: 15, Count: 3})
		require.NoError(t, err)
		require.Len(t, result.Games, 3)

		assert.Equal(t, Game(append(seq(1, 5), seq(16, 25)...)), result.Games[0])
		seen := map[string]bool{}
		for _, g := range result.Games {
			require.NoError(t, g.Validate())
			missing := 0
			for _, n := range g {
				if n >= 16 {
					missing++
				}
			}
			assert.GreaterOrEqual(t, missing, CycleMandatoryMissing)
			assert.False(t, seen[g.Key()])
			seen[g.Key()] = true
		}

		meta := result.Metadata
		assert.Equal(t, ModeCycleClosure, meta.Strategy)
		require.NotNil(t, meta.Cycle)
		assert.Equal(t, seq(16, 25), meta.Cycle.Missing)
		assert.Equal(t, seq(1, 6), meta.Cycle.Hot)
		assert.Equal(t, seq(1, 6), meta.Cycle.RecentlyClosed)
		require.NotNil(t, meta.Cycle.LastClosureContest)
		assert.Equal(t, 2, *meta.Cycle.LastClosureContest)
		assert.Equal(t, "03/01/2024", meta.Cycle.LastClosureDate)
		assert.Equal(t, "Current cycle with 1 draw(s), 10 number(s) missing. closure expected in ~1 draw(s).", meta.Notes)
	})

	t.Run("cycle_just_closed", func(t *testing.T) {
		result, err := GenerateCycleClosure(CycleClosureOptions{History: openCycleHistory()[:2], GameSize: 17, Count: 2})
		require.NoError(t, err)
		require.Len(t, result.Games, 2)
		for _, g := range result.Games {
			require.NoError(t, g.Validate())
			assert.Len(t, g, 17)
		}
		assert.Empty(t, result.Metadata.Cycle.Missing)
		assert.Contains(t, result.Metadata.Notes, "every number has already appeared")
	})

	t.Run("deterministic", func(t *testing.T) {
		opts := CycleClosureOptions{History: openCycleHistory(), GameSize: 18, Count: 4}
		a, err := GenerateCycleClosure(opts)
		require.NoError(t, err)
		b, err := GenerateCycleClosure(opts)
		require.NoError(t, err)
		assert.Equal(t, a.Games, b.Games)
	})

	t.Run("filters_rejecting_everything", func(t *testing.T) {
		_, err := GenerateCycleClosure(CycleClosureOptions{
			History:  openCycleHistory(),
			GameSize: 15,
			Count:    2,
			Filters:  &FilterSet{Sum: ptr(AtMost(5))},
		})
		assert.True(t, errors.Is(err, ErrClosureUnachievable))
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name    string
			opts    CycleClosureOptions
			wantErr error
		}{
			{"empty_history", CycleClosureOptions{GameSize: 15, Count: 1}, ErrEmptyHistory},
			{"bad_size", CycleClosureOptions{History: openCycleHistory(), GameSize: 12, Count: 1}, ErrInvalidGameSize},
			{"bad_count", CycleClosureOptions{History: openCycleHistory(), GameSize: 15}, ErrInvalidCount},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := GenerateCycleClosure(tt.opts)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			})
		}
	})
}

func TestCyclePlanMandatory(t *testing.T) {
	plan := &cyclePlan{missing: nums(3, 5, 7, 9)}

	first, next := plan.mandatory(0)
	assert.Equal(t, nums(3, 5, 7), first)
	assert.Equal(t, 3, next)

	second, next := plan.mandatory(next)
	assert.Equal(t, nums(9, 3, 5), second)
	assert.Equal(t, 2, next)

	short := &cyclePlan{missing: nums(4, 8)}
	all, next := short.mandatory(1)
	assert.Equal(t, nums(4, 8), all)
	assert.Equal(t, 1, next)

	none, _ := (&cyclePlan{}).mandatory(0)
	assert.Nil(t, none)
}
