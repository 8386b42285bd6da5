package lotofacil

import "math"

// IsBalanced reports whether a game looks like a typical draw: parity within 2 of
// half the size, low/high split within 3, sum within 2*size of 13*size and at least
// four occupied rows and columns.
func IsBalanced(game []Number) bool {
	if len(game) == 0 {
		return false
	}
	m := CalculateMetrics(game, nil)
	size := float64(len(game))

	parityDiff := math.Abs(float64(m.Even) - size/2)
	lowHighDiff := math.Abs(float64(m.Low - m.High))
	sumDiff := math.Abs(float64(m.Sum) - 13*size)

	return parityDiff <= 2 &&
		lowHighDiff <= 3 &&
		sumDiff <= 2*size &&
		occupied(m.Rows) >= 4 &&
		occupied(m.Columns) >= 4
}

// BalanceScore rates a game in [0, 1] as the mean of its parity, low/high,
// row spread and column spread scores.
func BalanceScore(game []Number) float64 {
	if len(game) == 0 {
		return 0
	}
	m := CalculateMetrics(game, nil)
	size := float64(len(game))

	parity := 1 - math.Abs(float64(m.Even)-size/2)/size
	lowHigh := 1 - math.Abs(float64(m.Low-m.High))/size
	rows := float64(occupied(m.Rows)) / GridSide
	cols := float64(occupied(m.Columns)) / GridSide

	return (parity + lowHigh + rows + cols) / 4
}

// BalancedOptions configures GenerateBalanced
type BalancedOptions struct {
	GameSize int        `json:"game_size"`
	Count    int        `json:"count"`
	Universe []Number   `json:"universe,omitempty"`
	Filters  *FilterSet `json:"filters,omitempty"`
}

// GenerateBalanced returns up to Count balanced games, in enumeration order, that
// also pass the filter set.
func GenerateBalanced(opts BalancedOptions) (*StrategyResult, error) {
	if err := validateCount(opts.Count); err != nil {
		return nil, err
	}
	result, err := generateCombinations(CombinationRequest{
		Universe: opts.Universe,
		GameSize: opts.GameSize,
		Limit:    opts.Count,
		Filters:  opts.Filters,
		Balanced: true,
	}, opts.Count)
	if err != nil {
		return nil, err
	}
	result.Metadata.Notes = "games selected under parity, row and low/high balance constraints"
	return result, nil
}
