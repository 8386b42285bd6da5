package lotofacil

import "slices"

// SmartSpreadOptions configures GenerateSmartSpread
type SmartSpreadOptions struct {
	Base     []Number `json:"base"`
	GameSize int      `json:"game_size"`
	Count    int      `json:"count"`

	// Guarantee is an optional hint; zero means none
	Guarantee GuaranteeLevel `json:"guarantee,omitempty"`
	Filters   *FilterSet     `json:"filters,omitempty"`
}

// pairSet marks covered number pairs; index (a-1)*25 + (b-1) with a < b.
type pairSet [TotalNumbers * TotalNumbers]bool

func pairIndex(a, b Number) int {
	if a > b {
		a, b = b, a
	}
	return int(a-1)*TotalNumbers + int(b-1)
}

// GenerateSmartSpread picks pairwise diverse, well balanced games from the base
// universe. It first collects DefaultSmartPoolFactor times Count balanced candidates,
// then repeatedly takes the best scoring one, where the score is
//
//	BalanceScore + 0.01*uncoveredPairs + 0.1*(size/guarantee, or 1 without a hint)
//
// and marks its pairs as covered.
func GenerateSmartSpread(opts SmartSpreadOptions) (*StrategyResult, error) {
	return generateSmartSpread(opts, DefaultSmartPoolFactor)
}

func generateSmartSpread(opts SmartSpreadOptions, poolFactor int) (*StrategyResult, error) {
	if err := validateGameSize(opts.GameSize); err != nil {
		return nil, err
	}
	if err := validateCount(opts.Count); err != nil {
		return nil, err
	}
	if opts.Guarantee != 0 && !opts.Guarantee.Valid() {
		return nil, ErrInvalidGuarantee.WithDetailsf("hint %d", opts.Guarantee)
	}
	if len(opts.Base) == 0 {
		return nil, ErrInsufficientUniverse.WithDetails("base universe is empty")
	}
	universe, err := resolveUniverse(opts.Base, opts.GameSize)
	if err != nil {
		return nil, err
	}
	if poolFactor <= 0 {
		poolFactor = DefaultSmartPoolFactor
	}

	pool, err := generateCombinations(CombinationRequest{
		Universe: universe,
		GameSize: opts.GameSize,
		Limit:    opts.Count * poolFactor,
		Filters:  opts.Filters,
		Balanced: true,
	}, opts.Count*poolFactor)
	if err != nil {
		return nil, err
	}
	candidates := pool.Games

	// Balance scores never change between rounds.
	balance := make([]float64, len(candidates))
	for i, g := range candidates {
		balance[i] = BalanceScore(g)
	}
	sizeRatio := 1.0
	if opts.Guarantee > 0 {
		sizeRatio = float64(opts.GameSize) / float64(opts.Guarantee)
	}

	var covered pairSet
	selected := make([]Game, 0, opts.Count)
	for len(candidates) > 0 && len(selected) < opts.Count {
		best := 0
		bestScore := 0.0
		for i, g := range candidates {
			fresh := 0
			for a := 0; a < len(g)-1; a++ {
				for b := a + 1; b < len(g); b++ {
					if !covered[pairIndex(g[a], g[b])] {
						fresh++
					}
				}
			}
			score := balance[i] + float64(fresh)*0.01 + sizeRatio*0.1
			if i == 0 || score > bestScore {
				best, bestScore = i, score
			}
		}

		chosen := candidates[best]
		selected = append(selected, chosen)
		for a := 0; a < len(chosen)-1; a++ {
			for b := a + 1; b < len(chosen); b++ {
				covered[pairIndex(chosen[a], chosen[b])] = true
			}
		}
		candidates = slices.Delete(candidates, best, best+1)
		balance = slices.Delete(balance, best, best+1)
	}

	result := newResult(ModeSmartSpread, selected)
	result.Metadata.Universe = universe
	result.Metadata.Guarantee = opts.Guarantee
	result.Metadata.Notes = "spread favours balanced games and pairs not yet covered"
	return result, nil
}
