package lotofacil

import (
	"math"
	"math/bits"
)

// CombinationIterator enumerates the k-sized subsets of a universe in strict
// lexicographic order. It holds the current index stack and is not restartable:
// once Next reports false it keeps reporting false.
type CombinationIterator struct {
	universe []Number
	k        int
	idx      []int
	started  bool
	done     bool
}

// NewCombinationIterator creates an iterator over the de-duplicated, sorted universe.
// A universe smaller than k yields nothing; k == 0 yields a single empty combination.
func NewCombinationIterator(universe []Number, k int) *CombinationIterator {
	return &CombinationIterator{
		universe: UniqueSorted(universe),
		k:        k,
	}
}

// Next returns the next combination, or false once the space is exhausted.
// The returned Game is freshly allocated.
func (it *CombinationIterator) Next() (Game, bool) {
	if it.done {
		return nil, false
	}

	n := len(it.universe)
	if !it.started {
		it.started = true
		if it.k < 0 || it.k > n {
			it.done = true
			return nil, false
		}
		it.idx = make([]int, it.k)
		for i := range it.idx {
			it.idx[i] = i
		}
		return it.current(), true
	}

	i := it.k - 1
	for i >= 0 && it.idx[i] == n-it.k+i {
		i--
	}
	if i < 0 {
		it.done = true
		return nil, false
	}
	it.idx[i]++
	for j := i + 1; j < it.k; j++ {
		it.idx[j] = it.idx[j-1] + 1
	}
	return it.current(), true
}

func (it *CombinationIterator) current() Game {
	g := make(Game, it.k)
	for i, p := range it.idx {
		g[i] = it.universe[p]
	}
	return g
}

// ForEachCombination calls visit for each k-subset of universe in lexicographic
// order until visit returns false or the space is exhausted.
func ForEachCombination(universe []Number, k int, visit func(Game) bool) {
	it := NewCombinationIterator(universe, k)
	for {
		g, ok := it.Next()
		if !ok || !visit(g) {
			return
		}
	}
}

// CombinationCount returns C(n, k), saturating at math.MaxUint64
func CombinationCount(n, k int) uint64 {
	if k < 0 || n < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	var result uint64 = 1
	for i := 1; i <= k; i++ {
		// result * (n-k+i) / i stays integral at every step
		hi, lo := bits.Mul64(result, uint64(n-k+i))
		if hi >= uint64(i) {
			return math.MaxUint64
		}
		result, _ = bits.Div64(hi, lo, uint64(i))
	}
	return result
}

// CombinationRequest describes a plain enumeration run
type CombinationRequest struct {
	// Universe defaults to 1..25 when empty
	Universe []Number   `json:"universe,omitempty"`
	GameSize int        `json:"game_size"`
	Limit    int        `json:"limit,omitempty"`
	Filters  *FilterSet `json:"filters,omitempty"`
	Balanced bool       `json:"balanced,omitempty"`
}

// GenerateCombinations enumerates combinations in lexicographic order, keeping those
// that pass the filters (and the balanced heuristic when requested), up to Limit.
// A zero Limit uses DefaultCombinationLimit.
func GenerateCombinations(req CombinationRequest) (*StrategyResult, error) {
	return generateCombinations(req, DefaultCombinationLimit)
}

func generateCombinations(req CombinationRequest, defaultLimit int) (*StrategyResult, error) {
	if err := validateGameSize(req.GameSize); err != nil {
		return nil, err
	}
	universe, err := resolveUniverse(req.Universe, req.GameSize)
	if err != nil {
		return nil, err
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	games := make([]Game, 0, min(limit, 64))
	ForEachCombination(universe, req.GameSize, func(g Game) bool {
		if req.Balanced && !IsBalanced(g) {
			return true
		}
		if !req.Filters.Passes(g) {
			return true
		}
		games = append(games, g)
		return len(games) < limit
	})

	mode := ModeCombinations
	if req.Balanced {
		mode = ModeBalanced
	}
	result := newResult(mode, games)
	result.Metadata.Universe = universe
	return result, nil
}

// resolveUniverse de-duplicates the universe, defaulting to 1..25, and checks that
// it can hold a game of the given size.
func resolveUniverse(universe []Number, size int) ([]Number, error) {
	if len(universe) == 0 {
		universe = AllNumbers()
	}
	universe = UniqueSorted(universe)
	if err := validateNumbers(universe); err != nil {
		return nil, err
	}
	if len(universe) < size {
		return nil, ErrInsufficientUniverse.WithDetailsf("universe has %d numbers, game needs %d", len(universe), size)
	}
	return universe, nil
}
