package lotofacil

import "container/heap"

// ClosureOptions configures GenerateGuaranteedClosure
type ClosureOptions struct {
	Fixed     []Number       `json:"fixed,omitempty"`
	Floating  []Number       `json:"floating"`
	GameSize  int            `json:"game_size"`
	Guarantee GuaranteeLevel `json:"guarantee"`

	// MaxGames caps the closure; zero means no cap
	MaxGames int        `json:"max_games,omitempty"`
	Filters  *FilterSet `json:"filters,omitempty"`
}

// closureBudget bounds the memory and CPU a single closure may use.
type closureBudget struct {
	maxWork    uint64
	maxTargets uint64
}

func defaultClosureBudget() closureBudget {
	return closureBudget{maxWork: DefaultClosureMaxWork, maxTargets: DefaultClosureMaxTargets}
}

// GenerateGuaranteedClosure selects games F ∪ C, where C ranges over the
// (GameSize-|F|)-subsets of the floating numbers V, so that every
// (Guarantee-|F|)-subset of V lies inside at least one chosen game.
//
// Selection is the greedy set cover heuristic: each round takes the candidate that
// covers the most still uncovered subsets, ties going to the first candidate in
// lexicographic order. It is a best effort approximation, not a minimum cover.
// Candidates rejected by the filters are skipped, so the reported coverage is
// measured rather than assumed. The result is deterministic.
func GenerateGuaranteedClosure(opts ClosureOptions) (*StrategyResult, error) {
	return generateGuaranteedClosure(opts, defaultClosureBudget())
}

func generateGuaranteedClosure(opts ClosureOptions, budget closureBudget) (*StrategyResult, error) {
	if err := validateGameSize(opts.GameSize); err != nil {
		return nil, err
	}
	if !opts.Guarantee.Valid() {
		return nil, ErrInvalidGuarantee.WithDetailsf("requested %d", opts.Guarantee)
	}
	if len(opts.Floating) == 0 {
		return nil, ErrInsufficientFloatingPool.WithDetails("closure needs floating numbers")
	}
	if err := validateNumbers(opts.Fixed); err != nil {
		return nil, err
	}
	if err := validateNumbers(opts.Floating); err != nil {
		return nil, err
	}

	fixed := UniqueSorted(opts.Fixed)
	floating := without(UniqueSorted(opts.Floating), setOf(fixed))
	universe := mergeSorted(fixed, floating)

	if len(universe) < opts.GameSize {
		return nil, ErrInsufficientUniverse.WithDetailsf("universe has %d numbers, game needs %d", len(universe), opts.GameSize)
	}
	pick := opts.GameSize - len(fixed)
	if pick <= 0 {
		return nil, ErrInvalidFixedCount.WithDetailsf("%d fixed numbers leave no room in a %d number game", len(fixed), opts.GameSize)
	}
	if int(opts.Guarantee) > opts.GameSize {
		return nil, ErrGuaranteeUnreachable.WithDetailsf("guarantee %d exceeds game size %d", opts.Guarantee, opts.GameSize)
	}
	subset := max(int(opts.Guarantee)-len(fixed), 0)
	if subset > len(floating) {
		return nil, ErrGuaranteeUnreachable.WithDetailsf("guarantee needs %d floating numbers, only %d available", subset, len(floating))
	}

	fixedSet := setOf(fixed)
	accept := func(candidate numberSet) bool {
		return opts.Filters.Passes((fixedSet | candidate).numbers())
	}

	cover, err := greedyCover(floating, pick, subset, opts.MaxGames, accept, budget)
	if err != nil {
		return nil, err
	}

	games := make([]Game, len(cover.chosen))
	for i, c := range cover.chosen {
		games[i] = Game((fixedSet | c).numbers())
	}

	result := newResult(ModeClosure, games)
	result.Metadata.Universe = universe
	result.Metadata.Guarantee = opts.Guarantee
	result.Metadata.TotalSubsets = cover.total
	result.Metadata.CoveredSubsets = cover.covered
	coverage := 1.0
	if cover.total > 0 {
		coverage = float64(cover.covered) / float64(cover.total)
	}
	result.Metadata.Coverage = &coverage
	if subset == 0 {
		result.Metadata.Notes = "the fixed numbers alone already guarantee the requested score"
	} else {
		result.Metadata.Notes = "closure built with the greedy heuristic over the target subsets"
	}
	return result, nil
}

type coverResult struct {
	chosen  []numberSet
	total   int
	covered int
}

// greedyCover runs lazy greedy set cover. Targets are the t-subsets of universe and
// candidates its pick-subsets, both as bitmasks. accept may veto candidates.
//
// With t == 0 nothing needs covering and the first accepted candidate is returned.
func greedyCover(universe []Number, pick, t, maxGames int, accept func(numberSet) bool, budget closureBudget) (*coverResult, error) {
	if pick > len(universe) || t > pick {
		return &coverResult{}, nil
	}

	if n := CombinationCount(len(universe), pick); n > budget.maxTargets {
		return nil, ErrClosureTooLarge.WithDetailsf("%d candidate games", n)
	}
	if n := CombinationCount(len(universe), t); n > budget.maxTargets {
		return nil, ErrClosureTooLarge.WithDetailsf("%d target subsets", n)
	}

	var candidates []numberSet
	forEachMask(universe, pick, func(m numberSet) {
		if accept == nil || accept(m) {
			candidates = append(candidates, m)
		}
	})

	res := &coverResult{}
	if t == 0 {
		if len(candidates) > 0 {
			res.chosen = candidates[:1]
		}
		return res, nil
	}

	uncovered := make(map[numberSet]struct{}, int(CombinationCount(len(universe), t)))
	forEachMask(universe, t, func(m numberSet) {
		uncovered[m] = struct{}{}
	})
	res.total = len(uncovered)

	limit := maxGames
	if limit <= 0 {
		limit = len(candidates)
	}

	perCandidate := CombinationCount(pick, t)
	var work uint64
	spend := func() error {
		work += perCandidate
		if work > budget.maxWork {
			return ErrClosureTooLarge.WithDetailsf("work budget of %d subset checks exhausted", budget.maxWork)
		}
		return nil
	}

	gain := func(c numberSet) int {
		g := 0
		forEachMask(c.numbers(), t, func(s numberSet) {
			if _, ok := uncovered[s]; ok {
				g++
			}
		})
		return g
	}

	// Every candidate starts with full coverage; gains only shrink, so stale entries
	// are upper bounds and a fresh entry on top of the heap is the true maximum.
	h := make(coverHeap, len(candidates))
	for i, c := range candidates {
		h[i] = &coverEntry{mask: c, index: i, gain: int(perCandidate)}
	}
	heap.Init(&h)

	round := 0
	for len(res.chosen) < limit && len(uncovered) > 0 && h.Len() > 0 {
		top := h[0]
		if top.round != round {
			if err := spend(); err != nil {
				return nil, err
			}
			top.gain = gain(top.mask)
			top.round = round
			heap.Fix(&h, 0)
			continue
		}
		if top.gain == 0 {
			break
		}

		heap.Pop(&h)
		res.chosen = append(res.chosen, top.mask)
		forEachMask(top.mask.numbers(), t, func(s numberSet) {
			delete(uncovered, s)
		})
		round++
	}

	res.covered = res.total - len(uncovered)
	return res, nil
}

// forEachMask calls fn with the bitmask of every k-subset of numbers.
func forEachMask(numbers []Number, k int, fn func(numberSet)) {
	if k < 0 || k > len(numbers) {
		return
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	n := len(numbers)
	for {
		var m numberSet
		for _, p := range idx {
			m = m.add(numbers[p])
		}
		fn(m)

		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

type coverEntry struct {
	mask  numberSet
	index int
	gain  int
	round int
}

// coverHeap is a max-heap on gain, ties going to the lower enumeration index.
type coverHeap []*coverEntry

func (h coverHeap) Len() int { return len(h) }

func (h coverHeap) Less(i, j int) bool {
	if h[i].gain != h[j].gain {
		return h[i].gain > h[j].gain
	}
	return h[i].index < h[j].index
}

func (h coverHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *coverHeap) Push(x any) { *h = append(*h, x.(*coverEntry)) }

func (h *coverHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}
