package lotofacil

// FixedNumbersOptions configures GenerateFixedNumbers
type FixedNumbersOptions struct {
	Fixed    []Number `json:"fixed"`
	GameSize int      `json:"game_size"`
	Count    int      `json:"count"`

	// Floating is the optional candidate pool; it defaults to every non-fixed number
	Floating []Number   `json:"floating,omitempty"`
	Filters  *FilterSet `json:"filters,omitempty"`

	// Random reshuffles the rotation queue; nil uses a SecureRandomSource
	Random RandomSource `json:"-"`
}

// GenerateFixedNumbers builds games that all contain the fixed numbers, completing
// each one with the next numbers of a rotating floating queue.
//
// A game rejected by the filters reshuffles the queue. After
// DefaultFixedAttemptFactor times the pool size rejections generation stops with
// whatever was produced; producing nothing is ErrNoGamesGenerated.
func GenerateFixedNumbers(opts FixedNumbersOptions) (*StrategyResult, error) {
	return generateFixedNumbers(opts, DefaultFixedAttemptFactor)
}

func generateFixedNumbers(opts FixedNumbersOptions, attemptFactor int) (*StrategyResult, error) {
	if err := validateGameSize(opts.GameSize); err != nil {
		return nil, err
	}
	if err := validateCount(opts.Count); err != nil {
		return nil, err
	}
	if err := validateNumbers(opts.Fixed); err != nil {
		return nil, err
	}
	if err := validateNumbers(opts.Floating); err != nil {
		return nil, err
	}

	fixed := UniqueSorted(opts.Fixed)
	if len(fixed) < MinFixedNumbers || len(fixed) > MaxFixedNumbers {
		return nil, ErrInvalidFixedCount.WithDetailsf("%d fixed numbers, want %d to %d", len(fixed), MinFixedNumbers, MaxFixedNumbers)
	}
	need := opts.GameSize - len(fixed)
	if need <= 0 {
		return nil, ErrInvalidFixedCount.WithDetailsf("%d fixed numbers leave no room in a %d number game", len(fixed), opts.GameSize)
	}

	pool := floatingPool(fixed, opts.Floating, need)
	if len(pool) < need {
		return nil, ErrInsufficientFloatingPool.WithDetailsf("pool has %d numbers, games need %d", len(pool), need)
	}

	src := opts.Random
	if src == nil {
		src = NewSecureRandomSource()
	}
	if attemptFactor <= 0 {
		attemptFactor = DefaultFixedAttemptFactor
	}
	maxFailures := len(pool) * attemptFactor

	queue := append([]Number(nil), pool...)
	games := make([]Game, 0, opts.Count)
	failures := 0
	for len(games) < opts.Count {
		candidate := mergeSorted(fixed, queue[:need])
		rotated := make([]Number, 0, len(queue))
		rotated = append(rotated, queue[need:]...)
		queue = append(rotated, queue[:need]...)

		if !opts.Filters.Passes(candidate) {
			queue = shuffleNumbers(src, queue)
			failures++
			if failures > maxFailures {
				break
			}
			continue
		}
		games = append(games, candidate)
	}

	if len(games) == 0 {
		return nil, ErrNoGamesGenerated.WithDetailsf("fixed numbers strategy gave up after %d rejected games", failures)
	}

	result := newResult(ModeFixedNumbers, games)
	result.Metadata.Universe = UniqueSorted(append(append([]Number(nil), fixed...), pool...))
	result.Metadata.Notes = "fixed numbers combined with a rotating floating pool to widen coverage"
	return result, nil
}

// floatingPool removes the fixed numbers from the explicit pool; an empty pool means
// every non-fixed number. A pool shorter than need is padded with the remaining
// numbers in ascending order up to exactly need.
func floatingPool(fixed, explicit []Number, need int) []Number {
	fixedSet := setOf(fixed)
	if len(explicit) == 0 {
		return without(AllNumbers(), fixedSet)
	}
	pool := without(UniqueSorted(explicit), fixedSet)
	if len(pool) >= need {
		return pool
	}
	taken := fixedSet | setOf(pool)
	for _, n := range AllNumbers() {
		if len(pool) >= need {
			break
		}
		if !taken.has(n) {
			pool = append(pool, n)
		}
	}
	return pool
}
