package lotofacil

import (
	"math/bits"
	"sort"
	"strconv"
	"strings"
)

// Number is a Lotofácil number (dezena), valid in [1, 25]
type Number int

// Valid reports whether n is on the slip
func (n Number) Valid() bool { return n >= MinNumber && n <= MaxNumber }

// Row returns the 0-based row of n on the 5x5 slip grid
func (n Number) Row() int { return int(n-1) / GridSide }

// Column returns the 0-based column of n on the 5x5 slip grid
func (n Number) Column() int { return int(n-1) % GridSide }

// AllNumbers returns 1..25 in ascending order
func AllNumbers() []Number {
	out := make([]Number, TotalNumbers)
	for i := range out {
		out[i] = Number(i + MinNumber)
	}
	return out
}

// Game is an ascending set of unique numbers
type Game []Number

// Key returns the canonical "1-2-3" representation used to detect duplicates
func (g Game) Key() string {
	var sb strings.Builder
	for i, n := range g {
		if i > 0 {
			sb.WriteByte('-')
		}
		sb.WriteString(strconv.Itoa(int(n)))
	}
	return sb.String()
}

// Contains reports whether n is part of the game
func (g Game) Contains(n Number) bool {
	for _, x := range g {
		if x == n {
			return true
		}
	}
	return false
}

// Clone returns a copy of the game
func (g Game) Clone() Game {
	out := make(Game, len(g))
	copy(out, g)
	return out
}

// Validate checks the playable game invariants: size in [15, 20], numbers in range,
// unique and ascending.
func (g Game) Validate() error {
	if len(g) < MinGameSize || len(g) > MaxGameSize {
		return ErrInvalidGameSize.WithDetailsf("game has %d numbers", len(g))
	}
	for i, n := range g {
		if !n.Valid() {
			return ErrInvalidNumber.WithDetailsf("%d", n)
		}
		if i > 0 && g[i-1] >= n {
			return ErrInvalidParameters.WithDetailsf("game %s is not strictly ascending", g.Key())
		}
	}
	return nil
}

// numberSet is a bitmask over the 25 numbers; bit i <-> Number i+1.
type numberSet uint32

func setOf(numbers []Number) numberSet {
	var s numberSet
	for _, n := range numbers {
		s = s.add(n)
	}
	return s
}

func (s numberSet) add(n Number) numberSet {
	if !n.Valid() {
		return s
	}
	return s | 1<<uint(n-1)
}

func (s numberSet) has(n Number) bool {
	return n.Valid() && s&(1<<uint(n-1)) != 0
}

func (s numberSet) count() int { return bits.OnesCount32(uint32(s)) }

func (s numberSet) numbers() []Number {
	out := make([]Number, 0, s.count())
	for v := uint32(s); v != 0; v &= v - 1 {
		out = append(out, Number(bits.TrailingZeros32(v)+1))
	}
	return out
}

const fullSet numberSet = 1<<TotalNumbers - 1

// UniqueSorted returns the distinct numbers of the input in ascending order.
// Invalid numbers are kept so that callers can report them.
func UniqueSorted(numbers []Number) []Number {
	seen := make(map[Number]struct{}, len(numbers))
	out := make([]Number, 0, len(numbers))
	for _, n := range numbers {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// validateNumbers returns ErrInvalidNumber for the first number off the slip.
func validateNumbers(numbers []Number) error {
	for _, n := range numbers {
		if !n.Valid() {
			return ErrInvalidNumber.WithDetailsf("%d", n)
		}
	}
	return nil
}

func validateGameSize(size int) error {
	if size < MinGameSize || size > MaxGameSize {
		return ErrInvalidGameSize.WithDetailsf("requested %d numbers per game", size)
	}
	return nil
}

func validateCount(count int) error {
	if count < 1 {
		return ErrInvalidCount.WithDetailsf("requested %d games", count)
	}
	return nil
}

// without returns the numbers of base not present in exclude, keeping order.
func without(base []Number, exclude numberSet) []Number {
	out := make([]Number, 0, len(base))
	for _, n := range base {
		if !exclude.has(n) {
			out = append(out, n)
		}
	}
	return out
}

// mergeSorted returns the ascending union of a and b as a Game.
func mergeSorted(a, b []Number) Game {
	game := make(Game, 0, len(a)+len(b))
	game = append(game, a...)
	game = append(game, b...)
	sort.Slice(game, func(i, j int) bool { return game[i] < game[j] })
	return game
}

// GuaranteeLevel is the minimum match count a closure covers combinatorially
type GuaranteeLevel int

// Valid reports whether the level is one of 11, 12, 13, 14
func (g GuaranteeLevel) Valid() bool { return g >= MinGuarantee && g <= MaxGuarantee }

// Draw is an official draw record (concurso)
type Draw struct {
	Contest int      `json:"contest"`
	Date    string   `json:"date"`
	Numbers []Number `json:"numbers"`
}

// Validate checks that the draw has a positive contest and 15 distinct valid numbers
func (d Draw) Validate() error {
	if d.Contest <= 0 {
		return ErrInvalidParameters.WithDetailsf("invalid contest number %d", d.Contest)
	}
	if err := validateNumbers(d.Numbers); err != nil {
		return err
	}
	if setOf(d.Numbers).count() != DrawSize || len(d.Numbers) != DrawSize {
		return ErrInvalidParameters.WithDetailsf("contest %d has %d numbers, want %d distinct", d.Contest, len(d.Numbers), DrawSize)
	}
	return nil
}

func (d Draw) set() numberSet { return setOf(d.Numbers) }

// sortedHistory returns a copy of history in ascending contest order after checking
// every number is on the slip.
func sortedHistory(history []Draw) ([]Draw, error) {
	if len(history) == 0 {
		return nil, ErrEmptyHistory
	}
	out := make([]Draw, len(history))
	copy(out, history)
	for _, d := range out {
		for _, n := range d.Numbers {
			if !n.Valid() {
				return nil, ErrInvalidNumber.WithDetailsf("contest %d has number %d", d.Contest, n)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Contest < out[j].Contest })
	return out, nil
}

// StrategyMode names a generation strategy
type StrategyMode string

const (
	ModeCombinations   StrategyMode = "combinations"
	ModeBalanced       StrategyMode = "balanced"
	ModeFixedNumbers   StrategyMode = "fixed"
	ModeClosure        StrategyMode = "closure"
	ModeSmartSpread    StrategyMode = "smart-spread"
	ModeFrequencyDelay StrategyMode = "frequency-delay"
	ModeCycleClosure   StrategyMode = "cycle-closure"
)

// CycleMetadata summarizes the cycle analysis behind a cycle-closure run
type CycleMetadata struct {
	DrawsInCycle       int      `json:"draws_in_cycle"`
	Missing            []Number `json:"missing"`
	AverageLength      *float64 `json:"average_length,omitempty"`
	EstimatedRemaining *int     `json:"estimated_remaining,omitempty"`
	LastClosureContest *int     `json:"last_closure_contest,omitempty"`
	LastClosureDate    string   `json:"last_closure_date,omitempty"`
	Hot                []Number `json:"hot,omitempty"`
	RecentlyClosed     []Number `json:"recently_closed,omitempty"`
}

// StrategyMetadata is descriptive data for the UI and export layers
type StrategyMetadata struct {
	Strategy       StrategyMode   `json:"strategy"`
	GamesGenerated int            `json:"games_generated"`
	Universe       []Number       `json:"universe,omitempty"`
	Guarantee      GuaranteeLevel `json:"guarantee,omitempty"`
	TotalSubsets   int            `json:"total_subsets,omitempty"`
	CoveredSubsets int            `json:"covered_subsets,omitempty"`
	Coverage       *float64       `json:"coverage,omitempty"`
	Notes          string         `json:"notes,omitempty"`
	Cycle          *CycleMetadata `json:"cycle,omitempty"`
}

// StrategyResult is the output of every generation strategy
type StrategyResult struct {
	Games    []Game           `json:"games"`
	Metadata StrategyMetadata `json:"metadata"`
}

func newResult(mode StrategyMode, games []Game) *StrategyResult {
	if games == nil {
		games = []Game{}
	}
	return &StrategyResult{
		Games:    games,
		Metadata: StrategyMetadata{Strategy: mode, GamesGenerated: len(games)},
	}
}
