package lotofacil

import (
	"fmt"
	"math"
	"sort"
)

// CycleClosureOptions configures GenerateCycleClosure
type CycleClosureOptions struct {
	History  []Draw     `json:"history"`
	GameSize int        `json:"game_size"`
	Count    int        `json:"count"`
	Filters  *FilterSet `json:"filters,omitempty"`
}

// cyclePlan is the ranking material shared by every game of a cycle-closure run.
type cyclePlan struct {
	size      int
	ranking   []Number
	hotList   []Number
	missing   []Number
	missingIn numberSet
	recent    numberSet
}

// GenerateCycleClosure builds games that push the current cycle towards closure.
//
// Numbers are ranked by weight:
//
//	1 + 1.3*frequency + (lastSeen+1)/drawsInCycle + 3*missing + hot - 2*(recentlyClosed and not missing)
//
// Each game takes up to CycleMandatoryMissing rotating missing numbers, then fills up
// to half of the game from the hot and missing numbers, then follows the ranking.
// Numbers that only just appeared for the first time are skipped unless the game
// cannot be completed without them. Duplicate games are discarded.
func GenerateCycleClosure(opts CycleClosureOptions) (*StrategyResult, error) {
	return generateCycleClosure(opts, DefaultCycleAttemptFactor)
}

func generateCycleClosure(opts CycleClosureOptions, attemptFactor int) (*StrategyResult, error) {
	if err := validateGameSize(opts.GameSize); err != nil {
		return nil, err
	}
	if len(opts.History) == 0 {
		return nil, ErrEmptyHistory.WithDetails("cycle closure needs the draw history")
	}
	if err := validateCount(opts.Count); err != nil {
		return nil, err
	}

	progress, err := AnalyzeCycle(opts.History)
	if err != nil {
		return nil, err
	}
	plan := newCyclePlan(progress, opts.GameSize)

	if attemptFactor <= 0 {
		attemptFactor = DefaultCycleAttemptFactor
	}
	maxAttempts := opts.Count * attemptFactor

	games := make([]Game, 0, opts.Count)
	keys := make(map[string]struct{}, opts.Count)
	missingPointer := 0
	for attempts := 0; len(games) < opts.Count && attempts < maxAttempts; {
		attempts++

		var mandatory []Number
		mandatory, missingPointer = plan.mandatory(missingPointer)

		seed := len(games) + attempts
		candidate := plan.build(mandatory, seed, false)
		if candidate == nil {
			candidate = plan.build(mandatory, seed, true)
		}
		if candidate == nil {
			continue
		}

		key := candidate.Key()
		if _, dup := keys[key]; dup {
			continue
		}
		if !opts.Filters.Passes(candidate) {
			continue
		}
		keys[key] = struct{}{}
		games = append(games, candidate)
	}

	if len(games) == 0 {
		return nil, ErrClosureUnachievable.WithDetailsf("no game accepted in %d attempts", maxAttempts)
	}

	result := newResult(ModeCycleClosure, games)
	result.Metadata.Universe = AllNumbers()
	result.Metadata.Notes = describeCycle(progress)
	result.Metadata.Cycle = cycleMetadata(progress)
	return result, nil
}

func newCyclePlan(p *CycleProgress, size int) *cyclePlan {
	plan := &cyclePlan{
		size:      size,
		missing:   p.Missing,
		missingIn: setOf(p.Missing),
		recent:    setOf(p.RecentlyClosed),
	}
	hot := setOf(p.Hot)

	var weights [TotalNumbers]float64
	for i := range weights {
		n := Number(i + MinNumber)
		w := 1 + float64(p.Frequencies[i])*1.3
		if p.LastSeen[i] >= 0 && p.DrawsInCycle > 0 {
			w += float64(p.LastSeen[i]+1) / float64(p.DrawsInCycle)
		}
		if plan.missingIn.has(n) {
			w += 3
		}
		if hot.has(n) {
			w++
		}
		if plan.recent.has(n) && !plan.missingIn.has(n) {
			w -= 2
		}
		weights[i] = w
	}

	plan.ranking = AllNumbers()
	sort.SliceStable(plan.ranking, func(i, j int) bool {
		return weights[plan.ranking[i]-1] > weights[plan.ranking[j]-1]
	})

	for _, n := range plan.ranking {
		if hot.has(n) || plan.missingIn.has(n) {
			plan.hotList = append(plan.hotList, n)
		}
	}
	if len(plan.hotList) == 0 {
		plan.hotList = plan.ranking[:HotNumbersLimit]
	}
	return plan
}

// mandatory returns the missing numbers every game must carry and the next
// rotation pointer.
func (c *cyclePlan) mandatory(pointer int) ([]Number, int) {
	n := len(c.missing)
	if n == 0 {
		return nil, pointer
	}
	if n <= CycleMandatoryMissing {
		return append([]Number(nil), c.missing...), pointer
	}
	out := make([]Number, CycleMandatoryMissing)
	for i := range out {
		out[i] = c.missing[(pointer+i)%n]
	}
	return out, (pointer + CycleMandatoryMissing) % n
}

// build assembles one game or returns nil when the size cannot be reached. With
// allowRecent false, recently closed numbers that are not missing are skipped.
func (c *cyclePlan) build(mandatory []Number, seed int, allowRecent bool) Game {
	picked := setOf(mandatory)
	skip := func(n Number) bool {
		return picked.has(n) || (!allowRecent && c.recent.has(n) && !c.missingIn.has(n))
	}

	hotTarget := min(c.size, max(int(math.Round(float64(c.size)*0.5)), picked.count()))
	if len(c.hotList) > 0 {
		start := seed % len(c.hotList)
		for i := 0; i < len(c.hotList) && picked.count() < hotTarget; i++ {
			n := c.hotList[(start+i)%len(c.hotList)]
			if !skip(n) {
				picked = picked.add(n)
			}
		}
	}

	start := seed % len(c.ranking)
	for i := 0; i < len(c.ranking) && picked.count() < c.size; i++ {
		n := c.ranking[(start+i)%len(c.ranking)]
		if !skip(n) {
			picked = picked.add(n)
		}
	}

	if picked.count() < c.size {
		return nil
	}
	return Game(picked.numbers())
}

func describeCycle(p *CycleProgress) string {
	missing := "every number has already appeared"
	if len(p.Missing) > 0 {
		missing = fmt.Sprintf("%d number(s) missing", len(p.Missing))
	}
	forecast := "not enough history to forecast the closure."
	if p.EstimatedRemaining != nil {
		forecast = fmt.Sprintf("closure expected in ~%d draw(s).", *p.EstimatedRemaining)
	}
	return fmt.Sprintf("Current cycle with %d draw(s), %s. %s", p.DrawsInCycle, missing, forecast)
}

func cycleMetadata(p *CycleProgress) *CycleMetadata {
	meta := &CycleMetadata{
		DrawsInCycle:       p.DrawsInCycle,
		Missing:            p.Missing,
		AverageLength:      p.AverageLength,
		EstimatedRemaining: p.EstimatedRemaining,
		Hot:                p.Hot[:min(len(p.Hot), CycleMetadataListLimit)],
		RecentlyClosed:     p.RecentlyClosed[:min(len(p.RecentlyClosed), CycleMetadataListLimit)],
	}
	if p.LastClosure != nil {
		contest := p.LastClosure.Contest
		meta.LastClosureContest = &contest
		meta.LastClosureDate = p.LastClosure.Date
	}
	return meta
}
