package lotofacil

import (
	"math"
	"sort"
)

// CycleClosure records a closed cycle
type CycleClosure struct {
	Contest int    `json:"contest"`
	Date    string `json:"date,omitempty"`
	Length  int    `json:"length"`
}

// CycleProgress is the state of the current (open) cycle plus the closed cycle
// history. Per-number arrays are indexed by number-1; -1 marks a number not seen in
// the current cycle.
type CycleProgress struct {
	Missing      []Number `json:"missing"`
	DrawsInCycle int      `json:"draws_in_cycle"`

	Frequencies [TotalNumbers]int `json:"frequencies"`
	FirstSeen   [TotalNumbers]int `json:"first_seen"`
	LastSeen    [TotalNumbers]int `json:"last_seen"`

	Hot            []Number `json:"hot"`
	RecentlyClosed []Number `json:"recently_closed"`

	AverageLength      *float64       `json:"average_length,omitempty"`
	EstimatedRemaining *int           `json:"estimated_remaining,omitempty"`
	LastClosure        *CycleClosure  `json:"last_closure,omitempty"`
	Closures           []CycleClosure `json:"closures"`
}

// IsMissing reports whether n has not appeared in the current cycle
func (p *CycleProgress) IsMissing(n Number) bool {
	for _, m := range p.Missing {
		if m == n {
			return true
		}
	}
	return false
}

// AnalyzeCycle walks the history in contest order. A cycle closes on the first draw
// after which every number has appeared since the cycle started; the next cycle
// starts right after it. The trailing unclosed run is the current cycle.
//
// When the last draw closed a cycle the current cycle is empty and so is Missing.
func AnalyzeCycle(history []Draw) (*CycleProgress, error) {
	draws, err := sortedHistory(history)
	if err != nil {
		return nil, err
	}

	p := &CycleProgress{Closures: []CycleClosure{}}
	start := 0
	var seen numberSet
	for i, d := range draws {
		seen |= d.set()
		if seen == fullSet {
			p.Closures = append(p.Closures, CycleClosure{
				Contest: d.Contest,
				Date:    d.Date,
				Length:  i - start + 1,
			})
			start = i + 1
			seen = 0
		}
	}
	current := draws[start:]
	p.DrawsInCycle = len(current)

	for i := range p.FirstSeen {
		p.FirstSeen[i] = -1
		p.LastSeen[i] = -1
	}
	for idx, d := range current {
		for _, n := range d.Numbers {
			p.Frequencies[n-1]++
			if p.FirstSeen[n-1] < 0 {
				p.FirstSeen[n-1] = idx
			}
			p.LastSeen[n-1] = idx
		}
	}

	p.Missing = []Number{}
	if len(current) > 0 {
		p.Missing = (fullSet &^ seen).numbers()
	}

	p.Hot = hotNumbers(p.Frequencies, p.LastSeen)
	p.RecentlyClosed = recentlyClosed(p.FirstSeen, len(current))

	if len(p.Closures) > 0 {
		total := 0
		for _, c := range p.Closures {
			total += c.Length
		}
		avg := float64(total) / float64(len(p.Closures))
		remaining := max(int(math.Round(avg-float64(len(current)))), 0)
		last := p.Closures[len(p.Closures)-1]

		p.AverageLength = &avg
		p.EstimatedRemaining = &remaining
		p.LastClosure = &last
	}
	return p, nil
}

// hotNumbers returns up to HotNumbersLimit numbers seen in the cycle, by frequency
// and then by most recent appearance.
func hotNumbers(freq, lastSeen [TotalNumbers]int) []Number {
	ranked := AllNumbers()
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i]-1, ranked[j]-1
		if freq[a] != freq[b] {
			return freq[a] > freq[b]
		}
		return lastSeen[a] > lastSeen[b]
	})

	hot := make([]Number, 0, HotNumbersLimit)
	for _, n := range ranked {
		if len(hot) == HotNumbersLimit || freq[n-1] == 0 {
			break
		}
		hot = append(hot, n)
	}
	return hot
}

// recentlyClosed returns the numbers whose first appearance in the cycle falls in
// the trailing window of round(20%) of the cycle, clamped to [1, 5] draws.
func recentlyClosed(firstSeen [TotalNumbers]int, cycleLen int) []Number {
	out := []Number{}
	if cycleLen == 0 {
		return out
	}
	window := int(math.Round(float64(cycleLen) * RecentWindowRatio))
	window = min(max(window, RecentWindowMin), RecentWindowMax)

	for i, first := range firstSeen {
		if first >= 0 && first >= cycleLen-window {
			out = append(out, Number(i+MinNumber))
		}
	}
	return out
}
