package lotofacil

import (
	"math"
	"sort"
)

// NumberStats is the historical frequency and delay of a number
type NumberStats struct {
	Number    Number `json:"number"`
	Frequency int    `json:"frequency"`

	// Delay is the number of draws since the last appearance; a number that never
	// appeared has a delay equal to the history length.
	Delay int `json:"delay"`
}

// FrequencyAndDelay computes per-number statistics over history sorted by contest.
// The result has one entry per number, index 0 <-> Number 1.
func FrequencyAndDelay(history []Draw) ([TotalNumbers]NumberStats, error) {
	var stats [TotalNumbers]NumberStats
	draws, err := sortedHistory(history)
	if err != nil {
		return stats, err
	}

	var lastSeen [TotalNumbers]int
	for i, d := range draws {
		for _, n := range d.Numbers {
			stats[n-1].Frequency++
			lastSeen[n-1] = i + 1
		}
	}
	for i := range stats {
		stats[i].Number = Number(i + MinNumber)
		stats[i].Delay = len(draws) - lastSeen[i]
	}
	return stats, nil
}

// FrequencyDelayOptions configures GenerateFrequencyDelay
type FrequencyDelayOptions struct {
	History  []Draw `json:"history"`
	GameSize int    `json:"game_size"`
	Count    int    `json:"count"`

	// FrequentRatio is the share of each game taken from the frequency ranking,
	// in (0, 1]; zero means DefaultFrequentRatio.
	FrequentRatio float64    `json:"frequent_ratio,omitempty"`
	Filters       *FilterSet `json:"filters,omitempty"`
}

// GenerateFrequencyDelay mixes the most frequent and the most overdue numbers.
//
// Each game takes ceil(size*ratio) numbers cycling through the frequency ranking
// and the rest cycling through the delay ranking. Both pointers persist across
// games. Games left short are padded with the lowest unused numbers. A game rejected
// by the filters advances both pointers one extra step.
func GenerateFrequencyDelay(opts FrequencyDelayOptions) (*StrategyResult, error) {
	return generateFrequencyDelay(opts, DefaultFrequencyAttemptFactor)
}

func generateFrequencyDelay(opts FrequencyDelayOptions, attemptFactor int) (*StrategyResult, error) {
	if err := validateGameSize(opts.GameSize); err != nil {
		return nil, err
	}
	if err := validateCount(opts.Count); err != nil {
		return nil, err
	}
	ratio := opts.FrequentRatio
	if ratio == 0 {
		ratio = DefaultFrequentRatio
	}
	if ratio < 0 || ratio > 1 || math.IsNaN(ratio) {
		return nil, ErrInvalidParameters.WithDetailsf("frequent ratio %.2f outside (0, 1]", ratio)
	}

	stats, err := FrequencyAndDelay(opts.History)
	if err != nil {
		return nil, err
	}

	frequent := AllNumbers()
	sort.SliceStable(frequent, func(i, j int) bool {
		return stats[frequent[i]-1].Frequency > stats[frequent[j]-1].Frequency
	})
	overdue := AllNumbers()
	sort.SliceStable(overdue, func(i, j int) bool {
		return stats[overdue[i]-1].Delay > stats[overdue[j]-1].Delay
	})

	size := opts.GameSize
	// the epsilon keeps 15*0.6 at 9 despite binary rounding
	fromFrequent := max(1, int(math.Ceil(float64(size)*ratio-1e-9)))
	fromOverdue := max(1, size-fromFrequent)

	if attemptFactor <= 0 {
		attemptFactor = DefaultFrequencyAttemptFactor
	}
	maxAttempts := opts.Count * attemptFactor

	games := make([]Game, 0, opts.Count)
	fi, oi := 0, 0
	for attempt := 0; len(games) < opts.Count && attempt < maxAttempts; attempt++ {
		var picked numberSet
		for range fromFrequent {
			picked = picked.add(frequent[fi%TotalNumbers])
			fi++
		}
		for range fromOverdue {
			picked = picked.add(overdue[oi%TotalNumbers])
			oi++
		}

		game := Game(picked.numbers())
		if len(game) > size {
			game = game[:size]
		}
		if len(game) < size {
			for n := Number(MinNumber); n <= MaxNumber && picked.count() < size; n++ {
				picked = picked.add(n)
			}
			game = Game(picked.numbers())
		}

		if !opts.Filters.Passes(game) {
			fi++
			oi++
			continue
		}
		games = append(games, game)
	}

	if len(games) == 0 {
		return nil, ErrNoGamesGenerated.WithDetailsf("no game passed the filters in %d attempts", maxAttempts)
	}

	result := newResult(ModeFrequencyDelay, games)
	result.Metadata.Notes = "combines the most frequent and the most overdue numbers of the history"
	return result, nil
}
