package lotofacil

import (
	"math"
	"slices"
)

// ConditionalProbability holds the empirical transition rates of one number
type ConditionalProbability struct {
	Number Number `json:"number"`

	// AfterHit is P(appears | appeared in the previous draw)
	AfterHit float64 `json:"after_hit"`

	// AfterMiss is P(appears | absent from the previous draw)
	AfterMiss float64 `json:"after_miss"`
}

// ConditionalProbabilities computes, over consecutive draws in contest order, how
// often each number repeats after appearing and how often it appears after being
// absent. Rates are descriptive frequencies rounded to ProbabilityPrecision decimals.
// With fewer than two draws every rate is zero.
func ConditionalProbabilities(history []Draw) []ConditionalProbability {
	out := make([]ConditionalProbability, TotalNumbers)
	for i := range out {
		out[i].Number = Number(i + MinNumber)
	}
	if len(history) < 2 {
		return out
	}

	draws := slices.Clone(history)
	slices.SortStableFunc(draws, func(a, b Draw) int { return a.Contest - b.Contest })

	var hitTotal, hitRepeat, missTotal, missAppear [TotalNumbers]int
	for i := 1; i < len(draws); i++ {
		prev, cur := draws[i-1].set(), draws[i].set()
		for n := Number(MinNumber); n <= MaxNumber; n++ {
			idx := n - 1
			if prev.has(n) {
				hitTotal[idx]++
				if cur.has(n) {
					hitRepeat[idx]++
				}
			} else {
				missTotal[idx]++
				if cur.has(n) {
					missAppear[idx]++
				}
			}
		}
	}

	for i := range out {
		out[i].AfterHit = ratio(hitRepeat[i], hitTotal[i])
		out[i].AfterMiss = ratio(missAppear[i], missTotal[i])
	}
	return out
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return roundTo(float64(num)/float64(den), ProbabilityPrecision)
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
