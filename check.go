package lotofacil

import "strconv"

// PrizeTier names a Lotofácil prize band
type PrizeTier string

// TierNone is returned for fewer than 11 hits
const TierNone PrizeTier = "none"

// CountHits returns how many numbers of game were drawn
func CountHits(game, drawn []Number) int {
	return (setOf(game) & setOf(drawn)).count()
}

// PrizeTierFor maps a hit count to its prize band: "15", "14", "13", "12", "11"
// or TierNone.
func PrizeTierFor(hits int) PrizeTier {
	switch {
	case hits >= DrawSize:
		return PrizeTier(strconv.Itoa(DrawSize))
	case hits >= 11:
		return PrizeTier(strconv.Itoa(hits))
	default:
		return TierNone
	}
}

// GameCheck is the result of checking one game against a draw
type GameCheck struct {
	Game Game      `json:"game"`
	Hits int       `json:"hits"`
	Tier PrizeTier `json:"tier"`
}

// CheckGames scores every game against the drawn numbers
func CheckGames(games []Game, drawn []Number) []GameCheck {
	out := make([]GameCheck, len(games))
	for i, g := range games {
		hits := CountHits(g, drawn)
		out[i] = GameCheck{Game: g, Hits: hits, Tier: PrizeTierFor(hits)}
	}
	return out
}

// RepetitionCounts returns, per game, how many numbers it shares with reference
func RepetitionCounts(games []Game, reference []Number) []int {
	out := make([]int, len(games))
	for i, g := range games {
		out[i] = CountHits(g, reference)
	}
	return out
}

// LowHigh is the low (1..13) and high (14..25) split of a game
type LowHigh struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// LowHighSplits returns the low/high split of every game
func LowHighSplits(games []Game) []LowHigh {
	out := make([]LowHigh, len(games))
	for i, g := range games {
		m := CalculateMetrics(g, nil)
		out[i] = LowHigh{Low: m.Low, High: m.High}
	}
	return out
}

// RowColumn is the row and column distribution of a game on the slip grid
type RowColumn struct {
	Rows    [GridSide]int `json:"rows"`
	Columns [GridSide]int `json:"columns"`
}

// RowColumnStats returns the row and column distribution of every game
func RowColumnStats(games []Game) []RowColumn {
	out := make([]RowColumn, len(games))
	for i, g := range games {
		m := CalculateMetrics(g, nil)
		out[i] = RowColumn{Rows: m.Rows, Columns: m.Columns}
	}
	return out
}
