package lotofacil

// GameMetrics holds the descriptive statistics of a single game
type GameMetrics struct {
	Sum     int           `json:"sum"`
	Even    int           `json:"even"`
	Odd     int           `json:"odd"`
	Rows    [GridSide]int `json:"rows"`
	Columns [GridSide]int `json:"columns"`
	Low     int           `json:"low"`
	High    int           `json:"high"`

	// Repetition is the overlap with the reference draw, nil when no reference was given
	Repetition *int `json:"repetition,omitempty"`
}

// CalculateMetrics measures game. Rows and columns follow the 5x5 slip layout:
// row = (n-1)/5, column = (n-1)%5. Low numbers are 1..13.
//
// A nil reference leaves Repetition unset; an empty non-nil reference yields 0.
func CalculateMetrics(game []Number, reference []Number) GameMetrics {
	var m GameMetrics
	for _, n := range game {
		m.Sum += int(n)
		if n%2 == 0 {
			m.Even++
		}
		if n >= MinNumber && n <= LowNumberMax {
			m.Low++
		}
		if n.Valid() {
			m.Rows[n.Row()]++
			m.Columns[n.Column()]++
		}
	}
	m.Odd = len(game) - m.Even
	m.High = len(game) - m.Low

	if reference != nil {
		ref := setOf(reference)
		rep := 0
		for _, n := range game {
			if ref.has(n) {
				rep++
			}
		}
		m.Repetition = &rep
	}
	return m
}

// occupied returns how many of the counters are non-zero.
func occupied(counts [GridSide]int) int {
	total := 0
	for _, c := range counts {
		if c > 0 {
			total++
		}
	}
	return total
}
