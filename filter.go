package lotofacil

// RangeConstraint bounds an integer metric. A nil bound is unconstrained.
type RangeConstraint struct {
	Min *int `json:"min,omitempty" mapstructure:"min"`
	Max *int `json:"max,omitempty" mapstructure:"max"`
}

// Between returns a constraint on [lo, hi]
func Between(lo, hi int) RangeConstraint {
	return RangeConstraint{Min: &lo, Max: &hi}
}

// AtLeast returns a constraint with only a lower bound
func AtLeast(lo int) RangeConstraint {
	return RangeConstraint{Min: &lo}
}

// AtMost returns a constraint with only an upper bound
func AtMost(hi int) RangeConstraint {
	return RangeConstraint{Max: &hi}
}

// Contains reports whether v satisfies both bounds
func (r RangeConstraint) Contains(v int) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// IsZero reports whether the constraint has no bounds
func (r RangeConstraint) IsZero() bool { return r.Min == nil && r.Max == nil }

// RepetitionFilter constrains how many numbers a game shares with Reference
type RepetitionFilter struct {
	RangeConstraint
	Reference []Number `json:"reference,omitempty"`
}

// FilterSet is a declarative set of range constraints over GameMetrics.
// All present constraints must hold.
type FilterSet struct {
	Even       *RangeConstraint  `json:"even,omitempty"`
	Odd        *RangeConstraint  `json:"odd,omitempty"`
	Sum        *RangeConstraint  `json:"sum,omitempty"`
	Rows       []RangeConstraint `json:"rows,omitempty"`
	Columns    []RangeConstraint `json:"columns,omitempty"`
	Low        *RangeConstraint  `json:"low,omitempty"`
	High       *RangeConstraint  `json:"high,omitempty"`
	Repetition *RepetitionFilter `json:"repetition,omitempty"`
}

// Passes evaluates game against the filter set. A nil filter set passes everything.
//
// Rows and Columns are positional; only the first five entries are used. The
// repetition constraint is ignored when it carries no reference draw.
func (f *FilterSet) Passes(game []Number) bool {
	if f == nil {
		return true
	}

	var reference []Number
	if f.Repetition != nil && len(f.Repetition.Reference) > 0 {
		reference = f.Repetition.Reference
	}
	m := CalculateMetrics(game, reference)

	if !checkRange(f.Even, m.Even) || !checkRange(f.Odd, m.Odd) || !checkRange(f.Sum, m.Sum) {
		return false
	}
	if !checkRange(f.Low, m.Low) || !checkRange(f.High, m.High) {
		return false
	}
	for i, rc := range f.Rows {
		if i >= GridSide {
			break
		}
		if !rc.Contains(m.Rows[i]) {
			return false
		}
	}
	for i, rc := range f.Columns {
		if i >= GridSide {
			break
		}
		if !rc.Contains(m.Columns[i]) {
			return false
		}
	}
	if m.Repetition != nil && !f.Repetition.Contains(*m.Repetition) {
		return false
	}
	return true
}

func checkRange(rc *RangeConstraint, v int) bool {
	return rc == nil || rc.Contains(v)
}

// ApplyFilters returns the games that pass filters, in their original order
func ApplyFilters(games []Game, filters *FilterSet) []Game {
	out := make([]Game, 0, len(games))
	for _, g := range games {
		if filters.Passes(g) {
			out = append(out, g)
		}
	}
	return out
}
