package lotofacil

import (
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Spreadsheet headers of the official results file
const (
	contestHeader = "Concurso"
	dateHeader    = "Data Sorteio"
	ballHeader    = "Bola"
)

// ImportDrawsXLSX reads the official results spreadsheet.
//
// Only the first sheet is read. Its first row must carry the Concurso, Data Sorteio
// and Bola1..Bola15 headers; column order does not matter. Rows without a numeric
// contest or without 15 distinct valid numbers are skipped. When a contest appears
// twice the first row wins. The result is sorted by ascending contest.
func ImportDrawsXLSX(r io.Reader) ([]Draw, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, ErrImportFailed.WithDetails("cannot open workbook").WithCause(err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrImportFailed.WithDetails("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, ErrImportFailed.WithDetailsf("cannot read sheet %q", sheets[0]).WithCause(err)
	}
	if len(rows) == 0 {
		return []Draw{}, nil
	}

	layout, err := newSheetLayout(rows[0])
	if err != nil {
		return nil, err
	}

	seen := make(map[int]struct{}, len(rows))
	draws := make([]Draw, 0, len(rows)-1)
	for _, row := range rows[1:] {
		d, ok := layout.parse(row)
		if !ok {
			continue
		}
		if _, dup := seen[d.Contest]; dup {
			continue
		}
		seen[d.Contest] = struct{}{}
		draws = append(draws, d)
	}

	sort.SliceStable(draws, func(i, j int) bool { return draws[i].Contest < draws[j].Contest })
	return draws, nil
}

// sheetLayout maps headers to column indexes; -1 marks a missing column
type sheetLayout struct {
	contest int
	date    int
	balls   [DrawSize]int
}

func newSheetLayout(header []string) (*sheetLayout, error) {
	l := &sheetLayout{contest: -1, date: -1}
	for i := range l.balls {
		l.balls[i] = -1
	}

	for col, name := range header {
		name = strings.TrimSpace(name)
		switch {
		case name == contestHeader:
			l.contest = col
		case name == dateHeader:
			l.date = col
		case strings.HasPrefix(name, ballHeader):
			n, err := strconv.Atoi(strings.TrimPrefix(name, ballHeader))
			if err == nil && n >= 1 && n <= DrawSize {
				l.balls[n-1] = col
			}
		}
	}

	if l.contest < 0 {
		return nil, ErrImportFailed.WithDetailsf("missing %q column", contestHeader)
	}
	for i, col := range l.balls {
		if col < 0 {
			return nil, ErrImportFailed.WithDetailsf("missing \"%s%d\" column", ballHeader, i+1)
		}
	}
	return l, nil
}

func (l *sheetLayout) parse(row []string) (Draw, bool) {
	contest, ok := cellInt(row, l.contest)
	if !ok {
		return Draw{}, false
	}

	var set numberSet
	for _, col := range l.balls {
		v, ok := cellInt(row, col)
		if !ok || !Number(v).Valid() {
			return Draw{}, false
		}
		set = set.add(Number(v))
	}
	if set.count() != DrawSize {
		return Draw{}, false
	}

	d := Draw{Contest: contest, Numbers: set.numbers()}
	if l.date >= 0 && l.date < len(row) {
		d.Date = strings.TrimSpace(row[l.date])
	}
	return d, true
}

// cellInt parses an integral cell; "7", "07" and "7.0" are all accepted
func cellInt(row []string, col int) (int, bool) {
	if col < 0 || col >= len(row) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) || v != math.Trunc(v) {
		return 0, false
	}
	return int(v), true
}
