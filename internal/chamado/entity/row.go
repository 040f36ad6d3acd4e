package entity

import (
	"slices"
	"strings"
)

// Row is one non-empty spreadsheet row. Cells are keyed by column letter.
type Row struct {
	Number int
	Cells  map[string]string
}

// Value looks a column up ignoring case ("b" and "B" are the same column).
func (r Row) Value(column string) (string, bool) {
	v, ok := r.Cells[strings.ToUpper(column)]
	return v, ok
}

// RowStore is the parsed content of one upload, read-only once built.
type RowStore struct {
	rows    map[int]Row
	numbers []int
}

// NewRowStore indexes rows by number. A later row with the same number wins.
func NewRowStore(rows []Row) *RowStore {
	s := &RowStore{rows: make(map[int]Row, len(rows))}
	for _, r := range rows {
		if _, dup := s.rows[r.Number]; !dup {
			s.numbers = append(s.numbers, r.Number)
		}
		s.rows[r.Number] = r
	}
	slices.Sort(s.numbers)
	return s
}

// Numbers returns the row numbers in ascending order.
func (s *RowStore) Numbers() []int {
	return slices.Clone(s.numbers)
}

func (s *RowStore) Get(number int) (Row, bool) {
	r, ok := s.rows[number]
	return r, ok
}

func (s *RowStore) Len() int {
	return len(s.numbers)
}

// Rows returns all rows ordered by number.
func (s *RowStore) Rows() []Row {
	out := make([]Row, 0, len(s.numbers))
	for _, n := range s.numbers {
		out = append(out, s.rows[n])
	}
	return out
}
