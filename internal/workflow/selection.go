package workflow

import (
	"slices"
	"strings"
)

// Selection is an insertion-ordered set of column names.
type Selection struct {
	columns []string
	index   map[string]struct{}
}

func NewSelection() *Selection {
	return &Selection{index: make(map[string]struct{})}
}

func (s *Selection) Contains(column string) bool {
	_, ok := s.index[column]
	return ok
}

// Toggle removes column if it is selected and appends it otherwise.
func (s *Selection) Toggle(column string) {
	if s.Contains(column) {
		s.remove(column)
		return
	}

	s.add(column)
}

// AddFreeText appends a user-typed column name. Blank input is ignored and
// names already selected keep their position.
func (s *Selection) AddFreeText(raw string) bool {
	column := strings.TrimSpace(raw)
	if column == "" || s.Contains(column) {
		return false
	}

	s.add(column)

	return true
}

func (s *Selection) Clear() {
	s.columns = nil
	clear(s.index)
}

func (s *Selection) Len() int {
	return len(s.columns)
}

// Columns returns a copy of the selected names in insertion order.
func (s *Selection) Columns() []string {
	return slices.Clone(s.columns)
}

func (s *Selection) add(column string) {
	s.columns = append(s.columns, column)
	s.index[column] = struct{}{}
}

func (s *Selection) remove(column string) {
	delete(s.index, column)
	s.columns = slices.DeleteFunc(s.columns, func(c string) bool { return c == column })
}
