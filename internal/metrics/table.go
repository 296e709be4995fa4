package metrics

import "sort"

// Row is one (measure, component) result cell.
type Row struct {
	Measure   string
	Component string
	Value     float64
}

// Table is the uniform result table the pipeline produces: one row per
// (measure label, component label) pair, in deterministic order.
type Table struct {
	rows  []Row
	index map[[2]string]int
}

// NewTable creates an empty result table.
func NewTable() *Table {
	return &Table{index: make(map[[2]string]int)}
}

// Add appends a row. Adding a duplicate (measure, component) pair replaces
// the previous value.
func (t *Table) Add(measure, component string, value float64) {
	key := [2]string{measure, component}
	if i, ok := t.index[key]; ok {
		t.rows[i].Value = value
		return
	}
	t.index[key] = len(t.rows)
	t.rows = append(t.rows, Row{Measure: measure, Component: component, Value: value})
}

// Rows returns the table rows in insertion order.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Value looks up the cell for a measure and component label.
func (t *Table) Value(measure, component string) (float64, bool) {
	i, ok := t.index[[2]string{measure, component}]
	if !ok {
		return 0, false
	}
	return t.rows[i].Value, true
}

// Measures returns the distinct measure labels, sorted.
func (t *Table) Measures() []string {
	return t.distinct(func(r Row) string { return r.Measure })
}

// Components returns the distinct component labels, sorted.
func (t *Table) Components() []string {
	return t.distinct(func(r Row) string { return r.Component })
}

func (t *Table) distinct(field func(Row) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range t.rows {
		if v := field(r); !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
