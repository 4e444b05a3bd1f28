package aggregate

import (
	"sort"

	"github.com/MayaS12/Malnutrition-dashboard/pkg/contracts/domain"
)

// Key extracts a category from a record
type Key func(domain.Record) string

// Common keys
var (
	ByState        Key = func(r domain.Record) string { return r.State }
	BySex          Key = func(r domain.Record) string { return r.Sex }
	ByImmunization Key = func(r domain.Record) string { return r.ImmunizationStatus }
	BySupplement   Key = func(r domain.Record) string { return r.SupplementaryNutrition }
	ByAnemia       Key = func(r domain.Record) string { return r.MaternalAnemiaStatus }
	ByGrowthStatus Key = func(r domain.Record) string { return string(r.GrowthStatus) }
)

// Category is the size of one category
type Category struct {
	Name  string
	Count int
}

// Counts tallies key over records in first-seen order
func Counts(records []domain.Record, key Key) []Category {
	index := make(map[string]int)
	var out []Category
	for _, r := range records {
		k := key(r)
		if k == "" {
			continue
		}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, Category{Name: k})
		}
		out[i].Count++
	}
	return out
}

// Table is a two-way count table. Counts[c][i] is the number of records with
// column category Categories[c] in row Rows[i].
type Table struct {
	Rows       []string
	Categories []string
	Counts     map[string][]int
}

// Total returns the number of records counted in row i
func (t Table) Total(i int) int {
	n := 0
	for _, c := range t.Categories {
		n += t.Counts[c][i]
	}
	return n
}

// CrossTab counts records by (rowKey, colKey). Rows and categories are sorted.
func CrossTab(records []domain.Record, rowKey, colKey Key) Table {
	cells := make(map[string]map[string]int)
	cats := make(map[string]struct{})
	for _, r := range records {
		row, col := rowKey(r), colKey(r)
		if row == "" || col == "" {
			continue
		}
		if cells[row] == nil {
			cells[row] = make(map[string]int)
		}
		cells[row][col]++
		cats[col] = struct{}{}
	}

	t := Table{
		Rows:       sortedKeys(cells),
		Categories: sortedKeys(cats),
		Counts:     make(map[string][]int, len(cats)),
	}
	for _, c := range t.Categories {
		col := make([]int, len(t.Rows))
		for i, row := range t.Rows {
			col[i] = cells[row][c]
		}
		t.Counts[c] = col
	}
	return t
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
