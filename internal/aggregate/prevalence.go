package aggregate

import (
	"sort"

	"github.com/MayaS12/Malnutrition-dashboard/pkg/contracts/domain"
)

// ByLevel counts records per (place, growth status) at the given level.
// Places appear in first-seen order and statuses in canonical order within
// each place. Only combinations with at least one record are returned.
func ByLevel(records []domain.Record, level domain.Level) []domain.AggregateRow {
	var places []string
	totals := make(map[string]int)
	counts := make(map[string]map[domain.GrowthStatus]int)

	for _, r := range records {
		place := r.Place(level)
		if place == "" {
			continue
		}
		if _, ok := totals[place]; !ok {
			places = append(places, place)
			counts[place] = make(map[domain.GrowthStatus]int)
		}
		totals[place]++
		counts[place][r.GrowthStatus]++
	}

	rows := make([]domain.AggregateRow, 0, len(places)*len(domain.GrowthStatuses))
	for _, place := range places {
		total := totals[place]
		for _, status := range domain.GrowthStatuses {
			n := counts[place][status]
			if n == 0 {
				continue
			}
			rows = append(rows, domain.AggregateRow{
				Place:        place,
				GrowthStatus: status,
				Count:        n,
				Total:        total,
				Percentage:   100 * float64(n) / float64(total),
			})
		}
	}
	return rows
}

// ForStatus returns the rows of one growth status, in input order
func ForStatus(rows []domain.AggregateRow, status domain.GrowthStatus) []domain.AggregateRow {
	out := make([]domain.AggregateRow, 0, len(rows))
	for _, r := range rows {
		if r.GrowthStatus == status {
			out = append(out, r)
		}
	}
	return out
}

// Rank returns the rows of status ordered by percentage, highest first, ties
// broken by place name. At most limit rows are returned; limit <= 0 keeps all.
func Rank(rows []domain.AggregateRow, status domain.GrowthStatus, limit int) []domain.AggregateRow {
	out := ForStatus(rows, status)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Percentage != out[j].Percentage {
			return out[i].Percentage > out[j].Percentage
		}
		return out[i].Place < out[j].Place
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Highlight returns pct when it reaches threshold, otherwise 0
func Highlight(pct, threshold float64) float64 {
	if pct >= threshold {
		return pct
	}
	return 0
}

// MaxPercentage returns the largest percentage in rows, 0 when empty
func MaxPercentage(rows []domain.AggregateRow) float64 {
	highest := 0.0
	for _, r := range rows {
		if r.Percentage > highest {
			highest = r.Percentage
		}
	}
	return highest
}
