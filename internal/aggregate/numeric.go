package aggregate

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/MayaS12/Malnutrition-dashboard/pkg/contracts/domain"
)

// Bin is one histogram bar covering [From, To). The last bin also holds To.
type Bin struct {
	From  float64
	To    float64
	Count int
}

// Values extracts a measurement from every record, NaN included
func Values(records []domain.Record, value func(domain.Record) float64) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = value(r)
	}
	return out
}

// finite returns the non-NaN values of xs, sorted, and how many were dropped
func finite(xs []float64) ([]float64, int) {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		out = append(out, x)
	}
	sort.Float64s(out)
	return out, len(xs) - len(out)
}

// Histogram splits values into equal-width bins spanning their range. NaN
// values are skipped and counted. When every value is equal a single bin
// of width one centred on it is returned.
func Histogram(values []float64, bins int) ([]Bin, int) {
	x, skipped := finite(values)
	if len(x) == 0 || bins <= 0 {
		return nil, skipped
	}

	lo, hi := x[0], x[len(x)-1]
	if lo == hi {
		return []Bin{{From: lo - 0.5, To: hi + 0.5, Count: len(x)}}, skipped
	}

	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	// stat.Histogram wants the last divider strictly above the data
	last := dividers[bins]
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, x, nil)

	out := make([]Bin, bins)
	for i := range out {
		out[i] = Bin{From: dividers[i], To: dividers[i+1], Count: int(counts[i])}
	}
	out[bins-1].To = last
	return out, skipped
}

// AgeMean is the mean height and weight of the children of one age. A mean
// is NaN when no child of that age has the measurement.
type AgeMean struct {
	Age    float64
	Height float64
	Weight float64
}

// MeansByAge averages height and weight per age in months, ages ascending.
// Records without an age are ignored.
func MeansByAge(records []domain.Record) []AgeMean {
	heights := make(map[float64][]float64)
	weights := make(map[float64][]float64)
	for _, r := range records {
		if math.IsNaN(r.AgeInMonths) {
			continue
		}
		if _, ok := heights[r.AgeInMonths]; !ok {
			heights[r.AgeInMonths] = nil
			weights[r.AgeInMonths] = nil
		}
		if !math.IsNaN(r.HeightCm) {
			heights[r.AgeInMonths] = append(heights[r.AgeInMonths], r.HeightCm)
		}
		if !math.IsNaN(r.WeightKg) {
			weights[r.AgeInMonths] = append(weights[r.AgeInMonths], r.WeightKg)
		}
	}

	ages := make([]float64, 0, len(heights))
	for age := range heights {
		ages = append(ages, age)
	}
	sort.Float64s(ages)

	out := make([]AgeMean, len(ages))
	for i, age := range ages {
		out[i] = AgeMean{Age: age, Height: mean(heights[age]), Weight: mean(weights[age])}
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return stat.Mean(xs, nil)
}

// Box is the five-number summary of a sample with Tukey whiskers
type Box struct {
	N            int
	Min          float64
	Q1           float64
	Median       float64
	Q3           float64
	Max          float64
	LowerWhisker float64
	UpperWhisker float64
	Outliers     []float64
}

// BoxStats summarizes values, skipping NaN. Quartiles use the empirical
// quantile; whiskers reach the furthest values within 1.5 IQR of the box.
func BoxStats(values []float64) (Box, bool) {
	x, _ := finite(values)
	if len(x) == 0 {
		return Box{}, false
	}

	b := Box{
		N:      len(x),
		Min:    x[0],
		Max:    x[len(x)-1],
		Q1:     stat.Quantile(0.25, stat.Empirical, x, nil),
		Median: stat.Quantile(0.5, stat.Empirical, x, nil),
		Q3:     stat.Quantile(0.75, stat.Empirical, x, nil),
	}

	iqr := b.Q3 - b.Q1
	lowFence, highFence := b.Q1-1.5*iqr, b.Q3+1.5*iqr
	b.LowerWhisker, b.UpperWhisker = b.Q1, b.Q3
	for _, v := range x {
		if v < lowFence || v > highFence {
			b.Outliers = append(b.Outliers, v)
			continue
		}
		if v < b.LowerWhisker {
			b.LowerWhisker = v
		}
		if v > b.UpperWhisker {
			b.UpperWhisker = v
		}
	}
	return b, true
}

// GroupBox is the box of one (group, growth status) cell
type GroupBox struct {
	Group  string
	Status domain.GrowthStatus
	Values []float64
	Box
}

// BoxesBy summarizes value per group and growth status. Groups are sorted and
// statuses follow canonical order. Empty groups and all-NaN cells are left out.
func BoxesBy(records []domain.Record, group Key, value func(domain.Record) float64) []GroupBox {
	cells := make(map[string]map[domain.GrowthStatus][]float64)
	for _, r := range records {
		g := group(r)
		if g == "" {
			continue
		}
		if cells[g] == nil {
			cells[g] = make(map[domain.GrowthStatus][]float64)
		}
		cells[g][r.GrowthStatus] = append(cells[g][r.GrowthStatus], value(r))
	}

	var out []GroupBox
	for _, g := range sortedKeys(cells) {
		for _, status := range domain.GrowthStatuses {
			vals, ok := cells[g][status]
			if !ok {
				continue
			}
			box, ok := BoxStats(vals)
			if !ok {
				continue
			}
			clean, _ := finite(vals)
			out = append(out, GroupBox{Group: g, Status: status, Values: clean, Box: box})
		}
	}
	return out
}

// Point is one record on a scatter plot
type Point struct {
	X      float64
	Y      float64
	Status domain.GrowthStatus
}

// Points pairs x and y per record, dropping records where either is NaN
func Points(records []domain.Record, x, y func(domain.Record) float64) []Point {
	out := make([]Point, 0, len(records))
	for _, r := range records {
		px, py := x(r), y(r)
		if math.IsNaN(px) || math.IsNaN(py) || math.IsInf(px, 0) || math.IsInf(py, 0) {
			continue
		}
		out = append(out, Point{X: px, Y: py, Status: r.GrowthStatus})
	}
	return out
}
