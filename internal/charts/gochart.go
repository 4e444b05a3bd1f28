package charts

import (
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/MayaS12/Malnutrition-dashboard/internal/aggregate"
)

// prevalenceRed fills the ranked prevalence bars
var prevalenceRed = drawing.ColorFromHex("cb181d")

// Bar is one bar of a ranked bar chart
type Bar struct {
	Label string
	Value float64
}

// RankedBars draws bars in the given order. Values are percentages and each
// axis label carries the value formatted as %.1f%%.
func RankedBars(w io.Writer, title string, bars []Bar, size Size) error {
	if len(bars) == 0 {
		return ErrNoData
	}
	size = size.orDefault()

	values := make([]chart.Value, len(bars))
	top := 0.0
	for i, b := range bars {
		values[i] = chart.Value{
			Label: fmt.Sprintf("%s %.1f%%", b.Label, b.Value),
			Value: b.Value,
			Style: chart.Style{FillColor: prevalenceRed, StrokeColor: prevalenceRed},
		}
		top = math.Max(top, b.Value)
	}

	spacing := 8
	barWidth := (size.Width-120)/len(bars) - spacing
	if barWidth < 6 {
		barWidth = 6
	}

	bc := chart.BarChart{
		Title:      title,
		Width:      size.Width,
		Height:     size.Height,
		BarWidth:   barWidth,
		BarSpacing: spacing,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 110}},
		XAxis:      chart.Style{TextRotationDegrees: 45, FontSize: 8},
		YAxis: chart.YAxis{
			Name:           "percentage",
			Range:          &chart.ContinuousRange{Min: 0, Max: axisMax(top)},
			ValueFormatter: percentFormatter,
		},
		Bars: values,
	}
	return bc.Render(chart.SVG, w)
}

// Pie draws the share of each category
func Pie(w io.Writer, title string, cats []aggregate.Category, size Size) error {
	values := make([]chart.Value, 0, len(cats))
	for _, c := range cats {
		if c.Count <= 0 {
			continue
		}
		values = append(values, chart.Value{Label: fmt.Sprintf("%s (%d)", c.Name, c.Count), Value: float64(c.Count)})
	}
	if len(values) == 0 {
		return ErrNoData
	}
	size = size.orDefault()

	pc := chart.PieChart{
		Title:  title,
		Width:  size.Width,
		Height: size.Height,
		Values: values,
	}
	return pc.Render(chart.SVG, w)
}

// StackedBars draws one bar per table row with a segment per category
func StackedBars(w io.Writer, title string, tab aggregate.Table, size Size) error {
	if len(tab.Rows) == 0 || len(tab.Categories) == 0 {
		return ErrNoData
	}
	size = size.orDefault()

	bars := make([]chart.StackedBar, len(tab.Rows))
	for i, row := range tab.Rows {
		values := make([]chart.Value, len(tab.Categories))
		for c, cat := range tab.Categories {
			n := tab.Counts[cat][i]
			values[c] = chart.Value{Value: float64(n)}
			if n > 0 {
				values[c].Label = fmt.Sprintf("%s: %d", cat, n)
			}
		}
		bars[i] = chart.StackedBar{Name: row, Values: values}
	}

	sbc := chart.StackedBarChart{
		Title:      title,
		Width:      size.Width,
		Height:     size.Height,
		BarSpacing: 12,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 24}},
		XAxis:      chart.Style{TextRotationDegrees: 45, FontSize: 8},
		Bars:       bars,
	}
	return sbc.Render(chart.SVG, w)
}

// Line is one series of a line chart. NaN values are skipped.
type Line struct {
	Name string
	X    []float64
	Y    []float64
}

// Lines draws continuous series with a legend
func Lines(w io.Writer, title, xName, yName string, lines []Line, size Size) error {
	var series []chart.Series
	for i, l := range lines {
		xs, ys := make([]float64, 0, len(l.X)), make([]float64, 0, len(l.Y))
		for j := range l.X {
			if j >= len(l.Y) || math.IsNaN(l.X[j]) || math.IsNaN(l.Y[j]) {
				continue
			}
			xs = append(xs, l.X[j])
			ys = append(ys, l.Y[j])
		}
		if len(xs) == 0 {
			continue
		}
		// go-chart needs a non-zero x range
		if len(xs) == 1 {
			xs = []float64{xs[0], xs[0] + 1}
			ys = []float64{ys[0], ys[0]}
		}
		col := chart.GetDefaultColor(i)
		series = append(series, chart.ContinuousSeries{
			Name:    l.Name,
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeColor: col, StrokeWidth: 2},
		})
	}
	if len(series) == 0 {
		return ErrNoData
	}
	size = size.orDefault()

	ch := chart.Chart{
		Title:      title,
		Width:      size.Width,
		Height:     size.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 24}},
		XAxis:      chart.XAxis{Name: xName},
		YAxis:      chart.YAxis{Name: yName},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.SVG, w)
}

// axisMax leaves headroom above the tallest bar
func axisMax(top float64) float64 {
	if top <= 0 {
		return 1
	}
	return math.Min(100, math.Ceil(top*1.1))
}

func percentFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f%%", f)
	}
	return fmt.Sprint(v)
}
