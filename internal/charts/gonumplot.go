package charts

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/MayaS12/Malnutrition-dashboard/internal/aggregate"
	"github.com/MayaS12/Malnutrition-dashboard/pkg/contracts/domain"
)

// histogramBlue fills histogram bars
var histogramBlue = color.RGBA{R: 0x63, G: 0x6e, B: 0xfa, A: 0xff}

// Histogram draws pre-computed bins
func Histogram(w io.Writer, title, xLabel string, bins []aggregate.Bin, size Size) error {
	if len(bins) == 0 {
		return ErrNoData
	}

	hb := make([]plotter.HistogramBin, len(bins))
	for i, b := range bins {
		hb[i] = plotter.HistogramBin{Min: b.From, Max: b.To, Weight: float64(b.Count)}
	}
	h := &plotter.Histogram{
		Bins:      hb,
		Width:     bins[0].To - bins[0].From,
		FillColor: histogramBlue,
		LineStyle: plotter.DefaultLineStyle,
	}
	h.LineStyle.Width = vg.Points(0.5)

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = "count"
	p.Add(plotter.NewGrid(), h)

	return writeSVG(w, p, size)
}

// Scatter draws one glyph per point, coloured by growth status
func Scatter(w io.Writer, title, xLabel, yLabel string, points []aggregate.Point, size Size) error {
	if len(points) == 0 {
		return ErrNoData
	}

	byStatus := make(map[domain.GrowthStatus]plotter.XYs)
	for _, pt := range points {
		byStatus[pt.Status] = append(byStatus[pt.Status], plotter.XY{X: pt.X, Y: pt.Y})
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	for _, status := range domain.GrowthStatuses {
		xys, ok := byStatus[status]
		if !ok {
			continue
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("scatter %s: %w", status, err)
		}
		s.GlyphStyle.Color = StatusColor(status)
		s.GlyphStyle.Radius = vg.Points(2.5)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)
		p.Legend.Add(string(status), s)
	}

	return writeSVG(w, p, size)
}

// BoxPlot draws one box per (group, status) cell. Boxes of a group sit side by
// side under the group's tick label.
func BoxPlot(w io.Writer, title, xLabel, yLabel string, boxes []aggregate.GroupBox, size Size) error {
	if len(boxes) == 0 {
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Legend.Top = true

	slots := float64(len(domain.GrowthStatuses) + 1)
	statusIndex := make(map[domain.GrowthStatus]int, len(domain.GrowthStatuses))
	for i, s := range domain.GrowthStatuses {
		statusIndex[s] = i
	}

	var (
		ticks    []plot.Tick
		groupIdx = -1
		last     string
		legended = make(map[domain.GrowthStatus]bool)
	)
	for _, b := range boxes {
		if b.Group != last || groupIdx < 0 {
			groupIdx++
			last = b.Group
			ticks = append(ticks, plot.Tick{
				Value: float64(groupIdx)*slots + (slots-2)/2,
				Label: b.Group,
			})
		}

		loc := float64(groupIdx)*slots + float64(statusIndex[b.Status])
		bp, err := plotter.NewBoxPlot(vg.Points(14), loc, plotter.Values(b.Values))
		if err != nil {
			return fmt.Errorf("box %s/%s: %w", b.Group, b.Status, err)
		}
		bp.FillColor = StatusColor(b.Status)
		p.Add(bp)

		if !legended[b.Status] {
			legended[b.Status] = true
			p.Legend.Add(string(b.Status), swatch{fill: StatusColor(b.Status)})
		}
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)

	return writeSVG(w, p, size)
}

// writeSVG renders p at size into w
func writeSVG(w io.Writer, p *plot.Plot, size Size) error {
	size = size.orDefault()
	wt, err := p.WriterTo(vg.Points(float64(size.Width)), vg.Points(float64(size.Height)), "svg")
	if err != nil {
		return fmt.Errorf("create svg canvas: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

// swatch is a legend entry showing a solid colour
type swatch struct {
	fill color.Color
}

// Thumbnail implements plot.Thumbnailer
func (s swatch) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(s.fill, c.ClipPolygonY(pts))
}
