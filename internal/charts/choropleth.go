package charts

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/twpayne/go-geom"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/MayaS12/Malnutrition-dashboard/internal/geo"
)

// noDataGrey fills areas without a value
var noDataGrey = color.RGBA{R: 0xe5, G: 0xe5, B: 0xe5, A: 0xff}

// ColorScale maps [0, Max] onto a sequential palette
type ColorScale struct {
	Colors []color.Color
	Max    float64
}

// NewRedsScale returns the brewer Reds scale from 0 to maxValue
func NewRedsScale(maxValue float64) (ColorScale, error) {
	pal, err := brewer.GetPalette(brewer.TypeSequential, "Reds", 9)
	if err != nil {
		return ColorScale{}, fmt.Errorf("load Reds palette: %w", err)
	}
	return ColorScale{Colors: pal.Colors(), Max: maxValue}, nil
}

// Color returns the colour for v. Values at or below zero get the lightest
// colour and values at or above Max the darkest.
func (s ColorScale) Color(v float64) color.Color {
	n := len(s.Colors)
	if s.Max <= 0 || v <= 0 || math.IsNaN(v) {
		return s.Colors[0]
	}
	i := int(v / s.Max * float64(n-1))
	if i >= n {
		i = n - 1
	}
	return s.Colors[i]
}

// boundaries is a plot.Plotter filling each feature with its value's colour
type boundaries struct {
	features []geo.Feature
	values   map[string]float64
	scale    ColorScale
	outline  draw.LineStyle
	bounds   *geom.Bounds
}

// Plot implements plot.Plotter
func (b *boundaries) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	for _, f := range b.features {
		fill := color.Color(noDataGrey)
		if v, ok := b.values[f.Name]; ok {
			fill = b.scale.Color(v)
		}
		for _, poly := range f.Polygons() {
			for i := 0; i < poly.NumLinearRings(); i++ {
				ring := poly.LinearRing(i)
				pts := make([]vg.Point, 0, ring.NumCoords())
				for j := 0; j < ring.NumCoords(); j++ {
					coord := ring.Coord(j)
					pts = append(pts, vg.Point{X: trX(coord.X()), Y: trY(coord.Y())})
				}
				if len(pts) < 3 {
					continue
				}
				// holes are left unfilled
				if i == 0 {
					c.FillPolygon(fill, c.ClipPolygonXY(pts))
				}
				c.StrokeLines(b.outline, c.ClipLinesXY(pts)...)
			}
		}
	}
}

// DataRange implements plot.DataRanger
func (b *boundaries) DataRange() (xmin, xmax, ymin, ymax float64) {
	return b.bounds.Min(0), b.bounds.Max(0), b.bounds.Min(1), b.bounds.Max(1)
}

// Choropleth fills every feature of coll with the colour of its value on a
// Reds scale from 0 to maxValue. Features without a value are drawn grey; values
// without a feature are ignored.
func Choropleth(w io.Writer, title, legend string, coll *geo.Collection, values map[string]float64, maxValue float64, size Size) error {
	if coll == nil || len(coll.Features) == 0 {
		return ErrNoData
	}

	scale, err := NewRedsScale(maxValue)
	if err != nil {
		return err
	}

	bounds := coll.Bounds()
	if bounds.IsEmpty() {
		return ErrNoData
	}

	outline := draw.LineStyle{Color: color.Black, Width: vg.Points(0.4)}
	p := plot.New()
	p.Title.Text = title
	p.HideAxes()
	p.Add(&boundaries{
		features: coll.Features,
		values:   values,
		scale:    scale,
		outline:  outline,
		bounds:   bounds,
	})

	p.Legend.Top = true
	p.Legend.Add(legend)
	steps := len(scale.Colors) - 1
	for i := 0; i <= steps; i += 2 {
		v := maxValue * float64(i) / float64(steps)
		p.Legend.Add(fmt.Sprintf("%.1f", v), swatch{fill: scale.Color(v)})
	}

	return writeSVG(w, p, size)
}
