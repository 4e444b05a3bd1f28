// Package charts renders dashboard figures as SVG.
//
// Categorical charts (ranked bars, pie, stacked bars, lines) use go-chart.
// Distribution charts (histogram, scatter, box plot) and the choropleth map
// use gonum/plot; the map is a custom plotter that fills each boundary polygon
// with a sequential Reds colour.
//
// Every renderer writes to an io.Writer and returns ErrNoData when there is
// nothing to draw, so callers can tell an empty panel from a rendering fault.
package charts
