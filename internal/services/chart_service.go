package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/MayaS12/Malnutrition-dashboard/internal/aggregate"
	"github.com/MayaS12/Malnutrition-dashboard/internal/charts"
	"github.com/MayaS12/Malnutrition-dashboard/internal/infrastructure"
	api "github.com/MayaS12/Malnutrition-dashboard/pkg/contracts/api/v1"
	"github.com/MayaS12/Malnutrition-dashboard/pkg/contracts/domain"
)

// Chart names served by PanelService.Chart
const (
	ChartPrevalenceBar   = "prevalence-bar"
	ChartPrevalenceMap   = "prevalence-map"
	ChartAgeHistogram    = "age-histogram"
	ChartSexPie          = "sex-pie"
	ChartGrowthByAge     = "growth-by-age"
	ChartMUACHistogram   = "muac-histogram"
	ChartImmunization    = "immunization"
	ChartSupplementation = "supplementation"
	ChartBMIScatter      = "bmi-scatter"
	ChartAnemiaBox       = "anemia-box"
)

// ChartNames lists every chart in dashboard order
var ChartNames = []string{
	ChartPrevalenceBar, ChartPrevalenceMap,
	ChartAgeHistogram, ChartSexPie,
	ChartGrowthByAge, ChartMUACHistogram,
	ChartImmunization, ChartSupplementation,
	ChartBMIScatter, ChartAnemiaBox,
}

// IsPrevalenceChart reports whether the chart depends on level and status
func IsPrevalenceChart(name string) bool {
	return name == ChartPrevalenceBar || name == ChartPrevalenceMap
}

// Chart renders the named chart as SVG. Level and status are only read for the
// prevalence charts. Rendered charts are cached for the lifetime of the service
// since the dashboard never changes.
func (s *PanelService) Chart(ctx context.Context, name string, q api.PanelQuery) ([]byte, error) {
	key := name
	if IsPrevalenceChart(name) {
		q = q.WithDefaults()
		key = fmt.Sprintf("%s|%s|%s", name, q.Level, q.Status)
	}

	if cached, ok := s.svgCache.Get(key); ok {
		s.metrics.RecordChartCache(ctx, name, true)
		return cached.([]byte), nil
	}
	s.metrics.RecordChartCache(ctx, name, false)

	start := time.Now()
	var buf bytes.Buffer
	err := s.render(ctx, &buf, name, domain.Level(q.Level), domain.GrowthStatus(q.Status))
	if errors.Is(err, charts.ErrNoData) {
		err = fmt.Errorf("%w: %s", ErrNoChartData, name)
	}
	s.metrics.RecordPanelRender(ctx, "chart_"+name, time.Since(start), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.DebugContext(ctx, "chart not rendered",
			slog.String("chart", name),
			slog.String("error", err.Error()))
		return nil, err
	}

	out := buf.Bytes()
	s.svgCache.Set(key, out, cache.DefaultExpiration)
	return out, nil
}

func (s *PanelService) render(ctx context.Context, buf *bytes.Buffer, name string, level domain.Level, status domain.GrowthStatus) error {
	size := s.dash.settings.ChartSize
	records := s.dash.records

	switch name {
	case ChartPrevalenceBar, ChartPrevalenceMap:
		if !level.IsValid() || !status.IsValid() {
			return fmt.Errorf("%w: level %q status %q", ErrInvalidInput, level, status)
		}
		if name == ChartPrevalenceMap {
			return s.renderMap(buf, level, status)
		}
		resp, err := s.Prevalence(ctx, level, status)
		if err != nil {
			return err
		}
		bars := make([]charts.Bar, len(resp.Top))
		for i, r := range resp.Top {
			bars[i] = charts.Bar{Label: r.Place, Value: r.Percentage}
		}
		return charts.RankedBars(buf, resp.Title, bars, size)

	case ChartAgeHistogram:
		h := s.histogram("Age_in_months", func(r domain.Record) float64 { return r.AgeInMonths })
		return charts.Histogram(buf, "Age distribution of surveyed children", "Age (months)", toBins(h), size)

	case ChartSexPie:
		return charts.Pie(buf, "Male vs Female Distribution", aggregate.Counts(records, aggregate.BySex), size)

	case ChartGrowthByAge:
		means := aggregate.MeansByAge(records)
		height := charts.Line{Name: "Height_cm"}
		weight := charts.Line{Name: "Weight_kg"}
		for _, m := range means {
			height.X, height.Y = append(height.X, m.Age), append(height.Y, m.Height)
			weight.X, weight.Y = append(weight.X, m.Age), append(weight.Y, m.Weight)
		}
		return charts.Lines(buf, "Average Height and Weight by Age", "Age (months)", "Value", []charts.Line{height, weight}, size)

	case ChartMUACHistogram:
		h := s.histogram("MUAC_cm", func(r domain.Record) float64 { return r.MUACCm })
		return charts.Histogram(buf, "MUAC Distribution (malnutrition severity)", "MUAC (cm)", toBins(h), size)

	case ChartImmunization:
		tab := aggregate.CrossTab(records, aggregate.ByState, aggregate.ByImmunization)
		return charts.StackedBars(buf, "Immunization Coverage by State", tab, size)

	case ChartSupplementation:
		tab := aggregate.CrossTab(records, aggregate.ByState, aggregate.BySupplement)
		return charts.StackedBars(buf, "Supplementary Nutrition Coverage", tab, size)

	case ChartBMIScatter:
		if !s.dash.dataset.HasMotherBMI() {
			return fmt.Errorf("%w: Mother_BMI", ErrSectionUnavailable)
		}
		return charts.Scatter(buf, "Mother BMI vs Child Growth Status", "Mother_BMI", "Age (months)", s.bmiPoints(), size)

	case ChartAnemiaBox:
		if !s.dash.dataset.HasMaternalAnemia() {
			return fmt.Errorf("%w: Maternal_anemia_status", ErrSectionUnavailable)
		}
		return charts.BoxPlot(buf, "Maternal Anemia vs Child Growth Status", "Maternal_anemia_status", "Age (months)", s.anemiaBoxes(), size)
	}

	return fmt.Errorf("%w: %q", ErrUnknownChart, name)
}

func (s *PanelService) renderMap(buf *bytes.Buffer, level domain.Level, status domain.GrowthStatus) error {
	coll, err := s.dash.Geometry(level)
	if err != nil {
		return err
	}

	rows := aggregate.ForStatus(aggregate.ByLevel(s.dash.records, level), status)
	values := mapValues(rows, s.dash.settings.HighlightThreshold)

	title := fmt.Sprintf("%s Prevalence by %s", status, level)
	legend := fmt.Sprintf("%s %%", status)
	return charts.Choropleth(buf, title, legend, coll, values, aggregate.MaxPercentage(rows), s.dash.settings.ChartSize)
}

// mapValues returns the fill value of each place. Places below threshold are
// drawn with the lightest colour; the scale still runs to the maximum percentage.
func mapValues(rows []domain.AggregateRow, threshold float64) map[string]float64 {
	values := make(map[string]float64, len(rows))
	for _, r := range rows {
		values[r.Place] = aggregate.Highlight(r.Percentage, threshold)
	}
	return values
}

func toBins(h api.Histogram) []aggregate.Bin {
	out := make([]aggregate.Bin, len(h.Bins))
	for i, b := range h.Bins {
		out[i] = aggregate.Bin{From: b.From, To: b.To, Count: b.Count}
	}
	return out
}
