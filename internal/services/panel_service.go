package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/MayaS12/Malnutrition-dashboard/internal/aggregate"
	"github.com/MayaS12/Malnutrition-dashboard/internal/exporter"
	"github.com/MayaS12/Malnutrition-dashboard/internal/infrastructure"
	api "github.com/MayaS12/Malnutrition-dashboard/pkg/contracts/api/v1"
	"github.com/MayaS12/Malnutrition-dashboard/pkg/contracts/domain"
)

// PanelService computes panel payloads and charts from the Dashboard
type PanelService struct {
	dash     *Dashboard
	exporter *exporter.Exporter
	svgCache *cache.Cache
	metrics  *infrastructure.DashboardMetrics
	logger   *slog.Logger
}

// NewPanelService creates a panel service over dash. metrics may be nil.
func NewPanelService(dash *Dashboard, metrics *infrastructure.DashboardMetrics, logger *slog.Logger) *PanelService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PanelService{
		dash:     dash,
		exporter: exporter.New(logger),
		svgCache: cache.New(cache.NoExpiration, 0),
		metrics:  metrics,
		logger:   infrastructure.WithComponent(logger, "panels"),
	}
}

// Dashboard returns the context the service reads from
func (s *PanelService) Dashboard() *Dashboard {
	return s.dash
}

// Prevalence computes the ranked bars and choropleth values for one level and
// growth status
func (s *PanelService) Prevalence(ctx context.Context, level domain.Level, status domain.GrowthStatus) (*api.PrevalenceResponse, error) {
	start := time.Now()
	if !level.IsValid() || !status.IsValid() {
		err := fmt.Errorf("%w: level %q status %q", ErrInvalidInput, level, status)
		s.metrics.RecordPanelRender(ctx, "prevalence", time.Since(start), err)
		return nil, err
	}

	cfg := s.dash.settings
	rows := aggregate.ForStatus(aggregate.ByLevel(s.dash.records, level), status)

	resp := &api.PrevalenceResponse{
		Level:         string(level),
		Status:        string(status),
		Title:         PrevalenceTitle(level, status),
		Top:           make([]api.RankedRow, 0, cfg.TopN),
		Highlight:     make([]api.HighlightRow, 0, len(rows)),
		MaxPercentage: aggregate.MaxPercentage(rows),
		Threshold:     cfg.HighlightThreshold,
	}

	for _, r := range aggregate.Rank(rows, status, cfg.TopN) {
		resp.Top = append(resp.Top, api.RankedRow{
			Place:      r.Place,
			Count:      r.Count,
			Total:      r.Total,
			Percentage: r.Percentage,
			Label:      fmt.Sprintf("%.1f%%", r.Percentage),
		})
	}

	onMap := map[string]bool{}
	coll, err := s.dash.Geometry(level)
	if err != nil {
		resp.MapError = err.Error()
	} else {
		resp.MapAvailable = true
		for _, name := range coll.Names() {
			onMap[name] = true
		}
	}

	dropped := 0
	for _, r := range rows {
		if resp.MapAvailable && !onMap[r.Place] {
			dropped++
		}
		resp.Highlight = append(resp.Highlight, api.HighlightRow{
			Place:      r.Place,
			Percentage: r.Percentage,
			Highlight:  aggregate.Highlight(r.Percentage, cfg.HighlightThreshold),
			OnMap:      onMap[r.Place],
		})
	}
	if dropped > 0 {
		s.logger.DebugContext(ctx, "places without boundary feature left uncoloured",
			slog.String("level", string(level)),
			slog.Int("count", dropped))
	}

	s.metrics.RecordPanelRender(ctx, "prevalence", time.Since(start), nil)
	return resp, nil
}

// Demographics computes the age histogram and sex split
func (s *PanelService) Demographics(ctx context.Context) api.DemographicsResponse {
	start := time.Now()
	resp := api.DemographicsResponse{
		AgeHistogram: s.histogram("Age_in_months", func(r domain.Record) float64 { return r.AgeInMonths }),
		Sex:          toCategoryCounts(aggregate.Counts(s.dash.records, aggregate.BySex)),
	}
	s.metrics.RecordPanelRender(ctx, "demographics", time.Since(start), nil)
	return resp
}

// Nutrition computes mean height and weight by age and the MUAC histogram
func (s *PanelService) Nutrition(ctx context.Context) api.NutritionResponse {
	start := time.Now()
	means := aggregate.MeansByAge(s.dash.records)
	resp := api.NutritionResponse{
		GrowthByAge:   make([]api.AgeMean, len(means)),
		MUACHistogram: s.histogram("MUAC_cm", func(r domain.Record) float64 { return r.MUACCm }),
	}
	for i, m := range means {
		resp.GrowthByAge[i] = api.AgeMean{AgeInMonths: m.Age, HeightCm: optional(m.Height), WeightKg: optional(m.Weight)}
	}
	s.metrics.RecordPanelRender(ctx, "nutrition", time.Since(start), nil)
	return resp
}

// ProgramReach computes immunization and supplementation counts by state
func (s *PanelService) ProgramReach(ctx context.Context) api.ProgramReachResponse {
	start := time.Now()
	resp := api.ProgramReachResponse{
		Immunization:    toCrossTab("State", "Immunization_status", aggregate.CrossTab(s.dash.records, aggregate.ByState, aggregate.ByImmunization)),
		Supplementation: toCrossTab("State", "Supplementary_nutrition_received", aggregate.CrossTab(s.dash.records, aggregate.ByState, aggregate.BySupplement)),
	}
	s.metrics.RecordPanelRender(ctx, "program_reach", time.Since(start), nil)
	return resp
}

// MotherChild computes the BMI scatter and anemia box plot. Sections whose
// source columns are missing are reported as unavailable.
func (s *PanelService) MotherChild(ctx context.Context) api.MotherChildResponse {
	start := time.Now()
	ds := s.dash.dataset
	var resp api.MotherChildResponse

	if ds.HasMotherBMI() {
		resp.BMIAvailable = true
		for _, p := range s.bmiPoints() {
			resp.BMIPoints = append(resp.BMIPoints, api.BMIPoint{MotherBMI: p.X, AgeInMonths: p.Y, GrowthStatus: string(p.Status)})
		}
	}

	if ds.HasMaternalAnemia() {
		resp.AnemiaAvailable = true
		for _, b := range s.anemiaBoxes() {
			resp.AnemiaAgeBoxes = append(resp.AnemiaAgeBoxes, api.BoxSummary{
				Group:        b.Group,
				GrowthStatus: string(b.Status),
				N:            b.N,
				Min:          b.Min,
				Q1:           b.Q1,
				Median:       b.Median,
				Q3:           b.Q3,
				Max:          b.Max,
				LowerWhisker: b.LowerWhisker,
				UpperWhisker: b.UpperWhisker,
				Outliers:     b.Outliers,
			})
		}
	}

	s.metrics.RecordPanelRender(ctx, "mother_child", time.Since(start), nil)
	return resp
}

// Reconciliation reports the name mappings applied per level
func (s *PanelService) Reconciliation(ctx context.Context) api.ReconciliationResponse {
	var resp api.ReconciliationResponse
	for _, level := range domain.Levels {
		lr := api.LevelReconciliation{Level: string(level), Mappings: []api.NameMapping{}, Unmatched: []string{}}
		if _, err := s.dash.Geometry(level); err != nil {
			lr.GeometryError = err.Error()
		} else {
			lr.GeometryLoaded = true
		}
		if res, ok := s.dash.Reconciliation(level); ok {
			lr.Canonical = res.Canonical
			for _, m := range res.Matches {
				lr.Mappings = append(lr.Mappings, api.NameMapping{Raw: m.Raw, Canonical: m.Canonical, Method: string(m.Method), Score: m.Score})
			}
			lr.Unmatched = append(lr.Unmatched, res.Unmatched...)
		}
		resp.Levels = append(resp.Levels, lr)
	}
	return resp
}

// Export writes the reconciled dataset in format f
func (s *PanelService) Export(ctx context.Context, w io.Writer, f exporter.Format) error {
	return s.exporter.Write(ctx, w, f, s.dash.dataset)
}

// ExportFileName returns the download name for format f
func (s *PanelService) ExportFileName(f exporter.Format) string {
	return f.FileName(s.dash.settings.ExportName)
}

// PrevalenceTitle is the heading of the ranked bar chart
func PrevalenceTitle(level domain.Level, status domain.GrowthStatus) string {
	return fmt.Sprintf("Top %ss with highest %s prevalence", level, status)
}

func (s *PanelService) histogram(column string, value func(domain.Record) float64) api.Histogram {
	bins, skipped := aggregate.Histogram(aggregate.Values(s.dash.records, value), s.dash.settings.HistogramBins)
	h := api.Histogram{Column: column, Bins: make([]api.HistogramBin, len(bins)), Skipped: skipped}
	for i, b := range bins {
		h.Bins[i] = api.HistogramBin{From: b.From, To: b.To, Count: b.Count}
	}
	return h
}

func (s *PanelService) bmiPoints() []aggregate.Point {
	return aggregate.Points(s.dash.records,
		func(r domain.Record) float64 { return r.MotherBMI },
		func(r domain.Record) float64 { return r.AgeInMonths })
}

func (s *PanelService) anemiaBoxes() []aggregate.GroupBox {
	return aggregate.BoxesBy(s.dash.records, aggregate.ByAnemia, func(r domain.Record) float64 { return r.AgeInMonths })
}

func toCategoryCounts(cats []aggregate.Category) []api.CategoryCount {
	out := make([]api.CategoryCount, len(cats))
	for i, c := range cats {
		out[i] = api.CategoryCount{Category: c.Name, Count: c.Count}
	}
	return out
}

func toCrossTab(rowKey, colKey string, t aggregate.Table) api.CrossTab {
	return api.CrossTab{
		RowKey:     rowKey,
		ColumnKey:  colKey,
		Rows:       append([]string{}, t.Rows...),
		Categories: append([]string{}, t.Categories...),
		Counts:     t.Counts,
	}
}

// optional converts NaN to nil for JSON
func optional(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
