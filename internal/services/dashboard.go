package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MayaS12/Malnutrition-dashboard/internal/charts"
	"github.com/MayaS12/Malnutrition-dashboard/internal/dataset"
	"github.com/MayaS12/Malnutrition-dashboard/internal/geo"
	"github.com/MayaS12/Malnutrition-dashboard/internal/infrastructure"
	"github.com/MayaS12/Malnutrition-dashboard/internal/reconcile"
	"github.com/MayaS12/Malnutrition-dashboard/pkg/contracts/domain"
)

// Settings holds the presentation constants of the panels
type Settings struct {
	TopN               int
	HighlightThreshold float64
	HistogramBins      int
	ChartSize          charts.Size
	ExportName         string
}

// DefaultSettings returns the standard dashboard settings
func DefaultSettings() Settings {
	return Settings{
		TopN:               15,
		HighlightThreshold: 20,
		HistogramBins:      20,
		ChartSize:          charts.DefaultSize,
		ExportName:         "malnutrition_data",
	}
}

// Dashboard is the read-only context shared by every panel
type Dashboard struct {
	dataset      *dataset.Dataset
	records      []domain.Record
	geometry     map[domain.Level]*geo.Collection
	geometryErrs map[domain.Level]error
	reconciled   map[domain.Level]reconcile.Result
	settings     Settings
	builtAt      time.Time
}

// NewDashboard reconciles the place names of ds against the boundary
// documents, adds Mother_BMI when possible and freezes the result. Levels whose
// boundaries failed to load keep their names unchanged and have no map.
func NewDashboard(ctx context.Context, ds *dataset.Dataset, boundaries map[domain.Level]geo.Result, rec *reconcile.Reconciler, settings Settings, metrics *infrastructure.DashboardMetrics, logger *slog.Logger) (*Dashboard, error) {
	if ds == nil {
		return nil, fmt.Errorf("%w: dataset is required", ErrInvalidInput)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if rec == nil {
		rec = reconcile.New(nil, reconcile.DefaultThreshold, logger)
	}
	logger = infrastructure.WithComponent(logger, "dashboard")

	d := &Dashboard{
		geometry:     make(map[domain.Level]*geo.Collection),
		geometryErrs: make(map[domain.Level]error),
		reconciled:   make(map[domain.Level]reconcile.Result),
		settings:     settings,
	}

	for _, level := range domain.Levels {
		res, ok := boundaries[level]
		switch {
		case !ok:
			d.geometryErrs[level] = fmt.Errorf("%w: no boundary source for %s", ErrGeometryUnavailable, level)
		case res.Err != nil:
			d.geometryErrs[level] = fmt.Errorf("%w: %v", ErrGeometryUnavailable, res.Err)
		case res.Collection == nil:
			d.geometryErrs[level] = fmt.Errorf("%w: empty boundary document for %s", ErrGeometryUnavailable, level)
		default:
			d.geometry[level] = res.Collection
		}

		if err := d.geometryErrs[level]; err != nil {
			metrics.RecordBoundaryFailure(ctx, string(level))
			logger.WarnContext(ctx, "map disabled for level",
				slog.String("level", string(level)),
				slog.String("error", err.Error()))
			continue
		}

		names, err := ds.UniqueValues(level.Column())
		if err != nil {
			return nil, fmt.Errorf("collect %s names: %w", level, err)
		}
		result := rec.Reconcile(ctx, level, names, d.geometry[level].Names())
		d.reconciled[level] = result
		metrics.RecordMappings(ctx, string(level), result.Counts())

		if ds, err = ds.WithRenamed(level.Column(), result.Mapping()); err != nil {
			return nil, fmt.Errorf("apply %s mapping: %w", level, err)
		}
	}

	ds, err := ds.WithMotherBMI()
	if err != nil {
		return nil, fmt.Errorf("derive mother bmi: %w", err)
	}

	d.dataset = ds
	d.records = ds.Records()
	d.builtAt = time.Now()

	logger.InfoContext(ctx, "dashboard ready",
		slog.Int("rows", len(d.records)),
		slog.Bool("mother_bmi", ds.HasMotherBMI()),
		slog.Int("maps", len(d.geometry)))

	return d, nil
}

// Dataset returns the frozen dataset
func (d *Dashboard) Dataset() *dataset.Dataset {
	return d.dataset
}

// Settings returns the presentation settings
func (d *Dashboard) Settings() Settings {
	return d.settings
}

// BuiltAt returns when the dashboard was frozen
func (d *Dashboard) BuiltAt() time.Time {
	return d.builtAt
}

// Geometry returns the boundaries of level, or an error wrapping
// ErrGeometryUnavailable when they failed to load
func (d *Dashboard) Geometry(level domain.Level) (*geo.Collection, error) {
	if err, ok := d.geometryErrs[level]; ok {
		return nil, err
	}
	coll, ok := d.geometry[level]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGeometryUnavailable, level)
	}
	return coll, nil
}

// Reconciliation returns the name mapping of level. ok is false when the
// level's boundaries were not available.
func (d *Dashboard) Reconciliation(level domain.Level) (reconcile.Result, bool) {
	r, ok := d.reconciled[level]
	return r, ok
}
