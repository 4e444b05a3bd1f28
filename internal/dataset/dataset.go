package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	apierrors "github.com/MayaS12/Malnutrition-dashboard/internal/errors"
	"github.com/MayaS12/Malnutrition-dashboard/pkg/contracts/domain"
)

// Column names of the survey extract
const (
	ColState                  = "State"
	ColDistrict               = "District"
	ColAge                    = "Age_in_months"
	ColSex                    = "Sex"
	ColHeight                 = "Height_cm"
	ColWeight                 = "Weight_kg"
	ColMUAC                   = "MUAC_cm"
	ColGrowthStatus           = "Growth_status"
	ColImmunization           = "Immunization_status"
	ColSupplementaryNutrition = "Supplementary_nutrition_received"
	ColMothersWeight          = "Mothers_weight_kg"
	ColMothersHeight          = "Mothers_height_cm"
	ColMaternalAnemia         = "Maternal_anemia_status"
	ColMotherBMI              = "Mother_BMI"
)

// RequiredColumns must be present in every extract
var RequiredColumns = []string{
	ColState, ColDistrict, ColAge, ColSex, ColHeight, ColWeight, ColMUAC,
	ColGrowthStatus, ColImmunization, ColSupplementaryNutrition,
}

// OptionalColumns enable the mother-child panel when present
var OptionalColumns = []string{ColMothersWeight, ColMothersHeight, ColMaternalAnemia}

// ErrMissingColumn is returned when a required column is absent
var ErrMissingColumn = errors.New("required column missing")

// Dataset is the filtered survey table
type Dataset struct {
	frame   dataframe.DataFrame
	records []domain.Record
}

// Load reads the survey CSV at path. A missing file, a malformed CSV or a
// missing required column is an error.
func Load(ctx context.Context, path string, logger *slog.Logger) (*Dataset, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apierrors.NewDataError("open survey file", err).WithContext("path", path)
	}
	defer f.Close()

	ds, raw, err := read(f)
	if err != nil {
		return nil, apierrors.NewDataError("read survey file", err).WithContext("path", path)
	}

	logger.InfoContext(ctx, "survey dataset loaded",
		slog.String("path", path),
		slog.Int("rows_read", raw),
		slog.Int("rows_kept", ds.Len()),
		slog.Int("rows_dropped", raw-ds.Len()),
		slog.Any("columns", ds.Columns()))

	return ds, nil
}

// FromReader parses a survey CSV from r
func FromReader(r io.Reader) (*Dataset, error) {
	ds, _, err := read(r)
	return ds, err
}

// read returns the filtered dataset and the number of rows before filtering
func read(r io.Reader) (*Dataset, int, error) {
	df := dataframe.ReadCSV(r,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return nil, 0, fmt.Errorf("parse csv: %w", df.Err)
	}

	names := df.Names()
	for _, col := range RequiredColumns {
		if !contains(names, col) {
			return nil, 0, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	raw := df.Nrow()
	keep := make([]string, len(domain.GrowthStatuses))
	for i, s := range domain.GrowthStatuses {
		keep[i] = string(s)
	}
	filtered := df.Filter(dataframe.F{
		Colname:    ColGrowthStatus,
		Comparator: series.In,
		Comparando: keep,
	})
	if filtered.Err != nil {
		return nil, 0, fmt.Errorf("filter growth status: %w", filtered.Err)
	}

	ds, err := newDataset(filtered)
	if err != nil {
		return nil, 0, err
	}
	return ds, raw, nil
}

func newDataset(df dataframe.DataFrame) (*Dataset, error) {
	records, err := buildRecords(df)
	if err != nil {
		return nil, err
	}
	return &Dataset{frame: df, records: records}, nil
}

// buildRecords materializes typed records from the text columns
func buildRecords(df dataframe.DataFrame) ([]domain.Record, error) {
	n := df.Nrow()
	names := df.Names()

	text := func(col string) []string {
		if !contains(names, col) {
			return make([]string, n)
		}
		return df.Col(col).Records()
	}
	number := func(col string) []float64 {
		if !contains(names, col) {
			out := make([]float64, n)
			for i := range out {
				out[i] = math.NaN()
			}
			return out
		}
		return df.Col(col).Float()
	}

	states, districts := text(ColState), text(ColDistrict)
	sexes, statuses := text(ColSex), text(ColGrowthStatus)
	immunization, supplement := text(ColImmunization), text(ColSupplementaryNutrition)
	anemia := text(ColMaternalAnemia)
	ages, heights, weights, muac := number(ColAge), number(ColHeight), number(ColWeight), number(ColMUAC)
	motherWeights, motherHeights, bmi := number(ColMothersWeight), number(ColMothersHeight), number(ColMotherBMI)

	records := make([]domain.Record, n)
	for i := 0; i < n; i++ {
		status, err := domain.ParseGrowthStatus(statuses[i])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		records[i] = domain.Record{
			State:                  states[i],
			District:               districts[i],
			AgeInMonths:            ages[i],
			Sex:                    sexes[i],
			HeightCm:               heights[i],
			WeightKg:               weights[i],
			MUACCm:                 muac[i],
			GrowthStatus:           status,
			ImmunizationStatus:     immunization[i],
			SupplementaryNutrition: supplement[i],
			MothersWeightKg:        motherWeights[i],
			MothersHeightCm:        motherHeights[i],
			MaternalAnemiaStatus:   anemia[i],
			MotherBMI:              bmi[i],
		}
	}
	return records, nil
}

// Len returns the number of rows
func (d *Dataset) Len() int {
	return len(d.records)
}

// Records returns a copy of the rows
func (d *Dataset) Records() []domain.Record {
	out := make([]domain.Record, len(d.records))
	copy(out, d.records)
	return out
}

// Columns returns the column names in file order, Mother_BMI last when computed
func (d *Dataset) Columns() []string {
	return d.frame.Names()
}

// HasColumn reports whether the named column exists
func (d *Dataset) HasColumn(name string) bool {
	return contains(d.frame.Names(), name)
}

// HasMotherBMI reports whether the derived Mother_BMI column was computed
func (d *Dataset) HasMotherBMI() bool {
	return d.HasColumn(ColMotherBMI)
}

// HasMaternalAnemia reports whether Maternal_anemia_status was supplied
func (d *Dataset) HasMaternalAnemia() bool {
	return d.HasColumn(ColMaternalAnemia)
}

// UniqueValues returns the distinct values of a column in first-seen order
func (d *Dataset) UniqueValues(column string) ([]string, error) {
	if !d.HasColumn(column) {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, column)
	}
	seen := make(map[string]struct{})
	var out []string
	for _, v := range d.frame.Col(column).Records() {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}

// WithRenamed returns a copy with every value of column found in mapping
// replaced by its target. Values absent from mapping are kept.
func (d *Dataset) WithRenamed(column string, mapping map[string]string) (*Dataset, error) {
	if !d.HasColumn(column) {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, column)
	}
	if len(mapping) == 0 {
		return d, nil
	}

	values := d.frame.Col(column).Records()
	for i, v := range values {
		if target, ok := mapping[v]; ok {
			values[i] = target
		}
	}

	df := d.frame.Mutate(series.New(values, series.String, column))
	if df.Err != nil {
		return nil, fmt.Errorf("rename %s: %w", column, df.Err)
	}
	return newDataset(df)
}

// WithMotherBMI returns a copy carrying the Mother_BMI column when both
// maternal measurement columns exist. Otherwise the receiver is returned.
func (d *Dataset) WithMotherBMI() (*Dataset, error) {
	if !d.HasColumn(ColMothersWeight) || !d.HasColumn(ColMothersHeight) {
		return d, nil
	}

	values := make([]string, len(d.records))
	for i, r := range d.records {
		bmi := domain.MotherBMIFrom(r.MothersWeightKg, r.MothersHeightCm)
		if math.IsNaN(bmi) {
			continue
		}
		values[i] = strconv.FormatFloat(bmi, 'f', -1, 64)
	}

	df := d.frame.Mutate(series.New(values, series.String, ColMotherBMI))
	if df.Err != nil {
		return nil, fmt.Errorf("add %s: %w", ColMotherBMI, df.Err)
	}
	return newDataset(df)
}

// Table returns the header followed by every row as text
func (d *Dataset) Table() [][]string {
	return d.frame.Records()
}

// WriteCSV writes the table, header included, to w
func (d *Dataset) WriteCSV(w io.Writer) error {
	return d.frame.WriteCSV(w)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
