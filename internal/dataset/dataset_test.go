package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"log/slog"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/MayaS12/Malnutrition-dashboard/internal/errors"
	"github.com/MayaS12/Malnutrition-dashboard/internal/shared/testutil"
	"github.com/MayaS12/Malnutrition-dashboard/pkg/contracts/domain"
)

func child(state, district, status string) testutil.SurveyRow {
	return testutil.SurveyRow{
		State: state, District: district, Age: "24", Sex: "Female",
		Height: "82.5", Weight: "10.1", MUAC: "13.2", Status: status,
		Immunization: "Complete", Supplement: "Yes",
		MotherWeight: "50", MotherHeight: "160", Anemia: "No",
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		header    []string
		rows      []testutil.SurveyRow
		wantErr   error
		wantRows  int
		wantCols  int
		checkRecs func(*testing.T, []domain.Record)
	}{
		{
			name:     "full extract",
			header:   testutil.SurveyHeader,
			rows:     []testutil.SurveyRow{child("Kerala", "Idukki", "Stunted"), child("Odisha", "Puri", "Normal")},
			wantRows: 2,
			wantCols: 13,
			checkRecs: func(t *testing.T, recs []domain.Record) {
				assert.Equal(t, "Kerala", recs[0].State)
				assert.Equal(t, "Idukki", recs[0].District)
				assert.Equal(t, 24.0, recs[0].AgeInMonths)
				assert.Equal(t, 82.5, recs[0].HeightCm)
				assert.Equal(t, domain.GrowthStunted, recs[0].GrowthStatus)
				assert.Equal(t, 50.0, recs[0].MothersWeightKg)
				assert.Equal(t, "No", recs[0].MaternalAnemiaStatus)
				assert.True(t, math.IsNaN(recs[0].MotherBMI))
			},
		},
		{
			name:   "unrecognized growth status dropped",
			header: testutil.SurveyHeader,
			rows: []testutil.SurveyRow{
				child("Kerala", "Idukki", "Stunted"),
				child("Kerala", "Idukki", "Unknown"),
				child("Kerala", "Idukki", ""),
				child("Kerala", "Idukki", "stunted"),
				child("Kerala", "Idukki", "Wasted"),
			},
			wantRows: 2,
			wantCols: 13,
		},
		{
			name:     "maternal columns optional",
			header:   testutil.RequiredHeader,
			rows:     []testutil.SurveyRow{child("Kerala", "Idukki", "Underweight")},
			wantRows: 1,
			wantCols: 10,
			checkRecs: func(t *testing.T, recs []domain.Record) {
				assert.True(t, math.IsNaN(recs[0].MothersWeightKg))
				assert.Equal(t, "", recs[0].MaternalAnemiaStatus)
			},
		},
		{
			name:   "unparseable numbers become NaN",
			header: testutil.RequiredHeader,
			rows: []testutil.SurveyRow{{
				State: "Kerala", District: "Idukki", Age: "", Height: "tall", Weight: "9.5",
				Status: "Normal",
			}},
			wantRows: 1,
			wantCols: 10,
			checkRecs: func(t *testing.T, recs []domain.Record) {
				assert.True(t, math.IsNaN(recs[0].AgeInMonths))
				assert.True(t, math.IsNaN(recs[0].HeightCm))
				assert.Equal(t, 9.5, recs[0].WeightKg)
			},
		},
		{
			name:    "missing required column",
			header:  []string{"State", "District", "Growth_status"},
			rows:    []testutil.SurveyRow{child("Kerala", "Idukki", "Stunted")},
			wantErr: ErrMissingColumn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.WriteSurveyCSV(t, tt.header, tt.rows...)
			logger, _ := testutil.NewTestLogger(t)

			ds, err := Load(context.Background(), path, logger)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRows, ds.Len())
			assert.Len(t, ds.Columns(), tt.wantCols)
			assert.False(t, ds.HasMotherBMI())
			if tt.checkRecs != nil {
				tt.checkRecs(t, ds.Records())
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "absent.csv"), nil)
	require.Error(t, err)

	var appErr *apierrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apierrors.ErrTypeData, appErr.Type)
}

func TestLoadCancelledContext(t *testing.T) {
	path := testutil.WriteSurveyCSV(t, testutil.SurveyHeader, child("Kerala", "Idukki", "Stunted"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, path, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadLogsRowCounts(t *testing.T) {
	path := testutil.WriteSurveyCSV(t, testutil.SurveyHeader,
		child("Kerala", "Idukki", "Stunted"),
		child("Kerala", "Idukki", "Unknown"),
	)
	logger, handler := testutil.NewTestLogger(t)

	_, err := Load(context.Background(), path, logger)
	require.NoError(t, err)

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "survey dataset loaded")
	assert.True(t, handler.ContainsAttr("rows_read", int64(2)))
	assert.True(t, handler.ContainsAttr("rows_kept", int64(1)))
}

func TestFromReaderMalformed(t *testing.T) {
	_, err := FromReader(strings.NewReader("State,District\nKerala\n"))
	assert.Error(t, err)
}

func TestWithRenamed(t *testing.T) {
	path := testutil.WriteSurveyCSV(t, testutil.SurveyHeader,
		child("Odisha", "Puri", "Stunted"),
		child("Kerala", "Idukki", "Stunted"),
		child("Odisha", "Khurda", "Normal"),
	)
	ds, err := Load(context.Background(), path, nil)
	require.NoError(t, err)

	renamed, err := ds.WithRenamed(ColState, map[string]string{"Odisha": "Orissa"})
	require.NoError(t, err)

	states, err := renamed.UniqueValues(ColState)
	require.NoError(t, err)
	assert.Equal(t, []string{"Orissa", "Kerala"}, states)
	assert.Equal(t, "Orissa", renamed.Records()[2].State)

	// original untouched
	orig, err := ds.UniqueValues(ColState)
	require.NoError(t, err)
	assert.Equal(t, []string{"Odisha", "Kerala"}, orig)

	t.Run("empty mapping returns receiver", func(t *testing.T) {
		same, err := ds.WithRenamed(ColDistrict, nil)
		require.NoError(t, err)
		assert.Same(t, ds, same)
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := ds.WithRenamed("Block", map[string]string{"a": "b"})
		assert.ErrorIs(t, err, ErrMissingColumn)
	})
}

func TestWithMotherBMI(t *testing.T) {
	t.Run("computed when maternal columns exist", func(t *testing.T) {
		noHeight := child("Kerala", "Idukki", "Wasted")
		noHeight.MotherHeight = ""
		path := testutil.WriteSurveyCSV(t, testutil.SurveyHeader, child("Kerala", "Idukki", "Stunted"), noHeight)
		ds, err := Load(context.Background(), path, nil)
		require.NoError(t, err)

		withBMI, err := ds.WithMotherBMI()
		require.NoError(t, err)
		assert.True(t, withBMI.HasMotherBMI())
		assert.Equal(t, ColMotherBMI, withBMI.Columns()[len(withBMI.Columns())-1])

		recs := withBMI.Records()
		assert.InDelta(t, 50/(1.6*1.6), recs[0].MotherBMI, 1e-9)
		assert.True(t, math.IsNaN(recs[1].MotherBMI))
		assert.False(t, ds.HasMotherBMI())
	})

	t.Run("skipped without maternal columns", func(t *testing.T) {
		path := testutil.WriteSurveyCSV(t, testutil.RequiredHeader, child("Kerala", "Idukki", "Stunted"))
		ds, err := Load(context.Background(), path, nil)
		require.NoError(t, err)

		same, err := ds.WithMotherBMI()
		require.NoError(t, err)
		assert.Same(t, ds, same)
		assert.False(t, same.HasMotherBMI())
	})
}

func TestWriteCSVPreservesColumnOrder(t *testing.T) {
	path := testutil.WriteSurveyCSV(t, testutil.SurveyHeader,
		child("Kerala", "Idukki", "Stunted"),
		child("Kerala", "Idukki", "Unknown"),
	)
	ds, err := Load(context.Background(), path, nil)
	require.NoError(t, err)
	ds, err = ds.WithMotherBMI()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ds.WriteCSV(&buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, append(append([]string{}, testutil.SurveyHeader...), ColMotherBMI), rows[0])
	assert.Equal(t, "Kerala", rows[1][0])
	assert.Equal(t, "82.5", rows[1][4])
	assert.Equal(t, ds.Table(), rows)
}
