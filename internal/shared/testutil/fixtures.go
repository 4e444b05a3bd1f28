package testutil

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// SurveyHeader is the full column set of a survey extract, maternal columns included
var SurveyHeader = []string{
	"State", "District", "Age_in_months", "Sex", "Height_cm", "Weight_kg", "MUAC_cm",
	"Growth_status", "Immunization_status", "Supplementary_nutrition_received",
	"Mothers_weight_kg", "Mothers_height_cm", "Maternal_anemia_status",
}

// RequiredHeader is SurveyHeader without the maternal columns
var RequiredHeader = SurveyHeader[:10]

// SurveyRow builds one record for SurveyHeader. Unset values are empty cells.
type SurveyRow struct {
	State        string
	District     string
	Age          string
	Sex          string
	Height       string
	Weight       string
	MUAC         string
	Status       string
	Immunization string
	Supplement   string
	MotherWeight string
	MotherHeight string
	Anemia       string
}

// Values returns the row's cells for the given header
func (r SurveyRow) Values(header []string) []string {
	byColumn := map[string]string{
		"State": r.State, "District": r.District, "Age_in_months": r.Age, "Sex": r.Sex,
		"Height_cm": r.Height, "Weight_kg": r.Weight, "MUAC_cm": r.MUAC,
		"Growth_status": r.Status, "Immunization_status": r.Immunization,
		"Supplementary_nutrition_received": r.Supplement,
		"Mothers_weight_kg": r.MotherWeight, "Mothers_height_cm": r.MotherHeight,
		"Maternal_anemia_status": r.Anemia,
	}
	out := make([]string, len(header))
	for i, col := range header {
		out[i] = byColumn[col]
	}
	return out
}

// WriteSurveyCSV writes rows under header to a temp file and returns its path
func WriteSurveyCSV(t *testing.T, header []string, rows ...SurveyRow) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "Child_data.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create csv: %v", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		t.Fatalf("write header: %v", err)
	}
	for _, r := range rows {
		if err := w.Write(r.Values(header)); err != nil {
			t.Fatalf("write row: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("flush csv: %v", err)
	}
	return path
}

// BoundaryGeoJSON returns a FeatureCollection with one unit square per name,
// laid out left to right. The name is stored under nameProperty.
func BoundaryGeoJSON(nameProperty string, names ...string) []byte {
	features := make([]map[string]any, 0, len(names))
	for i, name := range names {
		x := float64(i)
		features = append(features, map[string]any{
			"type":       "Feature",
			"properties": map[string]any{nameProperty: name},
			"geometry": map[string]any{
				"type": "Polygon",
				"coordinates": [][][]float64{{
					{x, 0}, {x + 1, 0}, {x + 1, 1}, {x, 1}, {x, 0},
				}},
			},
		})
	}
	data, err := json.Marshal(map[string]any{"type": "FeatureCollection", "features": features})
	if err != nil {
		panic(fmt.Sprintf("marshal boundary fixture: %v", err))
	}
	return data
}

// NewBoundaryServer serves body for every request. The server is closed on cleanup.
func NewBoundaryServer(t *testing.T, status int, body []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/geo+json")
		w.WriteHeader(status)
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}
