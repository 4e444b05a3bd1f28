// Package shared holds helpers used across the dashboard packages.
//
// The testutil subpackage provides a buffered slog handler for log
// assertions and fixtures for survey CSV files and boundary GeoJSON
// documents:
//
//	path := testutil.WriteSurveyCSV(t, testutil.SurveyHeader, rows...)
//	srv := testutil.NewBoundaryServer(t, http.StatusOK,
//	    testutil.BoundaryGeoJSON("NAME_1", "Kerala", "Orissa"))
package shared
