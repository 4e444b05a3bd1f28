// Package aggregate computes the statistics behind the dashboard panels:
// prevalence per place and growth status, top-N ranking, choropleth
// highlighting, cross tabulations, histograms, means and box statistics.
//
// Every function is pure and works on a slice of records, so panels can be
// recomputed per request from the shared read-only dataset. Empty category
// values are ignored and NaN measurements are skipped.
package aggregate
