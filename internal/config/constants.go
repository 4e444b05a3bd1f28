package config

import "time"

// Application constants
const (
	AppName    = "malnutrition-dashboard"
	AppTitle   = "Malnutrition Dashboard"
	AppVersion = "1.0.0"

	// Input
	DefaultCSVPath = "Child_data.csv"
	ExportFileName = "malnutrition_data"

	// Boundary documents
	DefaultStateGeoJSONURL    = "https://raw.githubusercontent.com/geohacker/india/master/state/india_telengana.geojson"
	DefaultDistrictGeoJSONURL = "https://raw.githubusercontent.com/india-in-data/india_maps/master/india_district_administered.geojson"
	DefaultGeoFetchTimeout    = 30 * time.Second

	// Reconciliation
	DefaultSimilarityThreshold = 0.6

	// Presentation
	DefaultTopN               = 15
	DefaultHighlightThreshold = 20.0
	DefaultHistogramBins      = 20

	// Rate Limiting
	DefaultRateLimitRPS = 100
	DefaultBurstSize    = 50

	// Network Timeouts
	DefaultRequestTimeout = 60 * time.Second

	// Logging
	DefaultLogFile = "logs/app.log"
)
