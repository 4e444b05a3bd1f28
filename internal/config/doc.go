// Package config provides configuration management for the malnutrition dashboard.
//
// # Configuration Sources
//
// Configuration is assembled from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern MALNUTRITION_* for namespacing:
//
//	MALNUTRITION_SERVER_PORT=8080
//	MALNUTRITION_DATA_CSV_PATH=/srv/data/Child_data.csv
//	MALNUTRITION_GEO_STATE_OVERRIDES=Odisha:Orissa,Uttarakhand:Uttaranchal
//	MALNUTRITION_GEO_DISTRICT_OVERRIDES=Gurgaon:Gurugram
//	MALNUTRITION_GEO_SIMILARITY_THRESHOLD=0.6
//	MALNUTRITION_LOGGING_LEVEL=debug
//
// MALNUTRITION_CONFIG names the YAML file explicitly; otherwise config.yaml and
// configs/config.yaml are probed.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Tests use config.Default() and adjust the fields they care about.
package config
