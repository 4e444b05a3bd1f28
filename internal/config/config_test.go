package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets the variables a test touches and restores them afterwards
func clearEnv(t *testing.T, vars ...string) {
	t.Helper()
	for _, v := range vars {
		if old, ok := os.LookupEnv(v); ok {
			t.Cleanup(func() { os.Setenv(v, old) })
		} else {
			t.Cleanup(func() { os.Unsetenv(v) })
		}
		os.Unsetenv(v)
	}
}

var testEnvVars = []string{
	"MALNUTRITION_CONFIG",
	"MALNUTRITION_SERVER_PORT", "MALNUTRITION_SERVER_READ_TIMEOUT",
	"MALNUTRITION_SECURITY_ALLOWED_ORIGINS", "MALNUTRITION_SECURITY_ENABLE_CORS",
	"MALNUTRITION_LOGGING_LEVEL", "MALNUTRITION_LOGGING_FORMAT",
	"MALNUTRITION_DATA_CSV_PATH",
	"MALNUTRITION_GEO_STATE_OVERRIDES", "MALNUTRITION_GEO_DISTRICT_OVERRIDES",
	"MALNUTRITION_GEO_SIMILARITY_THRESHOLD",
	"MALNUTRITION_GEO_STATE_URL",
	"MALNUTRITION_DASHBOARD_TOP_N",
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no env vars",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "Child_data.csv", cfg.Data.CSVPath)
				assert.Equal(t, "NAME_1", cfg.Geo.State.NameProperty)
				assert.Equal(t, "NAME_2", cfg.Geo.District.NameProperty)
				assert.Equal(t, map[string]string{"Odisha": "Orissa"}, cfg.Geo.State.Overrides)
				assert.Empty(t, cfg.Geo.District.Overrides)
				assert.Equal(t, 0.6, cfg.Geo.SimilarityThreshold)
				assert.Equal(t, 15, cfg.Dashboard.TopN)
				assert.Equal(t, 20.0, cfg.Dashboard.HighlightThreshold)
				assert.Equal(t, 20, cfg.Dashboard.HistogramBins)
			},
		},
		{
			name: "environment overrides",
			env: map[string]string{
				"MALNUTRITION_SERVER_PORT":              "9090",
				"MALNUTRITION_SERVER_READ_TIMEOUT":      "30s",
				"MALNUTRITION_SECURITY_ALLOWED_ORIGINS": "http://a.example,https://b.example",
				"MALNUTRITION_LOGGING_FORMAT":           "text",
				"MALNUTRITION_DATA_CSV_PATH":            "/srv/survey.csv",
				"MALNUTRITION_GEO_STATE_OVERRIDES":      "Odisha:Orissa,Uttarakhand:Uttaranchal",
				"MALNUTRITION_GEO_DISTRICT_OVERRIDES":   "Gurgaon:Gurugram",
				"MALNUTRITION_DASHBOARD_TOP_N":          "10",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, []string{"http://a.example", "https://b.example"}, cfg.Security.AllowedOrigins)
				assert.Equal(t, "json", cfg.Logging.Format) // validate() forces json
				assert.Equal(t, "/srv/survey.csv", cfg.Data.CSVPath)
				assert.Equal(t, "Uttaranchal", cfg.Geo.State.Overrides["Uttarakhand"])
				assert.Equal(t, map[string]string{"Gurgaon": "Gurugram"}, cfg.Geo.District.Overrides)
				assert.Equal(t, 10, cfg.Dashboard.TopN)
			},
		},
		{
			name: "file values apply below env",
			file: `
server:
  port: 7070
data:
  csv_path: from-file.csv
dashboard:
  histogram_bins: 30
`,
			env: map[string]string{"MALNUTRITION_SERVER_PORT": "7171"},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7171, cfg.Server.Port)
				assert.Equal(t, "from-file.csv", cfg.Data.CSVPath)
				assert.Equal(t, 30, cfg.Dashboard.HistogramBins)
				assert.Equal(t, 15, cfg.Dashboard.TopN)
			},
		},
		{
			name:    "invalid port number",
			env:     map[string]string{"MALNUTRITION_SERVER_PORT": "99999"},
			wantErr: true,
		},
		{
			name:    "threshold out of range",
			env:     map[string]string{"MALNUTRITION_GEO_SIMILARITY_THRESHOLD": "1.5"},
			wantErr: true,
		},
		{
			name:    "unparseable env value",
			env:     map[string]string{"MALNUTRITION_DASHBOARD_TOP_N": "many"},
			wantErr: true,
		},
		{
			name:    "malformed file",
			file:    "server: [unterminated",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t, testEnvVars...)

			if tt.file != "" {
				path := filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.file), 0o644))
				os.Setenv("MALNUTRITION_CONFIG", path)
			}
			for k, v := range tt.env {
				os.Setenv(k, v)
			}

			cfg, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "default is valid", mutate: func(*Config) {}},
		{name: "zero port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "invalid server port"},
		{name: "negative read timeout", mutate: func(c *Config) { c.Server.ReadTimeout = -1 }, wantErr: "read timeout"},
		{name: "zero write timeout", mutate: func(c *Config) { c.Server.WriteTimeout = 0 }, wantErr: "write timeout"},
		{name: "cors without origins", mutate: func(c *Config) { c.Security.AllowedOrigins = nil }, wantErr: "allowed origin"},
		{name: "no csv path", mutate: func(c *Config) { c.Data.CSVPath = "" }, wantErr: "csv path"},
		{name: "no district url", mutate: func(c *Config) { c.Geo.District.URL = "" }, wantErr: "district url"},
		{name: "no state property", mutate: func(c *Config) { c.Geo.State.NameProperty = "" }, wantErr: "state name property"},
		{name: "zero threshold", mutate: func(c *Config) { c.Geo.SimilarityThreshold = 0 }, wantErr: "similarity threshold"},
		{name: "zero fetch timeout", mutate: func(c *Config) { c.Geo.FetchTimeout = 0 }, wantErr: "fetch timeout"},
		{name: "zero top n", mutate: func(c *Config) { c.Dashboard.TopN = 0 }, wantErr: "top_n"},
		{name: "zero bins", mutate: func(c *Config) { c.Dashboard.HistogramBins = 0 }, wantErr: "histogram_bins"},
		{name: "highlight above 100", mutate: func(c *Config) { c.Dashboard.HighlightThreshold = 101 }, wantErr: "highlight_threshold"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateNormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, DefaultLogFile, cfg.Logging.FilePath)
}

func TestGetConfigFilePath(t *testing.T) {
	clearEnv(t, "MALNUTRITION_CONFIG")

	t.Run("explicit env wins", func(t *testing.T) {
		os.Setenv("MALNUTRITION_CONFIG", "/etc/dashboard.yaml")
		defer os.Unsetenv("MALNUTRITION_CONFIG")
		assert.Equal(t, "/etc/dashboard.yaml", getConfigFilePath())
	})

	t.Run("probes working directory", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)
		dir := t.TempDir()
		require.NoError(t, os.Chdir(dir))
		defer os.Chdir(wd)

		assert.Equal(t, "", getConfigFilePath())

		require.NoError(t, os.WriteFile("config.yaml", []byte("server:\n  port: 8081\n"), 0o644))
		assert.Equal(t, "config.yaml", getConfigFilePath())
	})
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, DefaultStateGeoJSONURL, cfg.Geo.State.URL)
	assert.Equal(t, DefaultDistrictGeoJSONURL, cfg.Geo.District.URL)
	assert.Equal(t, 30*time.Second, cfg.Geo.FetchTimeout)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.Equal(t, AppName, cfg.Telemetry.ServiceName)
}
