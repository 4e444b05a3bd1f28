package http

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "github.com/MayaS12/Malnutrition-dashboard/internal/errors"
	"github.com/MayaS12/Malnutrition-dashboard/internal/exporter"
	mw "github.com/MayaS12/Malnutrition-dashboard/internal/middleware"
	"github.com/MayaS12/Malnutrition-dashboard/internal/services"
	"github.com/MayaS12/Malnutrition-dashboard/internal/shared/testutil"
	api "github.com/MayaS12/Malnutrition-dashboard/pkg/contracts/api/v1"
	"github.com/MayaS12/Malnutrition-dashboard/pkg/contracts/domain"
)

// MockPanelService is a mock implementation of PanelServiceInterface
type MockPanelService struct {
	mock.Mock
}

func (m *MockPanelService) Prevalence(ctx context.Context, level domain.Level, status domain.GrowthStatus) (*api.PrevalenceResponse, error) {
	args := m.Called(level, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.PrevalenceResponse), args.Error(1)
}

func (m *MockPanelService) Demographics(ctx context.Context) api.DemographicsResponse {
	return m.Called().Get(0).(api.DemographicsResponse)
}

func (m *MockPanelService) Nutrition(ctx context.Context) api.NutritionResponse {
	return m.Called().Get(0).(api.NutritionResponse)
}

func (m *MockPanelService) ProgramReach(ctx context.Context) api.ProgramReachResponse {
	return m.Called().Get(0).(api.ProgramReachResponse)
}

func (m *MockPanelService) MotherChild(ctx context.Context) api.MotherChildResponse {
	return m.Called().Get(0).(api.MotherChildResponse)
}

func (m *MockPanelService) Reconciliation(ctx context.Context) api.ReconciliationResponse {
	return m.Called().Get(0).(api.ReconciliationResponse)
}

func (m *MockPanelService) Chart(ctx context.Context, name string, q api.PanelQuery) ([]byte, error) {
	args := m.Called(name, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockPanelService) Export(ctx context.Context, w io.Writer, f exporter.Format) error {
	return m.Called(w, f).Error(0)
}

func (m *MockPanelService) ExportFileName(f exporter.Format) string {
	return f.FileName("malnutrition_data")
}

// MockHealthService is a mock implementation of HealthServiceInterface
type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) HealthCheck(ctx context.Context) services.HealthStatus {
	return m.Called().Get(0).(services.HealthStatus)
}

func (m *MockHealthService) ReadinessCheck(ctx context.Context) services.HealthStatus {
	return m.Called().Get(0).(services.HealthStatus)
}

func (m *MockHealthService) LivenessCheck(ctx context.Context) services.HealthStatus {
	return m.Called().Get(0).(services.HealthStatus)
}

func (m *MockHealthService) Version() map[string]interface{} {
	return m.Called().Get(0).(map[string]interface{})
}

func testDeps(t *testing.T) (*slog.Logger, *apierrors.ErrorHandler, *mw.Validator) {
	logger, _ := testutil.NewTestLogger(t)
	return logger, apierrors.NewErrorHandler(logger, false), mw.NewValidator()
}

func serve(h http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPanelHandler_GetPrevalence(t *testing.T) {
	sample := &api.PrevalenceResponse{
		Level:  "State",
		Status: "Stunted",
		Title:  "Top States with highest Stunted prevalence",
		Top:    []api.RankedRow{{Place: "Orissa", Count: 10, Total: 10, Percentage: 100, Label: "100.0%"}},
	}

	tests := []struct {
		name           string
		target         string
		setupMock      func(*MockPanelService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "explicit level and status",
			target: "/prevalence?level=District&status=Wasted",
			setupMock: func(m *MockPanelService) {
				m.On("Prevalence", domain.LevelDistrict, domain.GrowthWasted).Return(sample, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"place":"Orissa"`,
		},
		{
			name:   "defaults to State and Stunted",
			target: "/prevalence",
			setupMock: func(m *MockPanelService) {
				m.On("Prevalence", domain.LevelState, domain.GrowthStunted).Return(sample, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"label":"100.0%"`,
		},
		{
			name:           "invalid level",
			target:         "/prevalence?level=Village",
			setupMock:      func(*MockPanelService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"VALIDATION_FAILED"`,
		},
		{
			name:           "invalid status",
			target:         "/prevalence?status=Obese",
			setupMock:      func(*MockPanelService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `status must be one of: Stunted, Wasted, Underweight, Normal`,
		},
		{
			name:   "internal error",
			target: "/prevalence",
			setupMock: func(m *MockPanelService) {
				m.On("Prevalence", domain.LevelState, domain.GrowthStunted).Return(nil, fmt.Errorf("boom"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"Internal Server Error"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockPanelService)
			tt.setupMock(mockService)
			logger, errorHandler, validator := testDeps(t)
			handler := NewPanelHandler(mockService, validator, logger, errorHandler)

			rec := serve(handler.Routes(), tt.target)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}

func TestPanelHandler_Sections(t *testing.T) {
	mockService := new(MockPanelService)
	mockService.On("Demographics").Return(api.DemographicsResponse{Sex: []api.CategoryCount{{Category: "Female", Count: 3}}})
	mockService.On("Nutrition").Return(api.NutritionResponse{GrowthByAge: []api.AgeMean{{AgeInMonths: 12}}})
	mockService.On("ProgramReach").Return(api.ProgramReachResponse{Immunization: api.CrossTab{RowKey: "State"}})
	mockService.On("MotherChild").Return(api.MotherChildResponse{BMIAvailable: false})

	logger, errorHandler, validator := testDeps(t)
	routes := NewPanelHandler(mockService, validator, logger, errorHandler).Routes()

	tests := []struct {
		target string
		body   string
	}{
		{"/demographics", `"category":"Female"`},
		{"/nutrition", `"age_in_months":12`},
		{"/program", `"row_key":"State"`},
		{"/mother-child", `"bmi_available":false`},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := serve(routes, tt.target)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
}

func TestPanelHandler_GetReconciliation(t *testing.T) {
	mockService := new(MockPanelService)
	mockService.On("Reconciliation").Return(api.ReconciliationResponse{Levels: []api.LevelReconciliation{{
		Level:     "State",
		Mappings:  []api.NameMapping{{Raw: "Odisha", Canonical: "Orissa", Method: "override", Score: 1}},
		Unmatched: []string{},
	}}})
	logger, errorHandler, validator := testDeps(t)
	handler := NewPanelHandler(mockService, validator, logger, errorHandler)

	rec := httptest.NewRecorder()
	handler.GetReconciliation(rec, httptest.NewRequest(http.MethodGet, "/api/reconciliation", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"raw":"Odisha"`)
	assert.Contains(t, rec.Body.String(), `"canonical":"Orissa"`)
}

func TestChartHandler_GetChart(t *testing.T) {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`)
	stateStunted := api.PanelQuery{Level: "State", Status: "Stunted"}

	tests := []struct {
		name           string
		target         string
		setupMock      func(*MockPanelService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "prevalence map",
			target: "/prevalence-map.svg?level=State&status=Stunted",
			setupMock: func(m *MockPanelService) {
				m.On("Chart", "prevalence-map", stateStunted).Return(svg, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "<svg",
		},
		{
			name:   "panel chart ignores level",
			target: "/sex-pie.svg",
			setupMock: func(m *MockPanelService) {
				m.On("Chart", "sex-pie", stateStunted).Return(svg, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "<svg",
		},
		{
			name:   "unknown chart",
			target: "/radar.svg",
			setupMock: func(m *MockPanelService) {
				m.On("Chart", "radar", stateStunted).Return(nil, fmt.Errorf("%w: radar", services.ErrUnknownChart))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"NOT_FOUND"`,
		},
		{
			name:   "geometry unavailable",
			target: "/prevalence-map.svg?level=District&status=Stunted",
			setupMock: func(m *MockPanelService) {
				m.On("Chart", "prevalence-map", api.PanelQuery{Level: "District", Status: "Stunted"}).
					Return(nil, fmt.Errorf("%w: %w", services.ErrGeometryUnavailable, fmt.Errorf("status 404")))
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `"GEOMETRY_UNAVAILABLE"`,
		},
		{
			name:   "section unavailable",
			target: "/bmi-scatter.svg",
			setupMock: func(m *MockPanelService) {
				m.On("Chart", "bmi-scatter", stateStunted).Return(nil, fmt.Errorf("%w: Mother_BMI", services.ErrSectionUnavailable))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"SECTION_UNAVAILABLE"`,
		},
		{
			name:           "invalid status",
			target:         "/prevalence-bar.svg?status=Obese",
			setupMock:      func(*MockPanelService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"VALIDATION_FAILED"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockPanelService)
			tt.setupMock(mockService)
			logger, errorHandler, validator := testDeps(t)
			handler := NewChartHandler(mockService, validator, logger, errorHandler)

			rec := serve(handler.Routes(), tt.target)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestExportHandler_Export(t *testing.T) {
	tests := []struct {
		name            string
		format          string
		setupMock       func(*MockPanelService)
		expectedStatus  int
		expectedType    string
		expectedFile    string
		expectedContent string
	}{
		{
			name:   "csv",
			format: "csv",
			setupMock: func(m *MockPanelService) {
				m.On("Export", mock.Anything, exporter.FormatCSV).Return(nil).Run(func(args mock.Arguments) {
					io.WriteString(args.Get(0).(io.Writer), "State,District\nOrissa,Puri\n")
				})
			},
			expectedStatus:  http.StatusOK,
			expectedType:    "text/csv; charset=utf-8",
			expectedFile:    `attachment; filename="malnutrition_data.csv"`,
			expectedContent: "Orissa,Puri",
		},
		{
			name:   "xlsx",
			format: "xlsx",
			setupMock: func(m *MockPanelService) {
				m.On("Export", mock.Anything, exporter.FormatXLSX).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedType:   "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			expectedFile:   `attachment; filename="malnutrition_data.xlsx"`,
		},
		{
			name:            "unsupported format",
			format:          "pdf",
			setupMock:       func(*MockPanelService) {},
			expectedStatus:  http.StatusBadRequest,
			expectedContent: "format must be one of: csv, xlsx",
		},
		{
			name:   "export failure",
			format: "csv",
			setupMock: func(m *MockPanelService) {
				m.On("Export", mock.Anything, exporter.FormatCSV).Return(fmt.Errorf("disk full"))
			},
			expectedStatus:  http.StatusInternalServerError,
			expectedContent: `"EXPORT_FAILED"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockPanelService)
			tt.setupMock(mockService)
			logger, errorHandler, validator := testDeps(t)
			handler := NewExportHandler(mockService, validator, logger, errorHandler)

			r := chi.NewRouter()
			r.Get("/export.{format}", handler.Export)
			rec := serve(r, "/export."+tt.format)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedType != "" {
				assert.Equal(t, tt.expectedType, rec.Header().Get("Content-Type"))
			}
			if tt.expectedFile != "" {
				assert.Equal(t, tt.expectedFile, rec.Header().Get("Content-Disposition"))
			}
			assert.Contains(t, rec.Body.String(), tt.expectedContent)
			mockService.AssertExpectations(t)
		})
	}
}

func TestHealthHandler(t *testing.T) {
	now := time.Now()

	t.Run("ready", func(t *testing.T) {
		mockService := new(MockHealthService)
		mockService.On("ReadinessCheck").Return(services.HealthStatus{Status: services.StatusReady, Timestamp: now})
		rec := httptest.NewRecorder()
		NewHealthHandler(mockService, slog.Default()).ReadinessCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"ready"`)
	})

	t.Run("degraded still answers 200", func(t *testing.T) {
		mockService := new(MockHealthService)
		mockService.On("ReadinessCheck").Return(services.HealthStatus{Status: services.StatusDegraded, Timestamp: now})
		rec := httptest.NewRecorder()
		NewHealthHandler(mockService, slog.Default()).ReadinessCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not ready", func(t *testing.T) {
		mockService := new(MockHealthService)
		mockService.On("ReadinessCheck").Return(services.HealthStatus{Status: services.StatusNotReady, Timestamp: now})
		rec := httptest.NewRecorder()
		NewHealthHandler(mockService, slog.Default()).ReadinessCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("health, liveness and version", func(t *testing.T) {
		mockService := new(MockHealthService)
		mockService.On("HealthCheck").Return(services.HealthStatus{Status: "ok", Version: "1.0.0"})
		mockService.On("LivenessCheck").Return(services.HealthStatus{Status: "alive"})
		mockService.On("Version").Return(map[string]interface{}{"version": "1.0.0"})
		h := NewHealthHandler(mockService, slog.Default())

		rec := httptest.NewRecorder()
		h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		assert.Contains(t, rec.Body.String(), `"status":"ok"`)

		rec = httptest.NewRecorder()
		h.LivenessCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health/live", nil))
		assert.Contains(t, rec.Body.String(), `"status":"alive"`)

		rec = httptest.NewRecorder()
		h.Version(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))
		assert.Contains(t, rec.Body.String(), `"version":"1.0.0"`)
		mockService.AssertExpectations(t)
	})
}

func TestDashboardHandler_Page(t *testing.T) {
	prevalence := &api.PrevalenceResponse{
		Level:        "State",
		Status:       "Stunted",
		Title:        "Top States with highest Stunted prevalence",
		Top:          []api.RankedRow{{Place: "Orissa", Count: 10, Total: 10, Percentage: 100, Label: "100.0%"}},
		MapAvailable: false,
		MapError:     "boundary geometry unavailable: status 404",
	}

	newRouter := func(m *MockPanelService) chi.Router {
		logger, errorHandler, validator := testDeps(t)
		h := NewDashboardHandler(m, validator, logger, errorHandler)
		r := chi.NewRouter()
		r.Get("/", h.Redirect)
		r.Get("/dashboard", h.Page)
		return r
	}

	t.Run("root redirects", func(t *testing.T) {
		rec := serve(newRouter(new(MockPanelService)), "/")
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	})

	t.Run("prevalence tab", func(t *testing.T) {
		m := new(MockPanelService)
		m.On("Prevalence", domain.LevelState, domain.GrowthStunted).Return(prevalence, nil)

		rec := serve(newRouter(m), "/dashboard")
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()

		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Contains(t, body, "<title>Malnutrition Dashboard</title>")
		assert.Contains(t, body, "Prevalence Maps &amp; Charts")
		assert.Contains(t, body, "Mother–Child Linkages")
		assert.Contains(t, body, "Stunted Prevalence by State")
		assert.Contains(t, body, "/api/charts/prevalence-bar.svg?level=State")
		assert.Contains(t, body, "Map unavailable: boundary geometry unavailable: status 404")
		assert.Contains(t, body, "<td>Orissa</td>")
		assert.Contains(t, body, "/api/export.csv")
		assert.Contains(t, body, "/api/export.xlsx")
		assert.Contains(t, body, PageFooter)
		m.AssertExpectations(t)
	})

	t.Run("mother-child tab skips missing sections", func(t *testing.T) {
		m := new(MockPanelService)
		m.On("MotherChild").Return(api.MotherChildResponse{BMIAvailable: false, AnemiaAvailable: true})

		rec := serve(newRouter(m), "/dashboard?tab=mother-child")
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()

		assert.NotContains(t, body, "/api/charts/bmi-scatter.svg")
		assert.Contains(t, body, "/api/charts/anemia-box.svg")
		assert.Contains(t, body, "Maternal Anemia vs Child Growth Status")
	})

	t.Run("demographics tab needs no panel data", func(t *testing.T) {
		m := new(MockPanelService)
		rec := serve(newRouter(m), "/dashboard?tab=demographics")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "/api/charts/age-histogram.svg")
		assert.Contains(t, rec.Body.String(), "/api/charts/sex-pie.svg")
		m.AssertExpectations(t)
	})

	t.Run("unknown tab", func(t *testing.T) {
		rec := serve(newRouter(new(MockPanelService)), "/dashboard?tab=settings")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid level", func(t *testing.T) {
		rec := serve(newRouter(new(MockPanelService)), "/dashboard?level=Country")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
