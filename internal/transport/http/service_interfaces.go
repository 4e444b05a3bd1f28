package http

import (
	"context"
	"io"

	"github.com/MayaS12/Malnutrition-dashboard/internal/exporter"
	"github.com/MayaS12/Malnutrition-dashboard/internal/services"
	api "github.com/MayaS12/Malnutrition-dashboard/pkg/contracts/api/v1"
	"github.com/MayaS12/Malnutrition-dashboard/pkg/contracts/domain"
)

// PanelServiceInterface defines the panel, chart and export operations
type PanelServiceInterface interface {
	Prevalence(ctx context.Context, level domain.Level, status domain.GrowthStatus) (*api.PrevalenceResponse, error)
	Demographics(ctx context.Context) api.DemographicsResponse
	Nutrition(ctx context.Context) api.NutritionResponse
	ProgramReach(ctx context.Context) api.ProgramReachResponse
	MotherChild(ctx context.Context) api.MotherChildResponse
	Reconciliation(ctx context.Context) api.ReconciliationResponse
	Chart(ctx context.Context, name string, q api.PanelQuery) ([]byte, error)
	Export(ctx context.Context, w io.Writer, f exporter.Format) error
	ExportFileName(f exporter.Format) string
}

// HealthServiceInterface defines the health operations
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}

var (
	_ PanelServiceInterface  = (*services.PanelService)(nil)
	_ HealthServiceInterface = (*services.HealthService)(nil)
)
