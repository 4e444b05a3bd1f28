package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/MayaS12/Malnutrition-dashboard/internal/infrastructure"
	"github.com/MayaS12/Malnutrition-dashboard/pkg/contracts"
	"github.com/MayaS12/Malnutrition-dashboard/pkg/contracts/domain"
)

// Readiness states
const (
	StatusReady    = "ready"
	StatusDegraded = "degraded"
	StatusNotReady = "not_ready"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	gitCommit string
	dashboard *Dashboard
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual component health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// SystemStats represents runtime statistics
type SystemStats struct {
	UptimeSeconds float64 `json:"uptime_seconds"`
	Rows          int     `json:"rows"`
	Maps          int     `json:"maps"`
	Goroutines    int     `json:"goroutines"`
	GoVersion     string  `json:"go_version"`
	OS            string  `json:"os"`
	Arch          string  `json:"arch"`
}

// NewHealthService creates a health service. dashboard may be nil while the
// application is still starting.
func NewHealthService(version string, dashboard *Dashboard, logger *slog.Logger) *HealthService {
	return NewHealthServiceWithBuildInfo(version, "", "", dashboard, logger)
}

// NewHealthServiceWithBuildInfo creates a health service with build information
func NewHealthServiceWithBuildInfo(version, buildTime, gitCommit string, dashboard *Dashboard, logger *slog.Logger) *HealthService {
	logger = infrastructure.WithComponent(logger, "health")

	logger.Debug("health service initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime),
		slog.String("git_commit", gitCommit))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		gitCommit: gitCommit,
		dashboard: dashboard,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
	hs.logger.DebugContext(ctx, "health check completed", slog.String("status", status.Status))
	return status
}

// ReadinessCheck reports the dataset and both boundary documents. A missing
// dataset is not ready; a missing map only degrades the dashboard.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	data := hs.checkDataset()
	status.Services["dataset"] = data
	if data.Status != StatusReady {
		status.Status = StatusNotReady
	}

	for _, level := range domain.Levels {
		geo := hs.checkGeometry(level)
		status.Services["geometry_"+levelKey(level)] = geo
		if geo.Status != StatusReady && status.Status == StatusReady {
			status.Status = StatusDegraded
		}
	}

	if status.Status != StatusReady {
		hs.logger.WarnContext(ctx, "dashboard not fully ready", slog.String("status", status.Status))
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	result := map[string]interface{}{
		"version":      hs.version,
		"api_version":  info.APIVersion,
		"data_format":  info.DataFormat,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}

	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	if hs.gitCommit != "" {
		result["git_commit"] = hs.gitCommit
	}

	return result
}

// SystemStats returns runtime statistics
func (hs *HealthService) SystemStats(ctx context.Context) SystemStats {
	stats := SystemStats{
		UptimeSeconds: time.Since(hs.startTime).Seconds(),
		Goroutines:    runtime.NumGoroutine(),
		GoVersion:     runtime.Version(),
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
	}
	if hs.dashboard != nil {
		stats.Rows = len(hs.dashboard.records)
		stats.Maps = len(hs.dashboard.geometry)
	}
	return stats
}

func (hs *HealthService) checkDataset() ServiceHealth {
	if hs.dashboard == nil || hs.dashboard.dataset == nil {
		return ServiceHealth{Status: StatusNotReady, Message: "dataset not loaded"}
	}
	return ServiceHealth{
		Status:  StatusReady,
		Message: fmt.Sprintf("%d rows loaded", len(hs.dashboard.records)),
	}
}

func (hs *HealthService) checkGeometry(level domain.Level) ServiceHealth {
	if hs.dashboard == nil {
		return ServiceHealth{Status: StatusNotReady, Message: "dashboard not built"}
	}
	coll, err := hs.dashboard.Geometry(level)
	if err != nil {
		return ServiceHealth{Status: StatusNotReady, Message: err.Error()}
	}
	return ServiceHealth{
		Status:  StatusReady,
		Message: fmt.Sprintf("%d features", len(coll.Features)),
	}
}

func levelKey(level domain.Level) string {
	switch level {
	case domain.LevelDistrict:
		return "district"
	default:
		return "state"
	}
}
