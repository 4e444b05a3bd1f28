// Package api contains the JSON contracts of the dashboard HTTP API.
// Version v1 represents the current stable API version.
package api

import (
	"github.com/MayaS12/Malnutrition-dashboard/pkg/contracts/domain"
)

// PanelQuery selects the geography level and growth status for the prevalence panel
type PanelQuery struct {
	Level  string `json:"level" query:"level" validate:"required,geo_level"`
	Status string `json:"status" query:"status" validate:"required,growth_status"`
}

// DefaultPanelQuery is used when the page is opened without a selection
func DefaultPanelQuery() PanelQuery {
	return PanelQuery{
		Level:  string(domain.LevelState),
		Status: string(domain.GrowthStunted),
	}
}

// WithDefaults fills empty fields from DefaultPanelQuery
func (q PanelQuery) WithDefaults() PanelQuery {
	def := DefaultPanelQuery()
	if q.Level == "" {
		q.Level = def.Level
	}
	if q.Status == "" {
		q.Status = def.Status
	}
	return q
}

// ChartQuery addresses one rendered chart. Level and Status only matter for
// the prevalence charts.
type ChartQuery struct {
	Name string `json:"name" query:"name" validate:"required"`
	PanelQuery
}

// ExportQuery selects the download format
type ExportQuery struct {
	Format string `json:"format" query:"format" validate:"required,oneof=csv xlsx"`
}
