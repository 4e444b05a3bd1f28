package domain

import (
	"fmt"
	"math"
)

// GrowthStatus is the malnutrition classification of a surveyed child
type GrowthStatus string

const (
	GrowthStunted     GrowthStatus = "Stunted"
	GrowthWasted      GrowthStatus = "Wasted"
	GrowthUnderweight GrowthStatus = "Underweight"
	GrowthNormal      GrowthStatus = "Normal"
)

// GrowthStatuses lists the recognized categories in display order.
// Rows with any other Growth_status are dropped at load time.
var GrowthStatuses = []GrowthStatus{GrowthStunted, GrowthWasted, GrowthUnderweight, GrowthNormal}

// MalnutritionStatuses are the non-normal categories
var MalnutritionStatuses = []GrowthStatus{GrowthStunted, GrowthWasted, GrowthUnderweight}

// IsValid reports whether s is one of the recognized categories
func (s GrowthStatus) IsValid() bool {
	for _, known := range GrowthStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseGrowthStatus converts a raw value into a GrowthStatus
func ParseGrowthStatus(raw string) (GrowthStatus, error) {
	s := GrowthStatus(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown growth status %q", raw)
	}
	return s, nil
}

// Level is a geographic aggregation level
type Level string

const (
	LevelState    Level = "State"
	LevelDistrict Level = "District"
)

// Levels lists the supported levels in display order
var Levels = []Level{LevelState, LevelDistrict}

// IsValid reports whether l is a supported level
func (l Level) IsValid() bool {
	return l == LevelState || l == LevelDistrict
}

// Column returns the dataset column holding the level's place names
func (l Level) Column() string {
	return string(l)
}

// ParseLevel converts a raw value into a Level
func ParseLevel(raw string) (Level, error) {
	l := Level(raw)
	if !l.IsValid() {
		return "", fmt.Errorf("unknown level %q", raw)
	}
	return l, nil
}

// Record is one surveyed child. Numeric fields hold NaN when the cell was empty
// or could not be parsed, so Record is never JSON encoded directly.
type Record struct {
	State                  string
	District               string
	AgeInMonths            float64
	Sex                    string
	HeightCm               float64
	WeightKg               float64
	MUACCm                 float64
	GrowthStatus           GrowthStatus
	ImmunizationStatus     string
	SupplementaryNutrition string
	MothersWeightKg        float64
	MothersHeightCm        float64
	MaternalAnemiaStatus   string
	MotherBMI              float64
}

// Place returns the record's place name at the given level
func (r Record) Place(level Level) string {
	if level == LevelDistrict {
		return r.District
	}
	return r.State
}

// MotherBMIFrom computes body-mass-index from weight in kg and height in cm.
// NaN inputs or a non-positive height yield NaN.
func MotherBMIFrom(weightKg, heightCm float64) float64 {
	if math.IsNaN(weightKg) || math.IsNaN(heightCm) || heightCm <= 0 {
		return math.NaN()
	}
	m := heightCm / 100
	return weightKg / (m * m)
}

// AggregateRow is one (place, growth status) cell of a prevalence table
type AggregateRow struct {
	Place        string       `json:"place"`
	GrowthStatus GrowthStatus `json:"growth_status"`
	Count        int          `json:"count"`
	Total        int          `json:"total"`
	Percentage   float64      `json:"percentage"`
}
