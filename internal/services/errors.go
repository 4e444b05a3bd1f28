package services

import "errors"

// Dashboard service errors
var (
	// Chart errors
	ErrUnknownChart = errors.New("unknown chart")
	ErrNoChartData  = errors.New("no chart data available")

	// Section errors
	ErrGeometryUnavailable = errors.New("boundary geometry unavailable")
	ErrSectionUnavailable  = errors.New("section unavailable for this dataset")

	// General errors
	ErrInvalidInput       = errors.New("invalid input")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)
