// Package services implements the dashboard's business logic between the HTTP
// handlers and the data packages.
//
// # Architecture
//
// Services follow these principles:
//
//	1. One explicit Dashboard context, built at startup and read-only afterwards
//	2. Context propagation for cancellation and tracing
//	3. Dependency injection of loggers and metrics
//	4. Panels as pure functions of the Dashboard and explicit parameters
//
// # Dashboard
//
// NewDashboard takes the loaded dataset and the fetched boundary documents,
// reconciles place names per level, applies the mappings, adds Mother_BMI and
// freezes the result. Concurrent requests share it without locking.
//
// # Available Services
//
//	- PanelService: panel payloads, rendered SVG charts and exports
//	- HealthService: health, readiness, liveness and version
//
// # Error Handling
//
// Services return the sentinel errors in errors.go, wrapped with context.
// Handlers map them to RFC 7807 problems:
//
//	- ErrGeometryUnavailable: the boundary document of a level failed to load
//	- ErrSectionUnavailable: the dataset lacks the columns a chart needs
//	- ErrNoChartData: the chart has nothing to draw
//	- ErrUnknownChart: no chart of that name
//
// # Caching
//
// Rendered SVG is cached in memory per chart, and per level and status for
// the prevalence charts. The cache never expires because the Dashboard never
// changes.
package services
