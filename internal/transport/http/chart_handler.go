package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MayaS12/Malnutrition-dashboard/internal/charts"
	apierrors "github.com/MayaS12/Malnutrition-dashboard/internal/errors"
	mw "github.com/MayaS12/Malnutrition-dashboard/internal/middleware"
	api "github.com/MayaS12/Malnutrition-dashboard/pkg/contracts/api/v1"
)

// ChartHandler serves rendered SVG charts
type ChartHandler struct {
	service      PanelServiceInterface
	validator    *mw.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewChartHandler creates a new chart handler
func NewChartHandler(service PanelServiceInterface, validator *mw.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ChartHandler {
	return &ChartHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "chart_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the chart routes
func (h *ChartHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{name}.svg", h.GetChart)
	return r
}

// GetChart handles GET /api/charts/{name}.svg
func (h *ChartHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	pq, err := parsePanelQuery(r, h.validator)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	q := api.ChartQuery{Name: chi.URLParam(r, "name"), PanelQuery: pq}
	if err := h.validator.Struct(q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	svg, err := h.service.Chart(r.Context(), q.Name, q.PanelQuery)
	if err != nil {
		h.logger.WarnContext(r.Context(), "chart unavailable",
			slog.String("chart", q.Name),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, serviceError(err, q.Level))
		return
	}

	w.Header().Set("Content-Type", charts.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(svg)))
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write(svg)
}
