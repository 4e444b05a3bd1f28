package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "github.com/MayaS12/Malnutrition-dashboard/internal/errors"
	mw "github.com/MayaS12/Malnutrition-dashboard/internal/middleware"
	"github.com/MayaS12/Malnutrition-dashboard/internal/services"
	"github.com/MayaS12/Malnutrition-dashboard/pkg/contracts/domain"
)

// PanelHandler serves the JSON data behind each dashboard panel
type PanelHandler struct {
	service      PanelServiceInterface
	validator    *mw.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewPanelHandler creates a new panel handler
func NewPanelHandler(service PanelServiceInterface, validator *mw.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *PanelHandler {
	return &PanelHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "panel_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the panel routes
func (h *PanelHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/prevalence", h.GetPrevalence)
	r.Get("/demographics", h.GetDemographics)
	r.Get("/nutrition", h.GetNutrition)
	r.Get("/program", h.GetProgramReach)
	r.Get("/mother-child", h.GetMotherChild)

	return r
}

// GetPrevalence handles GET /api/panels/prevalence
func (h *PanelHandler) GetPrevalence(w http.ResponseWriter, r *http.Request) {
	q, err := parsePanelQuery(r, h.validator)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp, err := h.service.Prevalence(r.Context(), domain.Level(q.Level), domain.GrowthStatus(q.Status))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "prevalence panel failed",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())))
		h.errorHandler.HandleError(w, r, serviceError(err, q.Level))
		return
	}
	render.JSON(w, r, resp)
}

// GetDemographics handles GET /api/panels/demographics
func (h *PanelHandler) GetDemographics(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Demographics(r.Context()))
}

// GetNutrition handles GET /api/panels/nutrition
func (h *PanelHandler) GetNutrition(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Nutrition(r.Context()))
}

// GetProgramReach handles GET /api/panels/program
func (h *PanelHandler) GetProgramReach(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.ProgramReach(r.Context()))
}

// GetMotherChild handles GET /api/panels/mother-child
func (h *PanelHandler) GetMotherChild(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.MotherChild(r.Context()))
}

// GetReconciliation handles GET /api/reconciliation
func (h *PanelHandler) GetReconciliation(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Reconciliation(r.Context()))
}

// serviceError maps service sentinels onto API errors. Unknown errors pass
// through and become 500 problems.
func serviceError(err error, level string) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return apierrors.NewWithDetails(http.StatusBadRequest, apierrors.CodeValidationFailed, "Request validation failed", err.Error())
	case errors.Is(err, services.ErrUnknownChart):
		return apierrors.NotFoundError("chart")
	case errors.Is(err, services.ErrNoChartData):
		return apierrors.New(http.StatusNotFound, apierrors.CodeNotFound, err.Error())
	case errors.Is(err, services.ErrSectionUnavailable):
		return apierrors.New(http.StatusNotFound, apierrors.CodeSectionUnavailable, err.Error())
	case errors.Is(err, services.ErrGeometryUnavailable):
		return apierrors.GeometryUnavailableError(level, errors.Unwrap(err))
	case errors.Is(err, services.ErrServiceUnavailable):
		return apierrors.ErrServiceUnavailable
	}
	return err
}
