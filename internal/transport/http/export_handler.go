package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/MayaS12/Malnutrition-dashboard/internal/errors"
	"github.com/MayaS12/Malnutrition-dashboard/internal/exporter"
	mw "github.com/MayaS12/Malnutrition-dashboard/internal/middleware"
	api "github.com/MayaS12/Malnutrition-dashboard/pkg/contracts/api/v1"
)

// ExportHandler serves the reconciled dataset as a download
type ExportHandler struct {
	service      PanelServiceInterface
	validator    *mw.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewExportHandler creates a new export handler
func NewExportHandler(service PanelServiceInterface, validator *mw.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExportHandler {
	return &ExportHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "export_handler")),
		errorHandler: errorHandler,
	}
}

// Export handles GET /api/export.csv and /api/export.xlsx. The file is built
// in memory first so a failure still yields a problem response.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	q := api.ExportQuery{Format: chi.URLParam(r, "format")}
	if err := h.validator.Struct(q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	format, err := exporter.ParseFormat(q.Format)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", err.Error()))
		return
	}

	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), &buf, format); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(http.StatusInternalServerError,
			apierrors.CodeExportFailed, "Export failed", err.Error()))
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.service.ExportFileName(format)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
