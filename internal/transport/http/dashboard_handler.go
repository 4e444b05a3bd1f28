package http

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	apierrors "github.com/MayaS12/Malnutrition-dashboard/internal/errors"
	mw "github.com/MayaS12/Malnutrition-dashboard/internal/middleware"
	"github.com/MayaS12/Malnutrition-dashboard/internal/services"
	api "github.com/MayaS12/Malnutrition-dashboard/pkg/contracts/api/v1"
	"github.com/MayaS12/Malnutrition-dashboard/pkg/contracts/domain"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTemplate = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

// Dashboard page text
const (
	PageTitle  = "Malnutrition Dashboard"
	PageIntro  = "Explore stunting, wasting and underweight prevalence among surveyed children, together with demographics, nutrition indicators, program reach and maternal factors."
	PageFooter = "Data source: Child Nutrition Survey. This dashboard is for policy and planning purposes only."
)

// Tab identifiers in display order
const (
	TabPrevalence   = "prevalence"
	TabDemographics = "demographics"
	TabNutrition    = "nutrition"
	TabProgram      = "program"
	TabMotherChild  = "mother-child"
)

var tabs = []struct{ ID, Label string }{
	{TabPrevalence, "Prevalence Maps & Charts"},
	{TabDemographics, "Demographics"},
	{TabNutrition, "Nutrition Indicators"},
	{TabProgram, "Program Reach"},
	{TabMotherChild, "Mother–Child Linkages"},
}

type tabLink struct {
	ID     string
	Label  string
	Href   string
	Active bool
}

type pageData struct {
	Title       string
	Intro       string
	Footer      string
	Tabs        []tabLink
	Tab         string
	Query       api.PanelQuery
	Levels      []string
	Statuses    []string
	Charts      map[string]string
	Downloads   map[string]string
	Prevalence  *api.PrevalenceResponse
	MotherChild api.MotherChildResponse
}

// DashboardHandler renders the server-side dashboard page
type DashboardHandler struct {
	service      PanelServiceInterface
	validator    *mw.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard page handler
func NewDashboardHandler(service PanelServiceInterface, validator *mw.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Redirect handles GET / by sending the browser to the dashboard
func (h *DashboardHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// Page handles GET /dashboard?tab=&level=&status=
func (h *DashboardHandler) Page(w http.ResponseWriter, r *http.Request) {
	q, err := parsePanelQuery(r, h.validator)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	tab := r.URL.Query().Get("tab")
	if tab == "" {
		tab = TabPrevalence
	}
	if !knownTab(tab) {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("tab", "unknown tab "+tab))
		return
	}

	data, err := h.pageData(r.Context(), tab, q)
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err, q.Level))
		return
	}

	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, data); err != nil {
		h.logger.ErrorContext(r.Context(), "dashboard template failed", slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apierrors.NewRenderError("dashboard page", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func (h *DashboardHandler) pageData(ctx context.Context, tab string, q api.PanelQuery) (*pageData, error) {
	data := &pageData{
		Title:      PageTitle,
		Intro:      PageIntro,
		Footer:     PageFooter,
		Tab:        tab,
		Query:      q,
		Charts:     make(map[string]string, len(services.ChartNames)),
		Downloads:  map[string]string{"CSV": "/api/export.csv", "Excel": "/api/export.xlsx"},
	}

	chartQuery := url.Values{"level": {q.Level}, "status": {q.Status}}.Encode()
	for _, name := range services.ChartNames {
		src := "/api/charts/" + name + ".svg"
		if services.IsPrevalenceChart(name) {
			src += "?" + chartQuery
		}
		data.Charts[name] = src
	}

	for _, l := range domain.Levels {
		data.Levels = append(data.Levels, string(l))
	}
	for _, s := range domain.GrowthStatuses {
		data.Statuses = append(data.Statuses, string(s))
	}
	for _, t := range tabs {
		href := "/dashboard?" + url.Values{"tab": {t.ID}, "level": {q.Level}, "status": {q.Status}}.Encode()
		data.Tabs = append(data.Tabs, tabLink{ID: t.ID, Label: t.Label, Href: href, Active: t.ID == tab})
	}

	switch tab {
	case TabPrevalence:
		resp, err := h.service.Prevalence(ctx, domain.Level(q.Level), domain.GrowthStatus(q.Status))
		if err != nil {
			return nil, err
		}
		data.Prevalence = resp
	case TabMotherChild:
		data.MotherChild = h.service.MotherChild(ctx)
	}
	return data, nil
}

func knownTab(id string) bool {
	for _, t := range tabs {
		if t.ID == id {
			return true
		}
	}
	return false
}
