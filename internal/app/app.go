package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MayaS12/Malnutrition-dashboard/internal/charts"
	"github.com/MayaS12/Malnutrition-dashboard/internal/config"
	"github.com/MayaS12/Malnutrition-dashboard/internal/dataset"
	apierrors "github.com/MayaS12/Malnutrition-dashboard/internal/errors"
	"github.com/MayaS12/Malnutrition-dashboard/internal/geo"
	"github.com/MayaS12/Malnutrition-dashboard/internal/infrastructure"
	customMiddleware "github.com/MayaS12/Malnutrition-dashboard/internal/middleware"
	"github.com/MayaS12/Malnutrition-dashboard/internal/reconcile"
	"github.com/MayaS12/Malnutrition-dashboard/internal/services"
	handlers "github.com/MayaS12/Malnutrition-dashboard/internal/transport/http"
	"github.com/MayaS12/Malnutrition-dashboard/pkg/contracts"
	"github.com/MayaS12/Malnutrition-dashboard/pkg/contracts/domain"
)

// runtimeInterval is how often runtime gauges are sampled
const runtimeInterval = 15 * time.Second

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.DashboardMetrics
	Runtime       *infrastructure.RuntimeCollector
	ErrorHandler  *apierrors.ErrorHandler

	Dashboard     *services.Dashboard
	PanelService  *services.PanelService
	HealthService *services.HealthService
}

// NewApplication loads configuration from the environment and builds the
// dashboard. Any failure to read the survey extract is fatal.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, apierrors.NewConfigError("failed to load config", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return NewApplicationWithConfig(context.Background(), cfg, logger)
}

// NewApplicationWithConfig builds the application from an explicit
// configuration and logger
func NewApplicationWithConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	ctx = infrastructure.EnsureTraceID(ctx)

	app := &Application{
		Config:       cfg,
		Logger:       logger,
		ErrorHandler: apierrors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	otelConfig := infrastructure.DefaultOTelConfig(cfg.Telemetry.ServiceName, contracts.Version)
	otelConfig.EnableMetrics = cfg.Telemetry.EnableMetrics
	otelConfig.EnableTracing = cfg.Telemetry.EnableTracing

	providers, err := infrastructure.InitializeOTel(otelConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	app.OTelProviders = providers

	metrics, err := infrastructure.CreateDashboardMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create dashboard metrics: %w", err)
	}
	app.Metrics = metrics

	runtimeCollector, err := infrastructure.NewRuntimeCollector(providers.Meter, runtimeInterval)
	if err != nil {
		return nil, fmt.Errorf("failed to create runtime collector: %w", err)
	}
	app.Runtime = runtimeCollector

	if err := app.initializeServices(ctx); err != nil {
		return nil, err
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices loads the survey, fetches the boundary documents and
// freezes the dashboard context shared by every panel
func (a *Application) initializeServices(ctx context.Context) error {
	ds, err := dataset.Load(ctx, a.Config.Data.CSVPath, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	a.Metrics.RecordRowsLoaded(ctx, ds.Len())

	fetchCtx, cancel := context.WithTimeout(ctx, a.Config.Geo.FetchTimeout)
	defer cancel()

	fetcher := geo.NewFetcher(&http.Client{Timeout: a.Config.Geo.FetchTimeout}, a.Logger)
	boundaries := fetcher.FetchAll(fetchCtx, []geo.Source{
		{Level: domain.LevelState, URL: a.Config.Geo.State.URL, NameProperty: a.Config.Geo.State.NameProperty},
		{Level: domain.LevelDistrict, URL: a.Config.Geo.District.URL, NameProperty: a.Config.Geo.District.NameProperty},
	})

	reconciler := reconcile.New(reconcile.Overrides{
		domain.LevelState:    a.Config.Geo.State.Overrides,
		domain.LevelDistrict: a.Config.Geo.District.Overrides,
	}, a.Config.Geo.SimilarityThreshold, a.Logger)

	dash, err := services.NewDashboard(ctx, ds, boundaries, reconciler, a.settings(), a.Metrics, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to build dashboard: %w", err)
	}
	a.Dashboard = dash

	a.PanelService = services.NewPanelService(dash, a.Metrics, a.Logger)
	a.HealthService = services.NewHealthServiceWithBuildInfo(
		contracts.Version, contracts.BuildTime, contracts.GitCommit, dash, a.Logger)

	return nil
}

func (a *Application) settings() services.Settings {
	d := a.Config.Dashboard
	size := charts.DefaultSize
	if d.ChartWidth > 0 && d.ChartHeight > 0 {
		size = charts.Size{Width: d.ChartWidth, Height: d.ChartHeight}
	}
	return services.Settings{
		TopN:               d.TopN,
		HighlightThreshold: d.HighlightThreshold,
		HistogramBins:      d.HistogramBins,
		ChartSize:          size,
		ExportName:         config.ExportFileName,
	}
}

// setupRouter configures the HTTP router.
// Middleware order: RequestID → RealIP → OTel → Logger → Recoverer → Timeout
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.Group(func(r chi.Router) {
		otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
		if err != nil {
			a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}

		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.ErrorHandler))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.Config.Security.AllowedOrigins, a.Config.Logging.Development))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupPageRoutes(r)
		a.setupAPIRoutes(r)
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.Router = r
}

// setupPageRoutes serves the server-rendered dashboard
func (a *Application) setupPageRoutes(r chi.Router) {
	validator := customMiddleware.NewValidator()
	page := handlers.NewDashboardHandler(a.PanelService, validator, a.Logger, a.ErrorHandler)

	r.With(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger)).Group(func(r chi.Router) {
		r.Get("/", page.Redirect)
		r.Get("/dashboard", page.Page)
	})
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	validator := customMiddleware.NewValidator()
	panels := handlers.NewPanelHandler(a.PanelService, validator, a.Logger, a.ErrorHandler)
	chartsHandler := handlers.NewChartHandler(a.PanelService, validator, a.Logger, a.ErrorHandler)
	export := handlers.NewExportHandler(a.PanelService, validator, a.Logger, a.ErrorHandler)
	health := handlers.NewHealthHandler(a.HealthService, a.Logger)

	r.Route("/api", func(r chi.Router) {
		// Probes stay outside the request timeout
		r.Get("/health", health.HealthCheck)
		r.Get("/health/ready", health.ReadinessCheck)
		r.Get("/health/live", health.LivenessCheck)
		r.Get("/version", health.Version)

		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

			r.Mount("/panels", panels.Routes())
			r.Mount("/charts", chartsHandler.Routes())
			r.Get("/reconciliation", panels.GetReconciliation)
			r.Get("/export.{format}", export.Export)
		})
	})
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the HTTP server and the runtime collector. A listener failure
// cancels ctx through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", contracts.GetVersionString()),
		slog.Int("port", a.Config.Server.Port),
		slog.String("csv_path", a.Config.Data.CSVPath))

	go a.Runtime.Start(ctx)

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d/dashboard", a.Config.Server.Port)))

	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.Runtime.Stop()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return infrastructure.CloseLogFile()
}

// Run runs the application until interrupted or the server fails
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		a.Logger.WarnContext(ctx, "Server stopped unexpectedly")
	}

	return a.Stop(context.Background())
}
