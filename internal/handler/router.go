package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/boddenberg/store-portal-bfa-go/internal/domain"
	"github.com/boddenberg/store-portal-bfa-go/internal/infra/observability"
	"github.com/boddenberg/store-portal-bfa-go/internal/port"
	"github.com/boddenberg/store-portal-bfa-go/internal/service"
	"github.com/boddenberg/store-portal-bfa-go/internal/session"
)

var tracer = otel.Tracer("handler")

// Services bundles the use cases the router exposes.
type Services struct {
	Auth      *service.AuthService
	Catalog   *service.CatalogService
	Intake    *service.IntakeService
	Directory *service.DirectoryService
	Customer  *service.CustomerService
	Dashboard *service.DashboardService
}

// RouterConfig holds the session plumbing and the portal's paths.
type RouterConfig struct {
	Sessions          *session.Manager
	Workspaces        *service.Workspaces
	Edge              EdgeConfig
	PublicLandingPath string
	SecureCookies     bool
}

// NewRouter creates the HTTP router with all routes and middleware.
//
// Order matters: the edge redirector sees the request before the session is
// resolved, and the route guard only after.
func NewRouter(svcs *Services, cfg RouterConfig, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger, session.DeviceCookie))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	var kv port.KVStore
	if cfg.Sessions != nil {
		kv = cfg.Sessions.KV()
	}
	r.Get("/healthz", healthzHandler(kv, logger))
	r.Get("/readyz", readyzHandler(kv))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	if svcs == nil || cfg.Sessions == nil || cfg.Workspaces == nil {
		return r
	}

	guard := RouteGuard(cfg.PublicLandingPath, logger)

	// --- Portal ---
	r.Group(func(r chi.Router) {
		r.Use(EdgeRedirector(cfg.Edge, metrics, logger))
		r.Use(SessionMiddleware(cfg.Sessions, cfg.Workspaces, cfg.SecureCookies, logger))

		// =============================================
		// Pages
		// =============================================
		r.Get(cfg.PublicLandingPath, loginPageHandler(cfg.Edge.LandingPath, logger))
		r.Get(cfg.Edge.LoginPath, redirectHandler(cfg.PublicLandingPath))

		r.Group(func(r chi.Router) {
			r.Use(guard)
			r.Get(cfg.Edge.LandingPath, dashboardPageHandler(logger))
			r.Get(cfg.Edge.ProtectedPrefix+"/addCustomer", addCustomerPageHandler(logger))
			r.Get(cfg.Edge.ProtectedPrefix+"/manageCustomer", manageCustomerPageHandler(logger))
			r.Get(cfg.Edge.ProtectedPrefix+"/editCustomer/{id}", editCustomerPageHandler(logger))
		})

		r.Route("/api", func(r chi.Router) {
			// =============================================
			// Auth
			// =============================================
			r.Post("/auth/login", authLoginHandler(svcs.Auth, logger))
			r.Post("/auth/logout", authLogoutHandler(svcs.Auth, logger))
			r.Get("/auth/session", authSessionHandler(svcs.Auth))

			r.Group(func(r chi.Router) {
				r.Use(guard)

				// =============================================
				// Service catalog
				// =============================================
				r.Get("/services", listServicesHandler(svcs.Catalog, logger))

				// =============================================
				// Add customer
				// =============================================
				r.Get("/intake", intakeViewHandler())
				r.Patch("/intake", intakeChangeHandler(svcs.Intake, logger))
				r.Delete("/intake", intakeResetHandler())
				r.Post("/intake/blur/{field}", intakeBlurHandler(svcs.Intake, logger))
				r.Post("/intake/uploads/{kind}", intakeUploadHandler(svcs.Intake, logger))
				r.Post("/intake/submit", intakeSubmitHandler(svcs.Intake, logger))
				r.Get("/intake/log", intakeLogHandler(svcs.Intake, logger))

				// =============================================
				// Manage customers
				// =============================================
				r.Post("/directory/refresh", directoryRefreshHandler(svcs.Directory, logger))
				r.Get("/directory", directoryViewHandler())
				r.Put("/directory/filter", directoryFilterHandler(svcs.Directory, logger))
				r.Put("/directory/page", directoryPageHandler(svcs.Directory))
				r.Delete("/directory/customers/{id}", directoryDeleteHandler(svcs.Directory, logger))
				r.Get("/directory/export.xlsx", directoryExportHandler(svcs.Directory, service.FormatXLSX, logger))
				r.Get("/directory/export.pdf", directoryExportHandler(svcs.Directory, service.FormatPDF, logger))

				// =============================================
				// Edit customer
				// =============================================
				r.Get("/customers/{id}", getCustomerHandler(svcs.Customer, logger))
				r.Put("/customers/{id}", updateCustomerHandler(svcs.Customer, logger))
				r.Post("/customers/{id}/uploads/{kind}", customerUploadHandler(svcs.Customer, logger))

				// =============================================
				// Dashboard
				// =============================================
				r.Get("/dashboard", dashboardHandler(svcs.Dashboard, logger))
			})
		})
	})

	return r
}

// ============================================================
// Health
// ============================================================

func healthzHandler(kv port.KVStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "portal-bfa", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		if kv != nil {
			start := time.Now()
			err := kv.Ping(r.Context())
			status := "healthy"
			if err != nil {
				status = "degraded"
				logger.Warn("healthz: durable store ping failed", zap.Error(err))
			}
			services = append(services, domain.ServiceHealth{
				Name: "durable-store", Status: status,
				LatencyMs: time.Since(start).Milliseconds(), LastChecked: now,
			})
		}

		overall := "healthy"
		for _, s := range services {
			if s.Status != "healthy" {
				overall = s.Status
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{Status: overall, Services: services})
	}
}

func readyzHandler(kv port.KVStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if kv != nil {
			if err := kv.Ping(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
