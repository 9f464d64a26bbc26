package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mrspaquetes/paqueteria-api/internal/auth"
	"github.com/mrspaquetes/paqueteria-api/internal/collection"
	"github.com/mrspaquetes/paqueteria-api/internal/incidents"
	"github.com/mrspaquetes/paqueteria-api/internal/masterdata"
	"github.com/mrspaquetes/paqueteria-api/internal/observability"
	"github.com/mrspaquetes/paqueteria-api/internal/orders"
	"github.com/mrspaquetes/paqueteria-api/internal/shared"
	"github.com/mrspaquetes/paqueteria-api/internal/tariffs"
	"github.com/mrspaquetes/paqueteria-api/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	SessionManager    *shared.SessionManager
	AuthHandler       *auth.Handler
	MasterDataHandler *masterdata.Handler
	TariffHandler     *tariffs.Handler
	OrderHandler      *orders.Handler
	CollectionHandler *collection.Handler
	IncidentHandler   *incidents.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router for the API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(ar chi.Router) {
			params.AuthHandler.MountRoutes(ar)
		})

		// Everything below needs a valid bearer session.
		api.Group(func(protected chi.Router) {
			protected.Use(auth.RequireSession)

			params.MasterDataHandler.MountRoutes(protected)
			params.OrderHandler.MountRoutes(protected)
			params.CollectionHandler.MountRoutes(protected)
			params.IncidentHandler.MountRoutes(protected)

			// Tariff administration is admin-only; order capture reads
			// prices through the service, not these routes.
			protected.Group(func(admin chi.Router) {
				admin.Use(auth.RequireRole(auth.RoleAdmin))
				params.TariffHandler.MountRoutes(admin)
			})

			if params.JobHandler != nil {
				protected.Route("/jobs", func(jr chi.Router) {
					params.JobHandler.MountRoutes(jr)
				})
			}
		})
	})

	return r
}
