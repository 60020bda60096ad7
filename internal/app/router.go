package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/balcao-pos/balcao-pos/internal/catalog"
	"github.com/balcao-pos/balcao-pos/internal/clients"
	"github.com/balcao-pos/balcao-pos/internal/dashboard"
	"github.com/balcao-pos/balcao-pos/internal/sales"
	"github.com/balcao-pos/balcao-pos/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	ClientsHandler   *clients.Handler
	CatalogHandler   *catalog.Handler
	SalesHandler     *sales.Handler
	DashboardHandler *dashboard.Handler
	JobsHandler      *jobs.Handler
}

// NewRouter constructs the chi.Router with the back-office defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/clients", params.ClientsHandler.Routes)
	r.Route("/products", params.CatalogHandler.Routes)
	r.Route("/sales", params.SalesHandler.Routes)
	r.Route("/dashboard", params.DashboardHandler.Routes)
	r.Route("/jobs", params.JobsHandler.Routes)

	return r
}
