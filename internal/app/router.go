package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cantina-dev/cantina/internal/auth"
	"github.com/cantina-dev/cantina/internal/locations"
	"github.com/cantina-dev/cantina/internal/observability"
	"github.com/cantina-dev/cantina/internal/platform/httpx"
	"github.com/cantina-dev/cantina/internal/products"
	"github.com/cantina-dev/cantina/internal/recipes"
	"github.com/cantina-dev/cantina/internal/refills"
	"github.com/cantina-dev/cantina/internal/storage"
	"github.com/cantina-dev/cantina/internal/users"
	"github.com/cantina-dev/cantina/internal/warehouses"
)

// RouterParams collects everything NewRouter mounts.
type RouterParams struct {
	Logger   *slog.Logger
	Config   *Config
	Metrics  *observability.Metrics
	Sessions *auth.SessionStore
	AuthRepo auth.Repository

	Auth       *auth.Handler
	Users      *users.Handler
	Products   *products.Handler
	Recipes    *recipes.Handler
	Refills    *refills.Handler
	Locations  *locations.Handler
	Warehouses *warehouses.Handler
	Storage    *storage.Handler
}

// NewRouter assembles the HTTP surface.
func NewRouter(p RouterParams) chi.Router {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{Logger: p.Logger, Config: p.Config, Metrics: p.Metrics}) {
		r.Use(mw)
	}
	r.Use(auth.CurrentUser(p.Sessions, p.AuthRepo))

	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		httpx.Text(w, http.StatusOK, "UP")
	})
	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", p.Metrics.Handler())
	}

	p.Auth.MountRoutes(r)
	p.Storage.MountRoutes(r)

	r.Get("/me", p.Users.Me)
	r.Route("/user", p.Users.MountRoutes)
	r.Route("/product", p.Products.MountRoutes)
	r.Route("/recipe", p.Recipes.MountRoutes)
	r.Route("/refill", p.Refills.MountRoutes)
	r.Route("/location", p.Locations.MountRoutes)
	r.Route("/warehouse", p.Warehouses.MountRoutes)

	return r
}
