package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-pos/meridian-pos/internal/catalog"
	"github.com/meridian-pos/meridian-pos/internal/customers"
	"github.com/meridian-pos/meridian-pos/internal/inventory"
	"github.com/meridian-pos/meridian-pos/internal/license"
	"github.com/meridian-pos/meridian-pos/internal/sales"
	"github.com/meridian-pos/meridian-pos/internal/settings"
	"github.com/meridian-pos/meridian-pos/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Pool             *pgxpool.Pool
	ActorMiddleware  users.Middleware
	LicenseGate      license.Middleware
	LicenseHandler   *license.Handler
	UsersHandler     *users.Handler
	CatalogHandler   *catalog.Handler
	CustomersHandler *customers.Handler
	InventoryHandler *inventory.Handler
	SalesHandler     *sales.Handler
	SettingsHandler  *settings.Handler
}

// NewRouter constructs the chi.Router with Meridian defaults.
//
// License management and health stay outside the license gate so an
// expired installation can still be inspected and reactivated. Everything
// else sits behind the gate.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)
	r.Use(params.ActorMiddleware.ResolveActor)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if params.Pool != nil {
			if err := params.Pool.Ping(r.Context()); err != nil {
				params.Logger.Error("health ping", slog.Any("error", err))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	params.LicenseHandler.MountRoutes(r)

	r.Group(func(r chi.Router) {
		r.Use(params.LicenseGate.Gate)

		params.UsersHandler.MountRoutes(r)
		params.CatalogHandler.MountRoutes(r)
		params.CustomersHandler.MountRoutes(r)
		params.InventoryHandler.MountRoutes(r)
		params.SalesHandler.MountRoutes(r)
		params.SettingsHandler.MountRoutes(r)
	})

	return r
}
