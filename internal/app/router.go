package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vunnam-pos/vunnam-pos/internal/assistant"
	"github.com/vunnam-pos/vunnam-pos/internal/auth"
	"github.com/vunnam-pos/vunnam-pos/internal/catalog"
	"github.com/vunnam-pos/vunnam-pos/internal/customers"
	"github.com/vunnam-pos/vunnam-pos/internal/inventory"
	"github.com/vunnam-pos/vunnam-pos/internal/ledger"
	"github.com/vunnam-pos/vunnam-pos/internal/pos"
	"github.com/vunnam-pos/vunnam-pos/internal/purchasing"
	"github.com/vunnam-pos/vunnam-pos/internal/reports"
	"github.com/vunnam-pos/vunnam-pos/internal/settings"
	"github.com/vunnam-pos/vunnam-pos/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	AuthHandler       *auth.Handler
	CatalogHandler    *catalog.Handler
	InventoryHandler  *inventory.Handler
	POSHandler        *pos.Handler
	PurchasingHandler *purchasing.Handler
	CustomersHandler  *customers.Handler
	SettingsHandler   *settings.Handler
	LedgerHandler     *ledger.Handler
	ReportsHandler    *reports.Handler
	AssistantHandler  *assistant.Handler
	JobHandler        *jobs.Handler
}

// NewRouter constructs the chi.Router with service defaults.
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

	params.AuthHandler.MountRoutes(r)
	params.CatalogHandler.MountRoutes(r)
	r.Route("/inventory", params.InventoryHandler.MountRoutes)
	r.Route("/pos", params.POSHandler.MountRoutes)
	r.Route("/purchasing", params.PurchasingHandler.MountRoutes)
	params.CustomersHandler.MountRoutes(r)
	params.SettingsHandler.MountRoutes(r)
	r.Route("/ledger", params.LedgerHandler.MountRoutes)
	params.ReportsHandler.MountRoutes(r)
	if params.AssistantHandler != nil {
		params.AssistantHandler.MountRoutes(r)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
