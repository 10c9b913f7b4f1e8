package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/omishoninjp-sys/gotoshopee/internal/api/handlers"
	"github.com/omishoninjp-sys/gotoshopee/internal/api/middleware"
	"github.com/omishoninjp-sys/gotoshopee/internal/security"
	"github.com/omishoninjp-sys/gotoshopee/pkg/interfaces"
)

// RouterDeps зависимости HTTP-маршрутизатора
type RouterDeps struct {
	Sync    *handlers.SyncHandler
	Auth    *handlers.AuthHandler
	Catalog *handlers.CatalogHandler
	Logger  interfaces.LoggerPort

	// JWT равный nil отключает проверку токена на /api/v1
	JWT *security.JWTManager

	CORSOrigins    []string
	RequestTimeout time.Duration
}

// SetupRouter собирает маршрутизатор со всеми эндпоинтами сервиса
func SetupRouter(deps RouterDeps) *chi.Mux {
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = 2 * time.Minute
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.Recoverer(deps.Logger))
	r.Use(middleware.Timeout(deps.RequestTimeout))
	r.Use(middleware.CORS(deps.CORSOrigins))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler())

	// Авторизация магазина доступна без токена административного API
	r.Route("/auth/shopee", func(r chi.Router) {
		r.Get("/", deps.Auth.Login)
		r.Delete("/", deps.Auth.Logout)
		r.Get("/callback", deps.Auth.Callback)
		r.Post("/refresh", deps.Auth.Refresh)
		r.Get("/status", deps.Auth.Status)
	})

	r.Route("/api/v1", func(r chi.Router) {
		if deps.JWT != nil {
			r.Use(middleware.JWTAuth(deps.JWT, deps.Logger))
		}

		r.Route("/sync", func(r chi.Router) {
			r.Get("/preview", deps.Sync.Preview)
			r.Post("/run", deps.Sync.SyncAll)
			r.Post("/collections/{collectionID}", deps.Sync.SyncCollection)
			r.Get("/runs", deps.Sync.ListRuns)
			r.Get("/runs/{runID}", deps.Sync.GetRun)
		})

		r.Route("/source", func(r chi.Router) {
			r.Get("/status", deps.Catalog.SourceStatus)
			r.Get("/collections", deps.Catalog.SourceCollections)
		})

		r.Route("/destination", func(r chi.Router) {
			r.Get("/categories", deps.Catalog.DestinationCategories)
			r.Get("/logistics", deps.Catalog.DestinationLogistics)
			r.Get("/shop", deps.Catalog.DestinationShop)
		})
	})

	return r
}
