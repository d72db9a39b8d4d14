// Package licensemanager собирает сервис: хранилище, диспетчер API лицензий,
// административный API, публикацию событий и health-серверы.
package licensemanager

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/license-manager/internal/http/handlers/admin/licenses"
	"github.com/magabrotheeeer/license-manager/internal/http/handlers/admin/login"
	"github.com/magabrotheeeer/license-manager/internal/http/handlers/admin/products"
	"github.com/magabrotheeeer/license-manager/internal/http/handlers/admin/storagesettings"
	"github.com/magabrotheeeer/license-manager/internal/http/handlers/health"
	"github.com/magabrotheeeer/license-manager/internal/http/handlers/licenseapi"
	"github.com/magabrotheeeer/license-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/license-manager/internal/services/entitlement"
)

// AdminService операции административного API.
type AdminService interface {
	login.Service
	licenses.Service
	products.Service
	storagesettings.Service
}

// Deps зависимости HTTP-маршрутов.
type Deps struct {
	API     licenseapi.Service
	Events  licenseapi.EventPublisher
	Admin   AdminService
	Tokens  middlewarectx.TokenParser
	Storage health.Pinger
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	r.Use(
		middleware.RequestID,
		middlewarectx.RequestLogger(logger),
		middleware.Recoverer,
		middlewarectx.Metrics,
	)

	api := licenseapi.New(logger, deps.API, deps.Events)
	r.Get(entitlement.APIPath, api.ServeHTTP)
	r.Get(entitlement.APIPath+"/{action}", api.ServeHTTP)

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Post("/login", login.New(logger, deps.Admin).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(deps.Tokens, logger))

			licenseHandler := licenses.New(logger, deps.Admin)
			r.Post("/licenses", licenseHandler.Create)
			r.Get("/licenses", licenseHandler.List)

			r.Put("/products/{slug}", products.New(logger, deps.Admin).ServeHTTP)

			settingsHandler := storagesettings.New(logger, deps.Admin)
			r.Put("/settings/storage", settingsHandler.Put)
			r.Get("/settings/storage", settingsHandler.Get)
		})
	})

	r.Get("/health", health.New(logger, deps.Storage).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
