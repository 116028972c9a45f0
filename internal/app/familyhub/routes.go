// Package familyhub предоставляет маршруты для основного приложения.
package familyhub

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/family-hub/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/family-hub/internal/http/handlers/auth/register"
	groupcreate "github.com/magabrotheeeer/family-hub/internal/http/handlers/group/create"
	groupread "github.com/magabrotheeeer/family-hub/internal/http/handlers/group/read"
	"github.com/magabrotheeeer/family-hub/internal/http/handlers/support/auditlogs"
	"github.com/magabrotheeeer/family-hub/internal/http/handlers/support/enddate"
	"github.com/magabrotheeeer/family-hub/internal/http/handlers/support/expire"
	"github.com/magabrotheeeer/family-hub/internal/http/handlers/support/lock"
	"github.com/magabrotheeeer/family-hub/internal/http/handlers/support/renewaldate"
	"github.com/magabrotheeeer/family-hub/internal/http/handlers/support/subscription"
	"github.com/magabrotheeeer/family-hub/internal/http/handlers/support/supportaccess"
	"github.com/magabrotheeeer/family-hub/internal/http/handlers/support/userlist"
	"github.com/magabrotheeeer/family-hub/internal/http/handlers/support/userread"
	wikicreate "github.com/magabrotheeeer/family-hub/internal/http/handlers/wiki/create"
	wikilist "github.com/magabrotheeeer/family-hub/internal/http/handlers/wiki/list"
	wikiread "github.com/magabrotheeeer/family-hub/internal/http/handlers/wiki/read"
	wikiremove "github.com/magabrotheeeer/family-hub/internal/http/handlers/wiki/remove"
	wikiupdate "github.com/magabrotheeeer/family-hub/internal/http/handlers/wiki/update"
	"github.com/magabrotheeeer/family-hub/internal/http/middlewarectx"
	"github.com/magabrotheeeer/family-hub/internal/lib/jwt"
	authservice "github.com/magabrotheeeer/family-hub/internal/services/auth"
	groupservice "github.com/magabrotheeeer/family-hub/internal/services/group"
	supportservice "github.com/magabrotheeeer/family-hub/internal/services/support"
	wikiservice "github.com/magabrotheeeer/family-hub/internal/services/wiki"
	"github.com/magabrotheeeer/family-hub/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(
	r chi.Router,
	logger *slog.Logger,
	jwtMaker jwt.Maker,
	db *repository.Storage,
	authService *authservice.AuthService,
	groupService *groupservice.GroupService,
	wikiService *wikiservice.WikiService,
	supportService *supportservice.SupportService,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Post("/groups", groupcreate.New(logger, groupService).ServeHTTP)

			// Маршруты внутри конкретной группы: membership загружается
			// один раз, изменяющие методы блокируются для групп
			// в режиме только для чтения
			r.Route("/groups/{groupId}", func(r chi.Router) {
				r.Use(middlewarectx.GroupMembershipMiddleware(groupService, logger))

				r.Get("/", groupread.New(logger, groupService).ServeHTTP)
				r.Get("/wiki-documents", wikilist.New(logger, wikiService).ServeHTTP)
				r.Get("/wiki-documents/{id}", wikiread.New(logger, wikiService).ServeHTTP)

				// Изменение вики-документов требует полномочий администратора
				r.Group(func(r chi.Router) {
					r.Use(middlewarectx.RequireAdmin(logger))

					r.Post("/wiki-documents", wikicreate.New(logger, wikiService).ServeHTTP)
					r.Put("/wiki-documents/{id}", wikiupdate.New(logger, wikiService).ServeHTTP)
					r.Delete("/wiki-documents/{id}", wikiremove.New(logger, wikiService).ServeHTTP)
				})
			})

			// Консоль поддержки
			r.Route("/support", func(r chi.Router) {
				r.Use(middlewarectx.SupportUserMiddleware(db, logger))

				r.Get("/users", userlist.New(logger, supportService).ServeHTTP)
				r.Get("/users/{uid}", userread.New(logger, supportService).ServeHTTP)
				r.Put("/users/{uid}/subscription", subscription.New(logger, supportService).ServeHTTP)
				r.Put("/users/{uid}/support-access", supportaccess.New(logger, supportService).ServeHTTP)
				r.Put("/users/{uid}/lock", lock.New(logger, supportService).ServeHTTP)
				r.Put("/users/{uid}/subscription-end-date", enddate.New(logger, supportService).ServeHTTP)
				r.Put("/users/{uid}/renewal-date", renewaldate.New(logger, supportService).ServeHTTP)
				r.Post("/users/{uid}/expire-subscription", expire.New(logger, supportService).ServeHTTP)
				r.Get("/audit-logs", auditlogs.New(logger, supportService).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
