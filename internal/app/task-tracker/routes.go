// Package tasktracker предоставляет маршруты приложения.
package tasktracker

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/task-tracker/internal/http-server/handlers/health"
	"github.com/magabrotheeeer/task-tracker/internal/http-server/handlers/login"
	"github.com/magabrotheeeer/task-tracker/internal/http-server/handlers/logout"
	"github.com/magabrotheeeer/task-tracker/internal/http-server/handlers/passwordchange"
	"github.com/magabrotheeeer/task-tracker/internal/http-server/handlers/passwordforgot"
	"github.com/magabrotheeeer/task-tracker/internal/http-server/handlers/passwordreset"
	"github.com/magabrotheeeer/task-tracker/internal/http-server/handlers/register"
	"github.com/magabrotheeeer/task-tracker/internal/http-server/handlers/rolelist"
	"github.com/magabrotheeeer/task-tracker/internal/http-server/handlers/verifyemail"
	"github.com/magabrotheeeer/task-tracker/internal/http-server/handlers/verifyresend"
	"github.com/magabrotheeeer/task-tracker/internal/http-server/mware"
	"github.com/magabrotheeeer/task-tracker/internal/models"
	authservice "github.com/magabrotheeeer/task-tracker/internal/services/auth"
	"github.com/magabrotheeeer/task-tracker/internal/storage"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, auth *authservice.Service, db *storage.Storage) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)
	r.Use(mware.Throttle(logger, rate.NewLimiter(50, 100)))

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.With(mware.OptionalBearerAuth(auth, logger)).
			Post("/register", register.New(logger, auth).ServeHTTP)
		r.Post("/login", login.New(logger, auth).ServeHTTP)
		r.Post("/password/email", passwordforgot.New(logger, auth).ServeHTTP)
		r.Post("/password/reset", passwordreset.New(logger, auth).ServeHTTP)
		r.Get("/email/verify/{uid}/{hash}", verifyemail.New(logger, auth).ServeHTTP)
		r.Get("/health", health.New())

		// Группа с проверкой токена доступа
		r.Group(func(r chi.Router) {
			r.Use(mware.BearerAuth(auth, logger))
			r.Post("/logout", logout.New(logger, auth).ServeHTTP)
			r.Post("/password/change", passwordchange.New(logger, auth).ServeHTTP)
			r.Post("/email/resend", verifyresend.New(logger, auth).ServeHTTP)

			// Только для администраторов
			r.Group(func(r chi.Router) {
				r.Use(mware.RequireRole(logger, models.RoleAdmin))
				r.Get("/admin/roles", rolelist.New(logger, db).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
