// Package mware содержит middleware для HTTP‑сервера: проверку
// непрозрачного токена доступа, проверку ролей через единую функцию
// авторизации и общий ограничитель частоты запросов.
package mware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/task-tracker/internal/http-server/response"
	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/task-tracker/internal/models"
)

type ctxKey string

const (
	userKey   ctxKey = "user"
	digestKey ctxKey = "token_digest"
)

// TokenValidator контракт проверки предъявленного токена.
type TokenValidator interface {
	ValidateToken(ctx context.Context, plaintext string) (*models.User, string, error)
}

// BearerAuth возвращает middleware, которое проверяет токен из заголовка
// Authorization и кладёт владельца и дайджест токена в контекст запроса.
// Неизвестный или отозванный токен — 401 без уточнений.
func BearerAuth(validator TokenValidator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "mware.BearerAuth"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			user, digest, err := validator.ValidateToken(r.Context(), tokenStr)
			if err != nil {
				log.Error("invalid or revoked token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or revoked token"))
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			ctx = context.WithValue(ctx, digestKey, digest)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalBearerAuth кладёт пользователя в контекст, если валидный токен
// предъявлен, но пропускает запрос и без токена. Используется на
// регистрации: администратор может назначить роль, аноним — нет.
func OptionalBearerAuth(validator TokenValidator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "mware.OptionalBearerAuth"

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			user, digest, err := validator.ValidateToken(r.Context(), tokenStr)
			if err != nil {
				log.Info("ignoring invalid bearer token on public endpoint",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			ctx = context.WithValue(ctx, digestKey, digest)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext возвращает пользователя, положенного BearerAuth.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok
}

// DigestFromContext возвращает дайджест предъявленного токена.
func DigestFromContext(ctx context.Context) (string, bool) {
	digest, ok := ctx.Value(digestKey).(string)
	return digest, ok
}

// Authorize единая точка проверки ролей: любая проверка доступа в
// сервисе идёт через эту функцию, а не через сравнение строк на месте.
func Authorize(ctx context.Context, allowed ...models.Role) bool {
	user, ok := UserFromContext(ctx)
	if !ok {
		return false
	}
	for _, role := range allowed {
		if user.HasRole(role) {
			return true
		}
	}
	return false
}

// RequireRole возвращает middleware, пропускающее только пользователей
// с одной из перечисленных ролей.
func RequireRole(log *slog.Logger, allowed ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "mware.RequireRole"

			if !Authorize(r.Context(), allowed...) {
				log.Error("access denied",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				)
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("access denied"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Throttle общий ограничитель частоты запросов на процесс. Точный
// лимит попыток входа живёт в services/ratelimit, здесь только грубая
// защита от потока запросов.
func Throttle(log *slog.Logger, limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.Error("too many requests")
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP возвращает адрес клиента для ключа ограничителя входа.
// Учитывает X-Forwarded-For от обратного прокси.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
