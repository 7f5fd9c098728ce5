// Package login реализует обработчик входа пользователя.
package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/task-tracker/internal/http-server/mware"
	"github.com/magabrotheeeer/task-tracker/internal/http-server/response"
	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/task-tracker/internal/metrics"
	authservice "github.com/magabrotheeeer/task-tracker/internal/services/auth"
)

// Request — входные данные для входа.
type Request struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Authenticator контракт сервиса входа.
type Authenticator interface {
	Login(ctx context.Context, email, rawPassword, origin string) (string, error)
}

// Handler обработчик входа.
type Handler struct {
	log      *slog.Logger
	service  Authenticator
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Authenticator) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP обрабатывает запрос входа.
// @Summary Вход пользователя, выдача токена доступа
// @Tags auth
// @Accept  json
// @Produce json
// @Param   request body Request true "Адрес и пароль"
// @Success 200 {object} response.Response "Токен доступа"
// @Failure 401 {object} response.ErrorResponse "Неверный адрес или пароль"
// @Failure 403 {object} response.Response "Адрес не подтверждён"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Failure 429 {object} response.ErrorResponse "Лимит попыток входа исчерпан"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	accessToken, err := h.service.Login(r.Context(), req.Email, req.Password, mware.ClientIP(r))
	switch {
	case errors.Is(err, authservice.ErrTooManyAttempts):
		metrics.LoginAttempts.WithLabelValues("throttled").Inc()
		log.Error("too many login attempts")
		var throttled *authservice.ThrottledError
		if errors.As(err, &throttled) && throttled.RetryAfter > 0 {
			seconds := int64((throttled.RetryAfter + time.Second - 1) / time.Second)
			w.Header().Set("Retry-After", strconv.FormatInt(seconds, 10))
		}
		render.Status(r, http.StatusTooManyRequests)
		render.JSON(w, r, response.Error("too many login attempts, try again later"))
		return
	case errors.Is(err, authservice.ErrInvalidCredentials):
		metrics.LoginAttempts.WithLabelValues("invalid_credentials").Inc()
		log.Error("incorrect email or password")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("incorrect email or password"))
		return
	case errors.Is(err, authservice.ErrEmailNotVerified):
		metrics.LoginAttempts.WithLabelValues("unverified").Inc()
		log.Error("email is not verified")
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, response.Response{
			Status: response.StatusError,
			Error:  "email is not verified",
			Data:   map[string]any{"unverified": true},
		})
		return
	case err != nil:
		log.Error("failed to login", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to login"))
		return
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	log.Info("user logged in")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"access_token": accessToken,
		"token_type":   "Bearer",
	}))
}
