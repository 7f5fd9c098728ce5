// Package passwordreset реализует установку нового пароля по токену сброса.
package passwordreset

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/task-tracker/internal/http-server/response"
	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
	authservice "github.com/magabrotheeeer/task-tracker/internal/services/auth"
)

// Request — входные данные для сброса пароля.
type Request struct {
	Email                string `json:"email" validate:"required,email"`
	Token                string `json:"token" validate:"required"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// PasswordResetter контракт сервиса сброса пароля.
type PasswordResetter interface {
	ResetPassword(ctx context.Context, email, plainToken, newPassword string) error
}

// Handler обработчик сброса пароля.
type Handler struct {
	log      *slog.Logger
	service  PasswordResetter
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service PasswordResetter) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP проверяет токен сброса и ставит новый пароль. Все ранее
// выданные токены доступа пользователя отзываются.
// @Summary Сброс пароля по токену из письма
// @Tags auth
// @Accept  json
// @Produce json
// @Param   request body Request true "Адрес, токен из письма и новый пароль"
// @Success 200 {object} response.Response "Пароль изменён, все сессии отозваны"
// @Failure 422 {object} response.Response "Ошибка валидации или недействительный токен"
// @Router /password/reset [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.passwordreset"

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

	err := h.service.ResetPassword(r.Context(), req.Email, req.Token, req.Password)
	switch {
	case errors.Is(err, authservice.ErrInvalidResetToken):
		log.Error("invalid or expired reset token")
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.FieldError("email", "invalid or expired reset token"))
		return
	case err != nil:
		log.Error("failed to reset password", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to reset password"))
		return
	}

	log.Info("password reset completed")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "password has been reset, log in with the new password",
	}))
}
