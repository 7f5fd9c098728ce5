// Package passwordchange реализует смену пароля аутентифицированным
// пользователем.
package passwordchange

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/task-tracker/internal/http-server/mware"
	"github.com/magabrotheeeer/task-tracker/internal/http-server/response"
	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/task-tracker/internal/models"
	authservice "github.com/magabrotheeeer/task-tracker/internal/services/auth"
)

// Request — входные данные для смены пароля.
type Request struct {
	CurrentPassword      string `json:"current_password" validate:"required"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// PasswordChanger контракт сервиса смены пароля.
type PasswordChanger interface {
	ChangePassword(ctx context.Context, user *models.User, currentPassword, newPassword string) error
}

// Handler обработчик смены пароля.
type Handler struct {
	log      *slog.Logger
	service  PasswordChanger
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service PasswordChanger) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP меняет пароль и отзывает все сессии пользователя,
// включая текущую.
// @Summary Смена пароля текущим пользователем
// @Tags auth
// @Security BearerAuth
// @Accept  json
// @Produce json
// @Param   request body Request true "Текущий и новый пароль"
// @Success 200 {object} response.Response "Пароль изменён, требуется повторный вход"
// @Failure 400 {object} response.ErrorResponse "Текущий пароль не подошёл"
// @Failure 401 {object} response.ErrorResponse "Токен не предъявлен"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Router /password/change [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.passwordchange"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := mware.UserFromContext(r.Context())
	if !ok {
		log.Error("user missing in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthenticated"))
		return
	}

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

	err := h.service.ChangePassword(r.Context(), user, req.CurrentPassword, req.Password)
	switch {
	case errors.Is(err, authservice.ErrInvalidCredentials):
		log.Error("current password is incorrect")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("current password is incorrect"))
		return
	case err != nil:
		log.Error("failed to change password", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to change password"))
		return
	}

	log.Info("password changed, all sessions revoked")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "password changed, log in again with the new password",
	}))
}
