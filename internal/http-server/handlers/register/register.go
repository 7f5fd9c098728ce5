// Package register реализует обработчик регистрации пользователя.
package register

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
	"github.com/magabrotheeeer/task-tracker/internal/metrics"
	"github.com/magabrotheeeer/task-tracker/internal/models"
	authservice "github.com/magabrotheeeer/task-tracker/internal/services/auth"
)

// Request — входные данные для регистрации.
type Request struct {
	Username             string `json:"username" validate:"required,alphanum,min=3,max=50"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
	Role                 string `json:"role,omitempty" validate:"omitempty"`
}

// Registrar контракт сервиса регистрации.
type Registrar interface {
	Register(ctx context.Context, username, email, rawPassword, roleName string, caller *models.User) (string, error)
}

// Handler обработчик регистрации.
type Handler struct {
	log      *slog.Logger
	service  Registrar
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Registrar) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP обрабатывает запрос регистрации.
// @Summary Регистрация нового пользователя
// @Tags auth
// @Accept  json
// @Produce json
// @Param   request body Request true "Данные для регистрации"
// @Success 201 {object} response.Response "Пользователь создан, письмо подтверждения отправлено"
// @Failure 403 {object} response.ErrorResponse "Назначение роли доступно только администратору"
// @Failure 404 {object} response.ErrorResponse "Запрошенная роль не существует"
// @Failure 422 {object} response.Response "Ошибка валидации или занятые имя/адрес"
// @Router /register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.register"

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
	log.Info("request body decoded", slog.String("username", req.Username))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	// Роль из запроса учитывается, только если запрос пришёл
	// с токеном администратора.
	caller, _ := mware.UserFromContext(r.Context())

	uid, err := h.service.Register(r.Context(), req.Username, req.Email, req.Password, req.Role, caller)
	switch {
	case errors.Is(err, authservice.ErrUsernameTaken):
		log.Error("username is already taken")
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.FieldError("username", "username is already taken"))
		return
	case errors.Is(err, authservice.ErrEmailTaken):
		log.Error("email is already taken")
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.FieldError("email", "email is already taken"))
		return
	case errors.Is(err, authservice.ErrRoleNotAllowed):
		log.Error("role assignment denied")
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, response.Error("only admin can assign roles"))
		return
	case errors.Is(err, authservice.ErrUnknownRole):
		log.Error("unknown role requested", slog.String("role", req.Role))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("unknown role"))
		return
	case err != nil:
		log.Error("failed to register user", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to register user"))
		return
	}

	metrics.RegisteredUsers.Inc()
	log.Info("created new user", slog.String("uid", uid), slog.String("username", req.Username))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "user created successfully, check your email to verify the address",
	}))
}
