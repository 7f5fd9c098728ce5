// Package passwordforgot реализует запрос сброса пароля.
package passwordforgot

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/task-tracker/internal/http-server/response"
	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
)

// Request — входные данные запроса сброса.
type Request struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetRequester контракт постановки задания на сброс.
type ResetRequester interface {
	RequestPasswordReset(ctx context.Context, email string) error
}

// Handler обработчик запроса сброса пароля.
type Handler struct {
	log      *slog.Logger
	service  ResetRequester
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service ResetRequester) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP ставит задание на отправку письма сброса. Ответ одинаков
// для любого адреса: существование учётной записи не раскрывается.
// @Summary Запрос письма для сброса пароля
// @Tags auth
// @Accept  json
// @Produce json
// @Param   request body Request true "Адрес почты"
// @Success 200 {object} response.Response "Единый ответ вне зависимости от существования адреса"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Router /password/email [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.passwordforgot"

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

	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		log.Error("failed to enqueue password reset", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to process request"))
		return
	}

	log.Info("password reset enqueued")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "if the email exists, a reset link has been sent",
	}))
}
