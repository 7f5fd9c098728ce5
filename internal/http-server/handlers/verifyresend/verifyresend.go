// Package verifyresend реализует повторную отправку письма подтверждения.
package verifyresend

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/task-tracker/internal/http-server/mware"
	"github.com/magabrotheeeer/task-tracker/internal/http-server/response"
	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/task-tracker/internal/models"
	authservice "github.com/magabrotheeeer/task-tracker/internal/services/auth"
)

// VerificationResender контракт повторной отправки письма.
type VerificationResender interface {
	ResendVerification(ctx context.Context, user *models.User) error
}

// Handler обработчик повторной отправки письма подтверждения.
type Handler struct {
	log     *slog.Logger
	service VerificationResender
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service VerificationResender) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP повторно ставит письмо подтверждения в очередь.
// @Summary Повторная отправка письма подтверждения
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response "Письмо поставлено в очередь"
// @Failure 400 {object} response.ErrorResponse "Адрес уже подтверждён"
// @Failure 401 {object} response.ErrorResponse "Токен не предъявлен"
// @Router /email/resend [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.verifyresend"

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

	err := h.service.ResendVerification(r.Context(), user)
	switch {
	case errors.Is(err, authservice.ErrAlreadyVerified):
		log.Error("email is already verified")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("email is already verified"))
		return
	case err != nil:
		log.Error("failed to resend verification email", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to resend verification email"))
		return
	}

	log.Info("verification email enqueued")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "verification email has been sent",
	}))
}
