// Package verifyemail реализует подтверждение адреса по подписанной ссылке.
package verifyemail

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/task-tracker/internal/http-server/response"
	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
	authservice "github.com/magabrotheeeer/task-tracker/internal/services/auth"
)

// EmailVerifier контракт сервиса подтверждения адреса.
type EmailVerifier interface {
	VerifyEmail(ctx context.Context, userUID, presentedMAC string) (alreadyVerified bool, accessToken string, err error)
}

// Handler обработчик подтверждения адреса.
type Handler struct {
	log     *slog.Logger
	service EmailVerifier
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service EmailVerifier) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP проверяет подпись ссылки из письма. Повторное подтверждение
// идемпотентно: состояние не меняется, токен повторно не выдаётся.
// @Summary Подтверждение адреса почты по ссылке из письма
// @Tags auth
// @Produce json
// @Param   uid  path string true "UID пользователя"
// @Param   hash path string true "Подпись ссылки"
// @Success 200 {object} response.Response "Адрес подтверждён, выдан токен (или уже был подтверждён)"
// @Failure 400 {object} response.ErrorResponse "Подпись не сходится"
// @Router /email/verify/{uid}/{hash} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.verifyemail"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID := chi.URLParam(r, "uid")
	hash := chi.URLParam(r, "hash")

	alreadyVerified, accessToken, err := h.service.VerifyEmail(r.Context(), userUID, hash)
	switch {
	case errors.Is(err, authservice.ErrInvalidVerificationLink):
		log.Error("invalid verification link")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid verification link"))
		return
	case err != nil:
		log.Error("failed to verify email", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to verify email"))
		return
	}

	if alreadyVerified {
		log.Info("email already verified")
		render.JSON(w, r, response.StatusOKWithData(map[string]any{
			"message": "email is already verified",
		}))
		return
	}

	log.Info("email verified", slog.String("uid", userUID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message":      "email verified successfully",
		"access_token": accessToken,
		"token_type":   "Bearer",
	}))
}
