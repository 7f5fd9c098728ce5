// Package logout реализует обработчик выхода: отзыв предъявленного токена.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/task-tracker/internal/http-server/mware"
	"github.com/magabrotheeeer/task-tracker/internal/http-server/response"
	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
)

// TokenRevoker контракт отзыва токена.
type TokenRevoker interface {
	Logout(ctx context.Context, digest string) error
}

// Handler обработчик выхода.
type Handler struct {
	log     *slog.Logger
	service TokenRevoker
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service TokenRevoker) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP отзывает ровно предъявленный токен; другие сессии
// пользователя остаются активными.
// @Summary Выход, отзыв текущего токена
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response "Токен отозван"
// @Failure 401 {object} response.ErrorResponse "Токен не предъявлен или уже отозван"
// @Router /logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	digest, ok := mware.DigestFromContext(r.Context())
	if !ok {
		log.Error("token digest missing in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthenticated"))
		return
	}

	if err := h.service.Logout(r.Context(), digest); err != nil {
		log.Error("failed to revoke token", sl.Err(err))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthenticated"))
		return
	}

	log.Info("token revoked")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "logged out successfully",
	}))
}
