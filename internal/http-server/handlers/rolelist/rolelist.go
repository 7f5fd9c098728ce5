// Package rolelist реализует выдачу справочника ролей администратору.
package rolelist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/task-tracker/internal/http-server/response"
	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/task-tracker/internal/models"
)

// RoleLister контракт чтения справочника ролей.
type RoleLister interface {
	ListRoles(ctx context.Context) ([]*models.RoleEntry, error)
}

// Handler обработчик списка ролей.
type Handler struct {
	log     *slog.Logger
	storage RoleLister
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, storage RoleLister) *Handler {
	return &Handler{log: log, storage: storage}
}

// ServeHTTP возвращает справочник ролей. Маршрут закрыт ролью admin.
// @Summary Справочник ролей
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response "Список ролей"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Router /admin/roles [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.rolelist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	roles, err := h.storage.ListRoles(r.Context())
	if err != nil {
		log.Error("failed to list roles", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list roles"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"roles": roles,
	}))
}
