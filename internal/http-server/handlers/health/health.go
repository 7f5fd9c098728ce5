// Package health реализует проверку живости сервиса.
package health

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/task-tracker/internal/http-server/response"
)

// New возвращает обработчик проверки живости.
// @Summary Проверка живости сервиса
// @Tags service
// @Produce json
// @Success 200 {object} response.Response "Сервис работает"
// @Router /health [get]
func New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.StatusOKWithData(map[string]any{
			"message": "ok",
		}))
	}
}
