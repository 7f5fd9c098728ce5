package rolelist_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/task-tracker/internal/http-server/handlers/rolelist"
	"github.com/magabrotheeeer/task-tracker/internal/models"
)

type mockLister struct {
	ListFunc func(ctx context.Context) ([]*models.RoleEntry, error)
}

func (m *mockLister) ListRoles(ctx context.Context) ([]*models.RoleEntry, error) {
	return m.ListFunc(ctx)
}

// discard logger
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }

func makeLogger() *slog.Logger {
	return slog.New(discardHandler{})
}

func TestRoleListHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		storage := &mockLister{
			ListFunc: func(ctx context.Context) ([]*models.RoleEntry, error) {
				return []*models.RoleEntry{
					{ID: 1, Name: "admin"},
					{ID: 2, Name: "developer"},
					{ID: 3, Name: "client"},
				}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/admin/roles", nil)
		w := httptest.NewRecorder()

		handler := rolelist.New(makeLogger(), storage)
		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "admin")
		assert.Contains(t, w.Body.String(), "developer")
		assert.Contains(t, w.Body.String(), "client")
	})

	t.Run("storage error", func(t *testing.T) {
		storage := &mockLister{
			ListFunc: func(ctx context.Context) ([]*models.RoleEntry, error) {
				return nil, errors.New("connection refused")
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/admin/roles", nil)
		w := httptest.NewRecorder()

		handler := rolelist.New(makeLogger(), storage)
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
