package verifyemail_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/task-tracker/internal/http-server/handlers/verifyemail"
	"github.com/magabrotheeeer/task-tracker/internal/http-server/response"
	authservice "github.com/magabrotheeeer/task-tracker/internal/services/auth"
)

type mockVerifier struct {
	VerifyFunc func(ctx context.Context, userUID, presentedMAC string) (bool, string, error)
}

func (m *mockVerifier) VerifyEmail(ctx context.Context, userUID, presentedMAC string) (bool, string, error) {
	return m.VerifyFunc(ctx, userUID, presentedMAC)
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

func newRouter(service *mockVerifier) *chi.Mux {
	router := chi.NewRouter()
	router.Get("/email/verify/{uid}/{hash}", verifyemail.New(makeLogger(), service).ServeHTTP)
	return router
}

func TestVerifyEmailHandler(t *testing.T) {
	t.Run("first verification issues token", func(t *testing.T) {
		service := &mockVerifier{
			VerifyFunc: func(ctx context.Context, userUID, presentedMAC string) (bool, string, error) {
				require.Equal(t, "user-uid", userUID)
				require.Equal(t, "abc123", presentedMAC)
				return false, "plain-token-123", nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/email/verify/user-uid/abc123", nil)
		w := httptest.NewRecorder()

		newRouter(service).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp response.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]any)
		assert.Equal(t, "plain-token-123", data["access_token"])
		assert.Equal(t, "Bearer", data["token_type"])
	})

	t.Run("repeated verification has no token", func(t *testing.T) {
		service := &mockVerifier{
			VerifyFunc: func(ctx context.Context, userUID, presentedMAC string) (bool, string, error) {
				return true, "", nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/email/verify/user-uid/abc123", nil)
		w := httptest.NewRecorder()

		newRouter(service).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "email is already verified")
		assert.NotContains(t, w.Body.String(), "access_token")
	})

	t.Run("forged link", func(t *testing.T) {
		service := &mockVerifier{
			VerifyFunc: func(ctx context.Context, userUID, presentedMAC string) (bool, string, error) {
				return false, "", authservice.ErrInvalidVerificationLink
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/email/verify/user-uid/deadbeef", nil)
		w := httptest.NewRecorder()

		newRouter(service).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid verification link")
	})
}
