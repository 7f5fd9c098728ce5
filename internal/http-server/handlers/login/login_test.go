package login_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/task-tracker/internal/http-server/handlers/login"
	"github.com/magabrotheeeer/task-tracker/internal/http-server/response"
	authservice "github.com/magabrotheeeer/task-tracker/internal/services/auth"
)

type mockAuthenticator struct {
	LoginFunc func(ctx context.Context, email, rawPassword, origin string) (string, error)
}

func (m *mockAuthenticator) Login(ctx context.Context, email, rawPassword, origin string) (string, error) {
	return m.LoginFunc(ctx, email, rawPassword, origin)
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

func TestLoginHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		body, _ := json.Marshal(login.Request{
			Email:    "user@example.com",
			Password: "password123",
		})

		service := &mockAuthenticator{
			LoginFunc: func(ctx context.Context, email, rawPassword, origin string) (string, error) {
				require.Equal(t, "user@example.com", email)
				require.Equal(t, "password123", rawPassword)
				require.NotEmpty(t, origin)
				return "plain-token-123", nil
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
		req.RemoteAddr = "10.0.0.1:54321"
		w := httptest.NewRecorder()

		handler := login.New(makeLogger(), service)
		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp response.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, response.StatusOK, resp.Status)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "plain-token-123", data["access_token"])
		assert.Equal(t, "Bearer", data["token_type"])
	})

	t.Run("origin from X-Forwarded-For", func(t *testing.T) {
		body, _ := json.Marshal(login.Request{
			Email:    "user@example.com",
			Password: "password123",
		})

		service := &mockAuthenticator{
			LoginFunc: func(ctx context.Context, email, rawPassword, origin string) (string, error) {
				require.Equal(t, "203.0.113.7", origin)
				return "plain-token-123", nil
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		w := httptest.NewRecorder()

		handler := login.New(makeLogger(), service)
		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		service := &mockAuthenticator{
			LoginFunc: func(ctx context.Context, email, rawPassword, origin string) (string, error) {
				t.Fatal("Login should not be called")
				return "", nil
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader([]byte("{bad json")))
		w := httptest.NewRecorder()

		handler := login.New(makeLogger(), service)
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid request body")
	})

	t.Run("validation error", func(t *testing.T) {
		body, _ := json.Marshal(login.Request{
			Email:    "not-an-email",
			Password: "",
		})
		service := &mockAuthenticator{
			LoginFunc: func(ctx context.Context, email, rawPassword, origin string) (string, error) {
				t.Fatal("Login should not be called")
				return "", nil
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler := login.New(makeLogger(), service)
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		body, _ := json.Marshal(login.Request{
			Email:    "user@example.com",
			Password: "wrongpass",
		})

		service := &mockAuthenticator{
			LoginFunc: func(ctx context.Context, email, rawPassword, origin string) (string, error) {
				return "", authservice.ErrInvalidCredentials
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler := login.New(makeLogger(), service)
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "incorrect email or password")
	})

	t.Run("too many attempts", func(t *testing.T) {
		body, _ := json.Marshal(login.Request{
			Email:    "user@example.com",
			Password: "password123",
		})

		service := &mockAuthenticator{
			LoginFunc: func(ctx context.Context, email, rawPassword, origin string) (string, error) {
				return "", &authservice.ThrottledError{RetryAfter: 15 * time.Minute}
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler := login.New(makeLogger(), service)
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "900", w.Header().Get("Retry-After"))
		assert.Contains(t, w.Body.String(), "too many login attempts")
	})

	t.Run("retry-after rounds up partial seconds", func(t *testing.T) {
		body, _ := json.Marshal(login.Request{
			Email:    "user@example.com",
			Password: "password123",
		})

		service := &mockAuthenticator{
			LoginFunc: func(ctx context.Context, email, rawPassword, origin string) (string, error) {
				return "", &authservice.ThrottledError{RetryAfter: 2500 * time.Millisecond}
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler := login.New(makeLogger(), service)
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "3", w.Header().Get("Retry-After"))
	})

	t.Run("email not verified", func(t *testing.T) {
		body, _ := json.Marshal(login.Request{
			Email:    "user@example.com",
			Password: "password123",
		})

		service := &mockAuthenticator{
			LoginFunc: func(ctx context.Context, email, rawPassword, origin string) (string, error) {
				return "", authservice.ErrEmailNotVerified
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler := login.New(makeLogger(), service)
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "email is not verified")
	})
}
