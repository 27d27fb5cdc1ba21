package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/accountd/accountd/internal/account/service"
	"github.com/accountd/accountd/internal/account/store/drivers/sqlite"
	"github.com/accountd/accountd/pkg/cryptox"
	"github.com/accountd/accountd/pkg/jwtx"
)

func TestMain(m *testing.M) {
	// Set up a temporary pepper file for testing
	tmpDir := os.TempDir()
	pepperPath := filepath.Join(tmpDir, "test-http-pepper")
	cryptox.SetPepperPath(pepperPath)

	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}

func newTestRouter(t *testing.T) *Router {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "test.db")))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	signer, verifier, err := jwtx.GenerateEphemeralEdDSA("test-kid", "accountd-test")
	require.NoError(t, err)

	tokens := &service.TokenService{
		Signer:     signer,
		Verifier:   verifier,
		Store:      st,
		Issuer:     "accountd-test",
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}

	router := NewRouter(signer, verifier, "test", st, slog.New(slog.DiscardHandler))
	router.AuthService = &service.AuthService{Store: st, Tokens: tokens}
	router.UserService = &service.UserService{Store: st}
	router.ApplyRoutes()
	return router
}

var requestIP atomic.Int64

// do issues a request with a unique client IP so the per-IP rate limiter
// never interferes with unrelated assertions.
func do(router *Router, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		buf, _ := json.Marshal(body)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	n := requestIP.Add(1)
	req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.1.%d.%d", n/256%256, n%256))
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerAndLogin(t *testing.T, router *Router) (string, string) {
	t.Helper()

	rec := do(router, http.MethodPost, "/v1/users", map[string]string{
		"name": "Alice", "email": "alice@example.com", "password": "password123",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(router, http.MethodPost, "/v1/auth/login", map[string]string{
		"email": "alice@example.com", "password": "password123",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var pair struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	return pair.AccessToken, pair.RefreshToken
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestRegisterEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := do(router, http.MethodPost, "/v1/users", map[string]string{
		"name": "Alice", "email": "alice@example.com", "password": "password123",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var user UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	require.Positive(t, user.ID)
	require.Equal(t, "Alice", user.Name)
	require.NotContains(t, rec.Body.String(), "password", "no password material in the response")

	t.Run("validation error", func(t *testing.T) {
		rec := do(router, http.MethodPost, "/v1/users", map[string]string{
			"name": "Bob", "email": "not-an-email", "password": "password123",
		}, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp struct {
			Error  string `json:"error"`
			Fields []struct {
				Field string `json:"field"`
			} `json:"fields"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "invalid_request", resp.Error)
		require.Len(t, resp.Fields, 1)
		require.Equal(t, "email", resp.Fields[0].Field)
	})

	t.Run("duplicate email", func(t *testing.T) {
		rec := do(router, http.MethodPost, "/v1/users", map[string]string{
			"name": "Impostor", "email": "alice@example.com", "password": "different456",
		}, nil)
		require.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLoginEndpoint(t *testing.T) {
	router := newTestRouter(t)
	registerAndLogin(t, router)

	t.Run("wrong password", func(t *testing.T) {
		rec := do(router, http.MethodPost, "/v1/auth/login", map[string]string{
			"email": "alice@example.com", "password": "wrongpassword",
		}, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown email same response", func(t *testing.T) {
		wrong := do(router, http.MethodPost, "/v1/auth/login", map[string]string{
			"email": "alice@example.com", "password": "wrongpassword",
		}, nil)
		unknown := do(router, http.MethodPost, "/v1/auth/login", map[string]string{
			"email": "nobody@example.com", "password": "password123",
		}, nil)
		require.Equal(t, wrong.Code, unknown.Code)
		require.Equal(t, wrong.Body.String(), unknown.Body.String())
	})
}

func TestRefreshEndpoint(t *testing.T) {
	router := newTestRouter(t)
	_, refresh := registerAndLogin(t, router)

	rec := do(router, http.MethodPost, "/v1/auth/refresh", map[string]string{
		"refresh_token": refresh,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var pair struct {
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	require.NotEqual(t, refresh, pair.RefreshToken)

	t.Run("consumed token", func(t *testing.T) {
		rec := do(router, http.MethodPost, "/v1/auth/refresh", map[string]string{
			"refresh_token": refresh,
		}, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		rec := do(router, http.MethodPost, "/v1/auth/refresh", map[string]string{}, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLogoutEndpoint(t *testing.T) {
	router := newTestRouter(t)
	access, refresh := registerAndLogin(t, router)

	rec := do(router, http.MethodPost, "/v1/auth/logout", nil, bearer(access))
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Sessions are gone; the refresh token no longer rotates
	rec = do(router, http.MethodPost, "/v1/auth/refresh", map[string]string{
		"refresh_token": refresh,
	}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	t.Run("requires authentication", func(t *testing.T) {
		rec := do(router, http.MethodPost, "/v1/auth/logout", nil, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestSelfEndpoints(t *testing.T) {
	router := newTestRouter(t)
	access, _ := registerAndLogin(t, router)

	t.Run("get", func(t *testing.T) {
		rec := do(router, http.MethodGet, "/v1/users/me", nil, bearer(access))
		require.Equal(t, http.StatusOK, rec.Code)

		var user UserResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
		require.Equal(t, "alice@example.com", user.Email)
	})

	t.Run("get without token", func(t *testing.T) {
		rec := do(router, http.MethodGet, "/v1/users/me", nil, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("patch name", func(t *testing.T) {
		rec := do(router, http.MethodPatch, "/v1/users/me", map[string]string{
			"name": "Alicia",
		}, bearer(access))
		require.Equal(t, http.StatusOK, rec.Code)

		var user UserResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
		require.Equal(t, "Alicia", user.Name)
	})

	t.Run("patch empty body", func(t *testing.T) {
		rec := do(router, http.MethodPatch, "/v1/users/me", map[string]string{}, bearer(access))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete then get", func(t *testing.T) {
		rec := do(router, http.MethodDelete, "/v1/users/me", nil, bearer(access))
		require.Equal(t, http.StatusNoContent, rec.Code)

		// The token still verifies but the record is gone
		rec = do(router, http.MethodGet, "/v1/users/me", nil, bearer(access))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := do(router, http.MethodGet, "/livez", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Equal(t, "ok", health.Status)

	rec = do(router, http.MethodGet, "/readyz", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Equal(t, "ok", health.Status)
	require.NotNil(t, health.Checks)
	require.Equal(t, "ok", health.Checks.Database)
}

func TestLoginRateLimit(t *testing.T) {
	router := newTestRouter(t)

	body := map[string]string{"email": "nobody@example.com", "password": "password123"}
	ip := map[string]string{"X-Forwarded-For": "203.0.113.7"}

	// The strict profile allows 5 attempts per window from one address
	for i := 0; i < 5; i++ {
		rec := do(router, http.MethodPost, "/v1/auth/login", body, ip)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := do(router, http.MethodPost, "/v1/auth/login", body, ip)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
}
