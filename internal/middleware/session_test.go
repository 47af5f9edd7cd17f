package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/middleware"
)

func captureSession(got *domain.Session) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := middleware.SessionFrom(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		*got = sess
	})
}

func TestRequireSession_PopulatesContext(t *testing.T) {
	var got domain.Session
	h := middleware.RequireSession(captureSession(&got))

	req := httptest.NewRequest(http.MethodGet, "/trips", nil)
	req.Header.Set(middleware.HeaderUserID, " user-1 ")
	req.Header.Set(middleware.HeaderUserName, "Ada")
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en;q=0.8")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.Session{UserID: "user-1", DisplayName: "Ada", Locale: "ko-KR"}, got)
}

func TestRequireSession_DefaultLocale(t *testing.T) {
	var got domain.Session
	h := middleware.RequireSession(captureSession(&got))

	req := httptest.NewRequest(http.MethodGet, "/trips", nil)
	req.Header.Set(middleware.HeaderUserID, "user-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "en", got.Locale)
	assert.Equal(t, "user-1", got.Name())
}

func TestRequireSession_MissingUser_Returns401(t *testing.T) {
	var got domain.Session
	h := middleware.RequireSession(captureSession(&got))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/trips", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":{"code":"unauthorized","message":"X-User-ID header is required"}}`, rec.Body.String())
	assert.Empty(t, got.UserID)
}
