package middleware_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/internal/middleware"
)

// echoBody reads the whole body and answers 413 when the reader hits the cap.
var echoBody = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	b, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	_, _ = w.Write(b)
})

func TestMaxBodySize_UnderLimit_PassesThrough(t *testing.T) {
	h := middleware.NewMaxBodySizeHandler(64)(echoBody)

	req := httptest.NewRequest(http.MethodPost, "/trips", strings.NewReader(`{"name":"Lisbon"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"name":"Lisbon"}`, rec.Body.String())
}

func TestMaxBodySize_DeclaredLengthTooLarge_RejectedEarly(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })
	h := middleware.NewMaxBodySizeHandler(10)(next)

	req := httptest.NewRequest(http.MethodPost, "/trips", strings.NewReader(strings.Repeat("x", 50)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.False(t, called)
	assert.Contains(t, rec.Body.String(), `"payload_too_large"`)
}

func TestMaxBodySize_UnknownLength_CappedWhileReading(t *testing.T) {
	h := middleware.NewMaxBodySizeHandler(10)(echoBody)

	req := httptest.NewRequest(http.MethodPost, "/trips", strings.NewReader(strings.Repeat("x", 50)))
	req.ContentLength = -1
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
