package middleware_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/device-lending/backend/internal/middleware"
)

const bodyLimit = 64

// readingHandler reads the whole body the way a JSON decoder would and
// answers 413 when the read fails with *http.MaxBytesError.
func readingHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		if _, err := io.ReadAll(r.Body); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestMaxBodySizeHandler_WithinLimit(t *testing.T) {
	var called bool
	h := middleware.NewMaxBodySizeHandler(bodyLimit)(readingHandler(&called))

	req := httptest.NewRequest(http.MethodPut, "/devices/1/book", strings.NewReader(`{"userId":1}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

// TestMaxBodySizeHandler_DeclaredLengthTooLarge checks that an oversized
// Content-Length is refused before the next handler runs.
func TestMaxBodySizeHandler_DeclaredLengthTooLarge(t *testing.T) {
	var called bool
	h := middleware.NewMaxBodySizeHandler(bodyLimit)(readingHandler(&called))

	req := httptest.NewRequest(http.MethodPut, "/devices/1/book", strings.NewReader(strings.Repeat("x", 2*bodyLimit)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.False(t, called, "next handler must not run")

	var body map[string]map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "request_too_large", body["error"]["code"])
}

// TestMaxBodySizeHandler_StreamingBodyTooLarge checks that a body without a
// declared length fails while being read.
func TestMaxBodySizeHandler_StreamingBodyTooLarge(t *testing.T) {
	var called bool
	h := middleware.NewMaxBodySizeHandler(bodyLimit)(readingHandler(&called))

	req := httptest.NewRequest(http.MethodPut, "/devices/1/book", strings.NewReader(strings.Repeat("x", 2*bodyLimit)))
	req.ContentLength = -1
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
