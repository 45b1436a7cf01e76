package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthEndpoint(t *testing.T) {
	srv := setupTestServer(t, testConfig("https://api.twitter.com/2/oauth2/token"))

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestUnknownRoute(t *testing.T) {
	srv := setupTestServer(t, testConfig("https://api.twitter.com/2/oauth2/token"))

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("GET", "/auth/v1/unlink", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
