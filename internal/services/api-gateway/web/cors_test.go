package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frontend = "http://localhost:3000"

func preflight(h http.Handler, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type, Authorization")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCORS_PreflightFromFrontend(t *testing.T) {
	called := false
	h := CORS(CORSConfig{AllowedOrigins: []string{frontend}}, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	rec := preflight(h, frontend)
	require.Less(t, rec.Code, 300)
	assert.False(t, called)
	assert.Equal(t, frontend, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "3600", rec.Header().Get("Access-Control-Max-Age"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestCORS_OtherOriginGetsNoGrant(t *testing.T) {
	h := CORS(CORSConfig{AllowedOrigins: []string{frontend}}, http.NotFoundHandler())

	rec := preflight(h, "https://evil.example")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_SimpleRequestExposesAuthorization(t *testing.T) {
	h := CORS(CORSConfig{AllowedOrigins: []string{frontend}}, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Origin", frontend)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, frontend, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Authorization", rec.Header().Get("Access-Control-Expose-Headers"))
}

func TestOriginOf(t *testing.T) {
	assert.Equal(t, "http://localhost:3000", OriginOf("http://localhost:3000/resetPassword"))
	assert.Equal(t, "https://app.example", OriginOf("https://app.example/a/b?x=1"))
	assert.Empty(t, OriginOf("/relative"))
	assert.Empty(t, OriginOf(""))
}
