package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domainauth "github.com/NordCoder/goodcookie/internal/domain/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type api struct {
	t *testing.T
	f *fixture
	h http.Handler
}

func newAPI(t *testing.T) *api {
	f := newFixture(t, 0)
	mux := http.NewServeMux()
	NewServer(nil, f.uc).Register(mux)
	authn := NewAuthenticator(f.codec, f.users, AuthenticatorOpts{})
	return &api{t: t, f: f, h: authn.Middleware(mux)}
}

func (a *api) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHTTP_RegisterLoginMeRenewLogout(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice", "password": "pw1", "email": "a@x.io",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User registration successful.", decodeBody[messageResponse](t, rec).Message)

	rec = a.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "bob", "password": "pw1", "email": "a@x.io",
	}, "")
	require.Equal(t, http.StatusConflict, rec.Code)
	conflict := decodeBody[messageResponse](t, rec)
	assert.Equal(t, "email", conflict.Field)
	assert.Equal(t, "Email already in use.", conflict.Message)

	rec = a.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "alice", "password": "bad"}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "alice", "password": "pw1"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	login := decodeBody[authResponse](t, rec)
	assert.Equal(t, "alice", login.Username)
	assert.NotEmpty(t, login.AuthenticationToken)
	assert.True(t, login.ExpiresAt.Equal(a.f.clock.Now().Add(15*time.Minute)))

	rec = a.do(http.MethodGet, "/api/auth/me", nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(http.MethodGet, "/api/auth/me", nil, login.AuthenticationToken)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decodeBody[domainauth.Principal](t, rec)
	assert.Equal(t, "alice", me.Subject)
	assert.Equal(t, []domainauth.Authority{domainauth.AuthorityUser}, me.Authorities)

	rec = a.do(http.MethodPost, "/api/auth/refresh/token", map[string]string{
		"refreshToken": login.RefreshToken, "username": "alice",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, login.RefreshToken, decodeBody[authResponse](t, rec).RefreshToken)

	rec = a.do(http.MethodPost, "/api/auth/logout", map[string]string{"refreshToken": login.RefreshToken}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Refresh Token Deleted Successfully.", decodeBody[messageResponse](t, rec).Message)

	rec = a.do(http.MethodPost, "/api/auth/refresh/token", map[string]string{
		"refreshToken": login.RefreshToken, "username": "alice",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid RefreshToken", decodeBody[messageResponse](t, rec).Message)
}

func TestHTTP_PasswordReset(t *testing.T) {
	a := newAPI(t)
	a.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice", "password": "pw1", "email": "a@x.io",
	}, "")

	rec := a.do(http.MethodPost, "/api/auth/forgot", map[string]string{"email": "ghost@x.io"}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPost, "/api/auth/forgot", map[string]string{"email": "a@x.io"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Email Sent.", decodeBody[messageResponse](t, rec).Message)
	raw := a.f.notifier.Sent()[0].ResetToken

	rec = a.do(http.MethodPost, "/api/auth/validatePasswordToken/unknown", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(http.MethodPost, "/api/auth/validatePasswordToken/"+raw, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Valid Token.", decodeBody[messageResponse](t, rec).Message)

	rec = a.do(http.MethodPut, "/api/auth/updatePassword", map[string]string{"token": raw, "newPassword": "pw2"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Password Updated Successfully.", decodeBody[messageResponse](t, rec).Message)

	rec = a.do(http.MethodPut, "/api/auth/updatePassword", map[string]string{"token": raw, "newPassword": "pw3"}, "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "alice", "password": "pw2"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHTTP_ExpiredResetToken(t *testing.T) {
	a := newAPI(t)
	a.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice", "password": "pw1", "email": "a@x.io",
	}, "")
	a.do(http.MethodPost, "/api/auth/forgot", map[string]string{"email": "a@x.io"}, "")
	raw := a.f.notifier.Sent()[0].ResetToken

	a.f.clock.Advance(31 * time.Minute)
	rec := a.do(http.MethodPost, "/api/auth/validatePasswordToken/"+raw, nil, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Token Expired.", decodeBody[messageResponse](t, rec).Message)

	rec = a.do(http.MethodPost, "/api/auth/validatePasswordToken/"+raw, nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHTTP_InvalidBody(t *testing.T) {
	a := newAPI(t)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	a.h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPost, "/api/auth/register", map[string]string{"username": "alice"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTP_RequestValidation(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "bob", "password": "pw", "email": "not-an-email",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[messageResponse](t, rec)
	assert.Contains(t, body.Errors, "email")

	rec = a.do(http.MethodPost, "/api/auth/logout", map[string]string{}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[messageResponse](t, rec).Errors, "refreshToken")

	rec = a.do(http.MethodPost, "/api/auth/refresh/token", map[string]string{"username": "bob"}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[messageResponse](t, rec).Errors, "refreshToken")

	rec = a.do(http.MethodPost, "/api/auth/forgot", map[string]string{"email": "bob"}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[messageResponse](t, rec).Errors, "email")

	rec = a.do(http.MethodPut, "/api/auth/updatePassword", map[string]string{"token": "t"}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[messageResponse](t, rec).Errors, "newPassword")
	assert.Empty(t, a.f.notifier.Sent())
}
