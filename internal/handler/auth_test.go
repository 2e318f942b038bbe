package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/code-translator/internal/auth"
	"github.com/sakif/code-translator/internal/handler"
	"github.com/sakif/code-translator/internal/repository/sqlite"
	"github.com/sakif/code-translator/internal/service"
)

// fakeGitHub hands out a fixed profile for the code "good".
type fakeGitHub struct{}

func (fakeGitHub) AuthURL(state string) string {
	return "https://github.example/authorize?state=" + url.QueryEscape(state)
}

func (fakeGitHub) Exchange(_ context.Context, code string) (*auth.GitHubUser, error) {
	if code != "good" {
		return nil, errors.New("bad_verification_code")
	}
	return &auth.GitHubUser{ID: 99, Login: "octocat"}, nil
}

type authFixture struct {
	h      *handler.AuthHandler
	tokens *auth.TokenService
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("handler-test-secret-0123456789")
	require.NoError(t, err)

	svc := service.NewAuthService(db, tokens, auth.NewPasswordServiceWithCost(bcrypt.MinCost), testLogger())
	return authFixture{h: handler.NewAuthHandler(svc, fakeGitHub{}, testLogger()), tokens: tokens}
}

func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	return nil
}

func TestAuthHandler_RegisterLoginMe(t *testing.T) {
	f := newAuthFixture(t)

	rr := do(t, f.h.HandleRegister, http.MethodPost, "/auth/register", `{"login":"alice","password":"s3cret-pass"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	reg := decode[handler.SessionResponse](t, rr)
	assert.Equal(t, "alice", reg.User.Login)
	assert.NotEmpty(t, reg.Token)

	cookie := sessionCookie(rr)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	rr = do(t, f.h.HandleRegister, http.MethodPost, "/auth/register", `{"login":"alice","password":"other-pass"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, f.h.HandleLogin, http.MethodPost, "/auth/login", `{"login":"alice","password":"wrong-pass"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do(t, f.h.HandleLogin, http.MethodPost, "/auth/login", `{"login":"alice","password":"s3cret-pass"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	login := decode[handler.SessionResponse](t, rr)

	// The password hash must never be serialized.
	assert.NotContains(t, rr.Body.String(), "$2a$")

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	me := httptest.NewRecorder()
	auth.RequireAuth(f.tokens)(http.HandlerFunc(f.h.HandleMe)).ServeHTTP(me, req)

	require.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), `"login":"alice"`)
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	f := newAuthFixture(t)

	rr := do(t, f.h.HandleRegister, http.MethodPost, "/auth/register", `{"login":"bob","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, f.h.HandleRegister, http.MethodPost, "/auth/register", `{`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAuthHandler_GitHubFlow(t *testing.T) {
	f := newAuthFixture(t)

	login := httptest.NewRecorder()
	f.h.HandleGitHubLogin(login, httptest.NewRequest(http.MethodGet, "/auth/github/login", nil))
	require.Equal(t, http.StatusTemporaryRedirect, login.Code)

	var state *http.Cookie
	for _, c := range login.Result().Cookies() {
		if c.Name == "oauth_state" {
			state = c
		}
	}
	require.NotNil(t, state)
	assert.Contains(t, login.Header().Get("Location"), "state="+state.Value)

	callback := func(query string, withCookie bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?"+query, nil)
		if withCookie {
			req.AddCookie(state)
		}
		rr := httptest.NewRecorder()
		f.h.HandleGitHubCallback(rr, req)
		return rr
	}

	t.Run("state mismatch", func(t *testing.T) {
		rr := callback("code=good&state=forged", true)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing cookie", func(t *testing.T) {
		rr := callback("code=good&state="+state.Value, false)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("exchange failure", func(t *testing.T) {
		rr := callback("code=bad&state="+state.Value, true)
		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})

	t.Run("success sets session", func(t *testing.T) {
		rr := callback("code=good&state="+state.Value, true)
		require.Equal(t, http.StatusSeeOther, rr.Code)

		cookie := sessionCookie(rr)
		require.NotNil(t, cookie)
		userID, err := f.tokens.Validate(cookie.Value)
		require.NoError(t, err)
		assert.NotEmpty(t, userID)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	f := newAuthFixture(t)

	rr := do(t, f.h.HandleLogout, http.MethodPost, "/auth/logout", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	cookie := sessionCookie(rr)
	require.NotNil(t, cookie)
	assert.Equal(t, -1, cookie.MaxAge)
}
