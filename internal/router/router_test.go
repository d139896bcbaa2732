package router

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/sessionauth/api/handler"
	"github.com/fastygo/sessionauth/internal/config"
	"github.com/fastygo/sessionauth/internal/gate"
	"github.com/fastygo/sessionauth/internal/infrastructure/monitor"
	"github.com/fastygo/sessionauth/internal/middleware"
	"github.com/fastygo/sessionauth/internal/session"
	"github.com/fastygo/sessionauth/pkg/httpcontext"
	"github.com/fastygo/sessionauth/repository/memory"
	authUC "github.com/fastygo/sessionauth/usecase/auth"
)

const (
	cookieName = "_my_session_id"
	email      = "bob@dylan.com"
	password   = "toto1234!"
)

var excluded = []string{
	"/api/v1/status/",
	"/api/v1/stat*",
	"/api/v1/auth_session/login/",
	"/api/v1/users/",
	"/api/v1/reset_password/",
	"/health/",
}

type envelope struct {
	Status string          `json:"status"`
	Code   string          `json:"code"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}

type request struct {
	method string
	uri    string
	form   url.Values
	cookie string
	auth   string
	header map[string]string
}

func newApp(t *testing.T, authType string) fasthttp.RequestHandler {
	t.Helper()
	users := memory.NewUserRepository()
	store := session.NewMemoryStore()
	uc := authUC.New(users, store, cookieName, nil)
	adapter := httpcontext.NewAdapter(0)

	mon := monitor.New(0, nil)
	mon.Register("sessions", monitor.CountProbe(store), 0)
	mon.Refresh()

	handlers := Handlers{
		Session: apiHandler.NewAuthHandler(uc, apiHandler.CookieOptions{}, adapter, nil),
		Users:   apiHandler.NewUserHandler(uc, adapter, nil),
		Health:  apiHandler.NewHealthHandler(mon, users, store, adapter, nil),
	}
	auth := middleware.Auth(middleware.AuthOptions{
		Gate:       gate.New(excluded),
		CookieName: cookieName,
		Resolve:    middleware.ResolverFor(authType, uc),
		Adapter:    adapter,
	})
	return New(handlers, auth)
}

func do(h fasthttp.RequestHandler, req request) *fasthttp.RequestCtx {
	rc := &fasthttp.RequestCtx{}
	rc.Request.Header.SetMethod(req.method)
	rc.Request.SetRequestURI(req.uri)
	if req.form != nil {
		rc.Request.Header.SetContentType("application/x-www-form-urlencoded")
		rc.Request.SetBodyString(req.form.Encode())
	}
	if req.cookie != "" {
		rc.Request.Header.SetCookie(cookieName, req.cookie)
	}
	if req.auth != "" {
		rc.Request.Header.Set(fasthttp.HeaderAuthorization, req.auth)
	}
	for k, v := range req.header {
		rc.Request.Header.Set(k, v)
	}
	h(rc)
	return rc
}

func decode(t *testing.T, rc *fasthttp.RequestCtx, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rc.Response.Body(), &env))
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func sessionCookie(rc *fasthttp.RequestCtx) string {
	c := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(c)
	c.SetKey(cookieName)
	if !rc.Response.Header.Cookie(c) {
		return ""
	}
	return string(c.Value())
}

func credentials(pw string) url.Values {
	return url.Values{"email": {email}, "password": {pw}}
}

func TestSessionFlow(t *testing.T) {
	app := newApp(t, config.AuthSession)

	rc := do(app, request{method: "GET", uri: "/api/v1/status"})
	assert.Equal(t, fasthttp.StatusOK, rc.Response.StatusCode())

	rc = do(app, request{method: "GET", uri: "/api/v1/users/me"})
	assert.Equal(t, fasthttp.StatusUnauthorized, rc.Response.StatusCode())

	rc = do(app, request{method: "GET", uri: "/api/v1/users/me", cookie: "bogus"})
	assert.Equal(t, fasthttp.StatusForbidden, rc.Response.StatusCode())

	rc = do(app, request{method: "POST", uri: "/api/v1/users", form: credentials(password)})
	require.Equal(t, fasthttp.StatusCreated, rc.Response.StatusCode())
	var registered struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	decode(t, rc, &registered)
	assert.Equal(t, email, registered.Email)
	assert.NotContains(t, string(rc.Response.Body()), "password")

	rc = do(app, request{method: "POST", uri: "/api/v1/users", form: credentials("other")})
	assert.Equal(t, fasthttp.StatusConflict, rc.Response.StatusCode())

	rc = do(app, request{method: "POST", uri: "/api/v1/auth_session/login", form: url.Values{"password": {password}}})
	assert.Equal(t, fasthttp.StatusBadRequest, rc.Response.StatusCode())
	assert.Equal(t, "email missing", decode(t, rc, nil).Error)

	rc = do(app, request{method: "POST", uri: "/api/v1/auth_session/login", form: url.Values{"email": {email}}})
	assert.Equal(t, fasthttp.StatusBadRequest, rc.Response.StatusCode())
	assert.Equal(t, "password missing", decode(t, rc, nil).Error)

	rc = do(app, request{method: "POST", uri: "/api/v1/auth_session/login", form: credentials("wrong")})
	assert.Equal(t, fasthttp.StatusUnauthorized, rc.Response.StatusCode())
	assert.Empty(t, sessionCookie(rc))

	rc = do(app, request{method: "POST", uri: "/api/v1/auth_session/login", form: credentials(password)})
	require.Equal(t, fasthttp.StatusOK, rc.Response.StatusCode())
	sessionID := sessionCookie(rc)
	require.NotEmpty(t, sessionID)

	rc = do(app, request{method: "GET", uri: "/api/v1/users/me", cookie: sessionID})
	require.Equal(t, fasthttp.StatusOK, rc.Response.StatusCode())
	var me struct {
		ID string `json:"id"`
	}
	decode(t, rc, &me)
	assert.Equal(t, registered.ID, me.ID)

	rc = do(app, request{method: "GET", uri: "/api/v1/stats"})
	require.Equal(t, fasthttp.StatusOK, rc.Response.StatusCode())
	var stats struct {
		Users    int `json:"users"`
		Sessions int `json:"sessions"`
	}
	decode(t, rc, &stats)
	assert.Equal(t, 1, stats.Users)
	assert.Equal(t, 1, stats.Sessions)

	rc = do(app, request{method: "DELETE", uri: "/api/v1/auth_session/logout", cookie: sessionID})
	assert.Equal(t, fasthttp.StatusOK, rc.Response.StatusCode())

	rc = do(app, request{method: "GET", uri: "/api/v1/users/me", cookie: sessionID})
	assert.Equal(t, fasthttp.StatusForbidden, rc.Response.StatusCode())
}

func TestSpoofedUserHeaderIsIgnored(t *testing.T) {
	app := newApp(t, config.AuthSession)

	rc := do(app, request{method: "GET", uri: "/api/v1/users/me", header: map[string]string{"X-User-ID": "admin"}})
	assert.Equal(t, fasthttp.StatusUnauthorized, rc.Response.StatusCode())
}

func TestPasswordResetFlow(t *testing.T) {
	app := newApp(t, config.AuthSession)
	do(app, request{method: "POST", uri: "/api/v1/users", form: credentials(password)})

	rc := do(app, request{method: "POST", uri: "/api/v1/reset_password", form: url.Values{"email": {"nobody@x.io"}}})
	assert.Equal(t, fasthttp.StatusForbidden, rc.Response.StatusCode())

	rc = do(app, request{method: "POST", uri: "/api/v1/reset_password", form: url.Values{"email": {email}}})
	require.Equal(t, fasthttp.StatusOK, rc.Response.StatusCode())
	var token struct {
		ResetToken string `json:"reset_token"`
	}
	decode(t, rc, &token)
	require.NotEmpty(t, token.ResetToken)

	rc = do(app, request{method: "PUT", uri: "/api/v1/reset_password", form: url.Values{"reset_token": {"bogus"}, "new_password": {"n3w"}}})
	assert.Equal(t, fasthttp.StatusForbidden, rc.Response.StatusCode())

	rc = do(app, request{method: "PUT", uri: "/api/v1/reset_password", form: url.Values{"reset_token": {token.ResetToken}, "new_password": {"n3w"}}})
	require.Equal(t, fasthttp.StatusOK, rc.Response.StatusCode())

	rc = do(app, request{method: "POST", uri: "/api/v1/auth_session/login", form: credentials("n3w")})
	assert.Equal(t, fasthttp.StatusOK, rc.Response.StatusCode())
}

func TestBasicAuthScheme(t *testing.T) {
	app := newApp(t, config.AuthBasic)
	do(app, request{method: "POST", uri: "/api/v1/users", form: credentials(password)})
	basic := func(s string) string { return "Basic " + base64.StdEncoding.EncodeToString([]byte(s)) }

	rc := do(app, request{method: "GET", uri: "/api/v1/users/me", auth: basic(email + ":" + password)})
	assert.Equal(t, fasthttp.StatusOK, rc.Response.StatusCode())

	rc = do(app, request{method: "GET", uri: "/api/v1/users/me", auth: basic(email + ":nope")})
	assert.Equal(t, fasthttp.StatusForbidden, rc.Response.StatusCode())
}

func TestNoAuthStubForbidsProtectedPaths(t *testing.T) {
	app := newApp(t, config.AuthNone)

	rc := do(app, request{method: "GET", uri: "/api/v1/users/me", auth: "Basic whatever"})
	assert.Equal(t, fasthttp.StatusForbidden, rc.Response.StatusCode())

	rc = do(app, request{method: "GET", uri: "/health"})
	assert.Equal(t, fasthttp.StatusOK, rc.Response.StatusCode())
}
