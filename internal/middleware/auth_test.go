package middleware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/sessionauth/api/transport"
	"github.com/fastygo/sessionauth/internal/gate"
)

func fixedResolver(userID string) Resolver {
	return func(context.Context, *fasthttp.RequestCtx) (string, bool) {
		return userID, userID != ""
	}
}

func serve(opts AuthOptions, path string, setup func(*fasthttp.RequestCtx)) (*fasthttp.RequestCtx, string, bool) {
	var seen string
	called := false
	h := Auth(opts)(func(ctx *fasthttp.RequestCtx) {
		called = true
		seen = string(ctx.Request.Header.Peek(transport.HeaderUserID))
	})

	rc := &fasthttp.RequestCtx{}
	rc.Request.SetRequestURI(path)
	if setup != nil {
		setup(rc)
	}
	h(rc)
	return rc, seen, called
}

func TestAuthExcludedPathPassesThrough(t *testing.T) {
	opts := AuthOptions{Gate: gate.New([]string{"/api/v1/status/"}), Resolve: fixedResolver("user-1")}

	_, seen, called := serve(opts, "/api/v1/status", func(rc *fasthttp.RequestCtx) {
		rc.Request.Header.Set(transport.HeaderUserID, "spoofed")
	})
	assert.True(t, called)
	assert.Empty(t, seen)
}

func TestAuthRejections(t *testing.T) {
	opts := AuthOptions{Gate: gate.New(nil), CookieName: "sid", Resolve: fixedResolver("")}

	rc, _, called := serve(opts, "/api/v1/users/me", nil)
	assert.False(t, called)
	assert.Equal(t, fasthttp.StatusUnauthorized, rc.Response.StatusCode())

	rc, _, called = serve(opts, "/api/v1/users/me", func(rc *fasthttp.RequestCtx) {
		rc.Request.Header.SetCookie("sid", "abc")
	})
	assert.False(t, called)
	assert.Equal(t, fasthttp.StatusForbidden, rc.Response.StatusCode())
	assert.Contains(t, string(rc.Response.Body()), "FORBIDDEN")
}

func TestAuthForwardsUserID(t *testing.T) {
	opts := AuthOptions{Gate: gate.New(nil), Resolve: fixedResolver("user-1")}

	_, seen, called := serve(opts, "/api/v1/users/me", func(rc *fasthttp.RequestCtx) {
		rc.Request.Header.Set(fasthttp.HeaderAuthorization, "Basic Ym9iOnB3")
	})
	assert.True(t, called)
	assert.Equal(t, "user-1", seen)
}

func TestAuthWithoutResolverDenies(t *testing.T) {
	rc, _, called := serve(AuthOptions{CookieName: "sid"}, "/anything", func(rc *fasthttp.RequestCtx) {
		rc.Request.Header.SetCookie("sid", "abc")
	})
	assert.False(t, called)
	assert.Equal(t, fasthttp.StatusForbidden, rc.Response.StatusCode())
}
