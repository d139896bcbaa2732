package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/sessionauth/api/transport"
	"github.com/fastygo/sessionauth/domain"
	"github.com/fastygo/sessionauth/pkg/httpcontext"
	authUC "github.com/fastygo/sessionauth/usecase/auth"
)

// CookieOptions controls the attributes of the session cookie.
type CookieOptions struct {
	Secure bool
	// MaxAge of zero issues a browser-session cookie.
	MaxAge time.Duration
}

type AuthHandler struct {
	baseHandler
	uc     *authUC.UseCase
	cookie CookieOptions
}

func NewAuthHandler(uc *authUC.UseCase, cookie CookieOptions, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		cookie:      cookie,
	}
}

// @Summary Open a session from email and password form fields
// @Tags auth_session
// @Router /api/v1/auth_session/login [post]
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	email := formValue(ctx, transport.FieldEmail)
	if email == "" {
		h.respondMissing(ctx, transport.FieldEmail)
		return
	}
	password := string(ctx.FormValue(transport.FieldPassword))
	if password == "" {
		h.respondMissing(ctx, transport.FieldPassword)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	sessionID, user, err := h.uc.Login(stdCtx, email, password)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.setSessionCookie(ctx, sessionID)
	h.respondSuccess(ctx, http.StatusOK, transport.NewUserResponse(user))
}

// @Summary Destroy the session named by the session cookie
// @Tags auth_session
// @Router /api/v1/auth_session/logout [delete]
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if !h.uc.Logout(stdCtx, &ctx.Request.Header) {
		h.respondError(ctx, domain.ErrSessionNotFound)
		return
	}

	ctx.Response.Header.DelClientCookie(h.uc.CookieName())
	h.respondSuccess(ctx, http.StatusOK, map[string]string{})
}

func (h *AuthHandler) setSessionCookie(ctx *fasthttp.RequestCtx, sessionID string) {
	cookie := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(cookie)

	cookie.SetKey(h.uc.CookieName())
	cookie.SetValue(sessionID)
	cookie.SetPath("/")
	cookie.SetHTTPOnly(true)
	cookie.SetSecure(h.cookie.Secure)
	cookie.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	if h.cookie.MaxAge > 0 {
		cookie.SetMaxAge(int(h.cookie.MaxAge / time.Second))
	}
	ctx.Response.Header.SetCookie(cookie)
}
