package middleware

import (
	"context"
	"encoding/json"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/sessionauth/api/transport"
	"github.com/fastygo/sessionauth/domain"
	"github.com/fastygo/sessionauth/internal/config"
	"github.com/fastygo/sessionauth/internal/gate"
	"github.com/fastygo/sessionauth/pkg/httpcontext"
	appLogger "github.com/fastygo/sessionauth/pkg/logger"
	authUC "github.com/fastygo/sessionauth/usecase/auth"
)

// Resolver identifies the user behind a request.
type Resolver func(ctx context.Context, rc *fasthttp.RequestCtx) (userID string, ok bool)

// SessionResolver resolves the session cookie.
func SessionResolver(uc *authUC.UseCase) Resolver {
	return func(ctx context.Context, rc *fasthttp.RequestCtx) (string, bool) {
		return uc.CurrentUser(ctx, &rc.Request.Header)
	}
}

// BasicResolver checks HTTP Basic credentials.
func BasicResolver(uc *authUC.UseCase) Resolver {
	return func(ctx context.Context, rc *fasthttp.RequestCtx) (string, bool) {
		user, ok := uc.UserFromAuthorization(ctx, string(rc.Request.Header.Peek(fasthttp.HeaderAuthorization)))
		if !ok {
			return "", false
		}
		return user.ID, true
	}
}

// DenyResolver never identifies anyone.
func DenyResolver() Resolver {
	return func(context.Context, *fasthttp.RequestCtx) (string, bool) {
		return "", false
	}
}

// ResolverFor picks the resolver of an AUTH_TYPE value.
func ResolverFor(authType string, uc *authUC.UseCase) Resolver {
	switch authType {
	case config.AuthBasic:
		return BasicResolver(uc)
	case config.AuthSession, config.AuthSessionExpiry, config.AuthSessionStorage:
		return SessionResolver(uc)
	default:
		return DenyResolver()
	}
}

type AuthOptions struct {
	Gate       *gate.Gate
	CookieName string
	Resolve    Resolver
	Adapter    *httpcontext.Adapter
	Logger     *zap.Logger
}

// Auth guards every path the gate does not exclude. A request presenting
// neither an Authorization header nor the session cookie gets 401; one whose
// credentials name no user gets 403. Otherwise the user id is forwarded in
// the X-User-ID request header.
func Auth(opts AuthOptions) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	resolve := opts.Resolve
	if resolve == nil {
		resolve = DenyResolver()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			ctx.Request.Header.Del(transport.HeaderUserID)

			if !opts.Gate.RequiresAuth(string(ctx.Path())) {
				next(ctx)
				return
			}

			if !hasCredentials(ctx, opts.CookieName) {
				reject(ctx, fasthttp.StatusUnauthorized, domain.ErrUnauthorized)
				return
			}

			stdCtx, cancel := attach(ctx, opts.Adapter)
			userID, ok := resolve(stdCtx, ctx)
			cancel()
			if !ok {
				appLogger.WithRequestID(stdCtx, logger).Debug("credentials rejected", zap.ByteString("path", ctx.Path()))
				reject(ctx, fasthttp.StatusForbidden, domain.ErrForbidden)
				return
			}

			ctx.Request.Header.Set(transport.HeaderUserID, userID)
			next(ctx)
		}
	}
}

func hasCredentials(ctx *fasthttp.RequestCtx, cookieName string) bool {
	if len(ctx.Request.Header.Peek(fasthttp.HeaderAuthorization)) > 0 {
		return true
	}
	return cookieName != "" && len(ctx.Request.Header.Cookie(cookieName)) > 0
}

func attach(ctx *fasthttp.RequestCtx, adapter *httpcontext.Adapter) (context.Context, context.CancelFunc) {
	if adapter != nil {
		return adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func reject(ctx *fasthttp.RequestCtx, status int, err *domain.Error) {
	body, _ := json.Marshal(transport.FromDomainError(err))
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}
