package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/sessionauth/api/handler"
)

type Handlers struct {
	Session *apiHandler.AuthHandler
	Users   *apiHandler.UserHandler
	Health  *apiHandler.HealthHandler
}

// New builds the route table. authMiddleware wraps the whole router, so the
// gate sees every request, including unknown paths.
func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) fasthttp.RequestHandler {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	v1 := r.Group("/api/v1")
	v1.GET("/status", handlers.Health.Status)
	v1.GET("/stats", handlers.Health.Stats)
	v1.GET("/unauthorized", handlers.Health.Unauthorized)
	v1.GET("/forbidden", handlers.Health.Forbidden)

	// Session routes
	v1.POST("/auth_session/login", handlers.Session.Login)
	v1.DELETE("/auth_session/logout", handlers.Session.Logout)

	// Account routes
	v1.POST("/users", handlers.Users.Register)
	v1.GET("/users/me", handlers.Users.Me)
	v1.POST("/reset_password", handlers.Users.ResetToken)
	v1.PUT("/reset_password", handlers.Users.UpdatePassword)

	if authMiddleware == nil {
		return r.Handler
	}
	return authMiddleware(r.Handler)
}
