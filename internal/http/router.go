package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter configura el router de Gin con middlewares y rutas del gateway.
func NewRouter(
	logger *zap.Logger,
	authH *AuthHandler,
	proxy *ProxyRouter,
	limiter *RateLimiter,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: CORS de desarrollo, logging y recovery.
	r.Use(corsMiddleware(), zapLoggerMiddleware(logger), gin.Recovery())

	auth := r.Group("/auth")
	if limiter != nil {
		auth.Use(limiter.Middleware())
	}
	auth.POST("/sign-in", authH.SignIn)
	auth.POST("/sign-in/provider", authH.ProviderSignIn)
	auth.POST("/sign-up", authH.SignUp)
	auth.POST("/sign-out", authH.SignOut)
	auth.GET("/session", authH.Session)

	r.GET("/health", authH.Health)

	// Solo los prefijos de la tabla se reenvian; el resto se atiende local.
	if proxy != nil {
		for _, route := range proxy.Routes() {
			r.Any(route.Prefix, proxy.Handler)
			r.Any(route.Prefix+"/*rest", proxy.Handler)
		}
	}

	return r
}
