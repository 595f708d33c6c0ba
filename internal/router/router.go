package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/ovotrack/auth-service/internal/config"
	"github.com/ovotrack/auth-service/internal/handler"
	"github.com/ovotrack/auth-service/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes. Unauthenticated
// operations live under /v1/auth and carry the rate limiter when Redis is
// available; protected endpoints live under /v1 behind the JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, cfg config.Config, rdb *redis.Client) {
	g := e.Group("/v1/auth")
	// The limiter shields the credential-bearing endpoints from guessing
	// loops; it keys on client IP and route, never on account identity.
	g.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/google", a.Google)
	g.POST("/refresh", a.Refresh)
	// Logout accepts either a refresh token in the body (end one session)
	// or a bearer access token (end all sessions), so it sits outside the
	// JWT middleware.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(cfg.JWTSecret, cfg.JWTAlg))
	auth.GET("/me", a.Me)
}
