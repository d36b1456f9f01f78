package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"cashfree-checkout/internal/adapter/http/middleware"
	redisStore "cashfree-checkout/internal/adapter/storage/redis"
	"cashfree-checkout/internal/core/ports"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	CheckoutSvc    ports.CheckoutService
	WebhookSvc     ports.WebhookService
	ReconcileSvc   ports.ReconcileService
	Routes         ports.RouteResolver
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Deep health check, pings PostgreSQL and Redis
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	checkoutHandler := NewCheckoutHandler(deps.CheckoutSvc)
	v1.POST("/invoices/:invoiceId/checkout", rl("checkout"), checkoutHandler.InitiateCheckout)

	// Gateway-facing endpoints. The webhook carries its own authentication
	// (HMAC signature) and is never rate limited.
	gatewayHandler := NewGatewayHandler(deps.WebhookSvc, deps.ReconcileSvc, deps.Routes, deps.Logger)
	gateway := v1.Group("/gateway/cashfree")
	{
		gateway.POST("/webhook", gatewayHandler.Webhook)
		gateway.GET("/callback/:invoiceId", rl("callback"), gatewayHandler.Callback)
	}

	return r
}
